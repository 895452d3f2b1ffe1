package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "giapha", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringP("config", "c", "", "")
	root.AddCommand(
		NewExportCommand(),
		NewSeedCommand(),
		NewAdminCommand(),
		NewConfigCommand(),
		NewVersionCommand(),
	)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func useTempStorage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", filepath.Join(dir, "data"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestExportCommand(t *testing.T) {
	dir := useTempStorage(t)

	out, err := run(t, "export", "--format", "csv", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	matches, err := filepath.Glob(filepath.Join(dir, "gia-pha-ho-le-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	body, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "\uFEFF"))

	_, err = run(t, "export", "--format", "pdf", "--out", dir)
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	useTempStorage(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seed data written")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing written")

	out, err = run(t, "seed", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Seed data written")
}

func TestAdminHashPassword(t *testing.T) {
	out, err := run(t, "admin", "hash-password", "--cost", "4", "bí-mật")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("bí-mật")))
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "rat-bi-mat")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "rat-bi-mat")
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "storage:")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "giapha "+Version)
}
