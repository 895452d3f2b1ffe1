package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giapha/core/internal/infrastructure/config"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giapha.log")
	log, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)

	log.WithComponent("test").LogStorageOp("memory", "put", "giapha_le_data", 42, 1.5, nil)
	log.LogStorageOp("memory", "get", "giapha_le_data", 0, 0.2, errors.New("boom"))
	_ = log.Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"component":"test"`)
	assert.Contains(t, string(b), "Storage operation failed")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithError(errors.New("x")).LogAdminAction("tree.add", map[string]interface{}{"id": "m-1"})
		log.LogSecurityEvent("login_failed", "127.0.0.1", nil)
	})
}
