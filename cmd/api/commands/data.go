package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/giapha/core/internal/application/services"
)

// NewExportCommand writes one of the tree downloads to a file.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the family tree",
		Long:  "Export the stored family tree as json, csv, png or a full json backup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			return runExport(cmd, format, out)
		},
	}
	cmd.Flags().StringP("format", "f", services.FormatJSON, "Export format (json, csv, png, backup)")
	cmd.Flags().StringP("out", "o", "", "Output file or directory, - for stdout (default: dated file name in the current directory)")
	return cmd
}

func runExport(cmd *cobra.Command, format, out string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	export, err := a.container.Export.Export(format, nil)
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := cmd.OutOrStdout().Write(export.Body)
		return err
	}

	path := export.Filename
	if out != "" {
		path = out
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			path = filepath.Join(out, export.Filename)
		}
	}

	if err := os.WriteFile(path, export.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, humanize.Bytes(uint64(len(export.Body))))
	return nil
}

// NewSyncCommand pulls the shared document into storage.
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the shared document into storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			save, _ := cmd.Flags().GetBool("save")
			return runSync(cmd, url, save)
		},
	}
	cmd.Flags().String("url", "", "Document link to use instead of the stored one")
	cmd.Flags().Bool("save", false, "Store --url as the document link")
	return cmd
}

func runSync(cmd *cobra.Command, url string, save bool) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if save && url != "" {
		if _, err := a.container.Sync.SetLink(ctx, url); err != nil {
			return err
		}
		url = ""
	}

	result, err := a.container.Sync.Sync(ctx, url)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d members (updated %s)\n", result.Members, result.LastUpdated)
	return nil
}

// NewSeedCommand stores the built-in sample clan.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in sample data",
		Long:  "Store the built-in sample data. Existing data is kept unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return runSeed(cmd, force)
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite existing data")
	return cmd
}

func runSeed(cmd *cobra.Command, force bool) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	written, err := a.container.Site.Seed(cmd.Context(), force)
	if err != nil {
		return err
	}
	if !written {
		fmt.Fprintln(cmd.OutOrStdout(), "Stored data found, nothing written (use --force to overwrite)")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seed data written to %s storage\n", a.store.Driver())
	return nil
}
