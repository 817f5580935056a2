// internal/cli/manifest.go
package difr

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mwiater/difr/internal/loader"
	"github.com/mwiater/difr/internal/logging"
	"github.com/spf13/cobra"
)

// newManifestCmd implements 'manifest', which regenerates data/manifest.json
// from the audit files in a directory.
func newManifestCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write data/manifest.json for a directory of audit files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				if loader.IsRemote(a.cfg.Source) {
					return fmt.Errorf("source %q is remote; pass --dir", a.cfg.Source)
				}
				dir = filepath.Join(a.cfg.Source, loader.DataDir)
			}
			manifest, err := loader.WriteManifest(a.fs, dir)
			if err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			target := filepath.Join(dir, loader.ManifestName)
			success := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s (%d files)\n", success("✓"), target, len(manifest.Files))
			logging.LogEvent("manifest written to %s with %d files", target, len(manifest.Files))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "data directory (default <source>/data)")
	return cmd
}
