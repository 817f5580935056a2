// internal/cli/config.go
package difr

import (
	"github.com/mwiater/difr/internal/appconfig"
	"github.com/spf13/cobra"
)

// newConfigCmd implements 'config', which displays the merged configuration.
func newConfigCmd(a *app) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show config settings",
		Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags and environment accordingly.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			appconfig.ShowConfig(cmd.OutOrStdout(), a.cfg.ConfigPath, a.cfg, dump)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "pretty-print the full configuration struct")
	return cmd
}
