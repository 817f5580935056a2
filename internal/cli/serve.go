// internal/cli/serve.go
package difr

import (
	"fmt"

	"github.com/mwiater/difr/internal/logging"
	"github.com/mwiater/difr/internal/server"
	"github.com/spf13/cobra"
)

// newServeCmd implements 'serve', which hosts the export directory under the
// configured base path.
func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		build bool
		opts  buildOptions
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			if addr == "" {
				addr = a.cfg.ListenAddr()
			}
			opts.outDir = a.cfg.OutputPath()
			if build {
				opts.copyData = true
				if err := a.runBuild(cmd.OutOrStdout(), a.loadDataset(ctx), opts); err != nil {
					return err
				}
			}

			handler := server.NewRouter(a.fs, server.Options{
				Root:     opts.outDir,
				BasePath: a.cfg.NormalizedBasePath(),
				Logger:   logging.L(),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s%s/\n", opts.outDir, displayAddr(addr), a.cfg.NormalizedBasePath())
			if err := server.Serve(ctx, addr, handler, logging.L()); err != nil {
				return err
			}
			logging.LogEvent("server on %s stopped", addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&build, "build", false, "build the export (including local data) before serving")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
