package cli

import (
	"github.com/spf13/cobra"

	"github.com/Skryldev/image-converter/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}

			conv, err := a.converter(cmd)
			if err != nil {
				return err
			}
			defer conv.Close()

			logger := coreLogger(loggerFromContext(cmd.Context()))
			return server.New(conv, cfg, logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	return cmd
}
