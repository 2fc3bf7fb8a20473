package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tagindex/internal/publishserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the subscription registry behind an HTTP publish API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			reg, err := registryFromCmd(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			srv := publishserver.New(publishserver.Config{
				Addr:     addr,
				Registry: reg,
				Logger:   loggerFromContext(cmd.Context()),
			})
			return srv.Run(ctx)
		},
	}
	cmd.Flags().String("addr", ":4565", "listen address (host:port)")
	return cmd
}
