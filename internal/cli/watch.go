package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alanyang/iobos/internal/client/watch"
	"github.com/alanyang/iobos/internal/domain/event"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print prompt update events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Nothing in this process reads a cache, so there is no session to
			// invalidate; the command only prints events.
			var printErr error
			err := watch.Run(ctx, opts.server, nil, func(e event.Event) {
				if err := opts.print(cmd.OutOrStdout(), e); err != nil && printErr == nil {
					printErr = err
				}
			})
			if err != nil {
				return err
			}
			return printErr
		},
	}
}
