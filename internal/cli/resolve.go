package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/iobos/internal/client/resolver"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ID...",
		Short: "Resolve agent records through the cache, API, static and default tiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := opts.resolver(opts.session())

			out := make([]resolver.Resolution, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, id := range args {
				g.Go(func() error {
					out[i] = res.Resolve(ctx, domainprompt.AgentID(id))
					// Resolve never fails, but after cancellation its
					// answer is a default rather than a real lookup.
					return ctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("resolve interrupted: %w", err)
			}

			return opts.print(cmd.OutOrStdout(), out)
		},
	}
}
