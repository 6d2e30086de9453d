package cli

import (
	"github.com/spf13/cobra"

	"github.com/alanyang/iobos/internal/client/activation"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

func newActivateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Activate an agent and print the published state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := opts.session()
			f := activation.New(opts.resolver(sess), sess)
			active := f.Activate(cmd.Context(), domainprompt.AgentID(args[0]))
			return opts.print(cmd.OutOrStdout(), active)
		},
	}
}
