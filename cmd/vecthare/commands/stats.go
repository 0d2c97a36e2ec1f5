package commands

import (
	"github.com/spf13/cobra"
)

// NewStatsCmd constructs the `vecthare stats` subcommand, which reports a
// collection's item count plus any backend-reported statistics.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <collection-id>",
		Short: "Show aggregate statistics for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			stats, err := backend.GetStats(ctx, args[0], settings)
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}
