package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewJournalCmd constructs the `vecthare journal` subcommand, which prints the
// most recent entries from the local operation journal.
func NewJournalCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent mutating operations from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, log := cmdContext()

			j := openJournal(log)
			if j == nil {
				return fmt.Errorf("journal is disabled or unavailable")
			}
			defer j.Close()

			entries, err := j.Recent(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				status := "ok"
				if e.Err != "" {
					status = "error: " + e.Err
				}
				fmt.Printf("%s  %-14s %-8s %-30s items=%-5d %6dms  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Op, e.Backend, e.Collection, e.Items,
					e.Duration.Milliseconds(), status)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")

	return cmd
}
