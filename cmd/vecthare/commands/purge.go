package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPurgeCmd constructs the `vecthare purge` subcommand. Purging one
// collection removes only that collection's items; --all removes every item
// the backend holds across all collections and tenants, which is irreversible
// and therefore gated behind --yes.
//
// --files marks the purge as a file-collection purge in the journal. The
// backend operation is identical; the distinction exists only for the two
// caller-side call sites.
func NewPurgeCmd() *cobra.Command {
	var (
		all   bool
		yes   bool
		files bool
	)

	cmd := &cobra.Command{
		Use:   "purge [collection-id]",
		Short: "Delete all items in one collection, or everything with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()

			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a collection id or --all")
			}

			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			j := openJournal(log)
			if j != nil {
				defer j.Close()
			}

			if all {
				if !yes {
					return fmt.Errorf("--all deletes every item across all collections and tenants; re-run with --yes to confirm")
				}
				err := mutate(ctx, log, j, "purge-all", "", 0, func() error {
					return backend.PurgeAllVectorIndexes(ctx, settings)
				})
				if err != nil {
					return err
				}
				fmt.Println("purged all vector indexes")
				return nil
			}

			op := "purge"
			if files {
				op = "purge-files"
			}
			err = mutate(ctx, log, j, op, args[0], 0, func() error {
				return backend.PurgeVectorIndex(ctx, args[0], settings)
			})
			if err != nil {
				return err
			}
			fmt.Printf("purged %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Purge every collection the backend holds (irreversible)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm a --all purge")
	cmd.Flags().BoolVar(&files, "files", false, "Journal this purge as a file-collection purge")

	return cmd
}
