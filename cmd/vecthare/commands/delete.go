package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd constructs the `vecthare delete` subcommand, which removes
// chunks from a collection by hash. Deleting a hash that does not exist is
// not an error.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection-id> <hash>...",
		Short: "Delete chunks from a collection by content hash",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			hashes := args[1:]
			j := openJournal(log)
			if j != nil {
				defer j.Close()
			}
			err = mutate(ctx, log, j, "delete", args[0], len(hashes), func() error {
				return backend.DeleteVectorItems(ctx, args[0], hashes, settings)
			})
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d hashes from %s\n", len(hashes), args[0])
			return nil
		},
	}
}
