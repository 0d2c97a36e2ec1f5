package commands

import (
	"github.com/spf13/cobra"
)

// NewHashesCmd constructs the `vecthare hashes` subcommand, which lists the
// content hashes stored for one collection.
func NewHashesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashes <collection-id>",
		Short: "List the content hashes stored for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			hashes, err := backend.GetSavedHashes(ctx, args[0], settings)
			if err != nil {
				return err
			}
			return printJSON(hashes)
		},
	}
}
