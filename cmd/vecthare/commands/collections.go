package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecthare/vecthare-go/internal/config"
)

// NewCollectionsCmd constructs the `vecthare collections` subcommand, which
// enumerates the collections known to the backend. Backends without an
// enumeration capability report that instead of an empty list.
func NewCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List every collection the backend knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			collections, err := backend.DiscoverCollections(ctx, settings)
			if err != nil {
				return err
			}
			if collections == nil {
				fmt.Printf("backend %s cannot enumerate collections\n", config.Backend())
				return nil
			}
			return printJSON(collections)
		},
	}
}
