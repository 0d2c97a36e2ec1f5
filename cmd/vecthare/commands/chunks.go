package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewChunksCmd constructs the `vecthare chunks` subcommand tree for the
// extended chunk operations: paginated listing, single-chunk fetch, and the
// two mutation flavours. Text edits trigger server-side re-embedding;
// metadata edits deliberately do not.
func NewChunksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "Inspect and edit stored chunks (requires backend support)",
	}
	cmd.AddCommand(
		newChunksListCmd(),
		newChunksGetCmd(),
		newChunksEditTextCmd(),
		newChunksEditMetaCmd(),
	)
	return cmd
}

func newChunksListCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "list <collection-id>",
		Short: "List one page of a collection's chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			page, err := backend.ListChunks(ctx, args[0], offset, limit, settings)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Page start position")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")

	return cmd
}

func newChunksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection-id> <hash>",
		Short: "Fetch a single chunk by content hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			chunk, err := backend.GetChunk(ctx, args[0], args[1], settings)
			if err != nil {
				return err
			}
			if chunk == nil {
				return fmt.Errorf("chunk %s not found in %s", args[1], args[0])
			}
			return printJSON(chunk)
		},
	}
}

func newChunksEditTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit-text <collection-id> <hash> <text>",
		Short: "Replace a chunk's text (the backend re-embeds it)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			j := openJournal(log)
			if j != nil {
				defer j.Close()
			}
			err = mutate(ctx, log, j, "chunk-text", args[0], 1, func() error {
				return backend.UpdateChunkText(ctx, args[0], args[1], args[2], settings)
			})
			if err != nil {
				return err
			}
			fmt.Printf("updated text of %s in %s\n", args[1], args[0])
			return nil
		},
	}
}

func newChunksEditMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit-meta <collection-id> <hash> <metadata-json>",
		Short: "Replace a chunk's metadata bag without re-embedding",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()

			var meta map[string]any
			if err := json.Unmarshal([]byte(args[2]), &meta); err != nil {
				return fmt.Errorf("parse metadata: %w", err)
			}

			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			j := openJournal(log)
			if j != nil {
				defer j.Close()
			}
			err = mutate(ctx, log, j, "chunk-metadata", args[0], 1, func() error {
				return backend.UpdateChunkMetadata(ctx, args[0], args[1], meta, settings)
			})
			if err != nil {
				return err
			}
			fmt.Printf("updated metadata of %s in %s\n", args[1], args[0])
			return nil
		},
	}
}
