package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vecthare/vecthare-go/internal/embedder"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// NewInsertCmd constructs the `vecthare insert` subcommand. Items are read as
// a JSON array of chunks from a file or stdin and upserted by hash. With
// --embed, vectors are computed client-side before the insert so the backend
// skips its own embedding step.
func NewInsertCmd() *cobra.Command {
	var (
		file  string
		embed bool
	)

	cmd := &cobra.Command{
		Use:   "insert <collection-id>",
		Short: "Upsert chunks into a collection (reads a JSON item array)",
		Long: `Upsert chunks into a collection.

Items are read from --file, or stdin when no file is given, as a JSON array:

  [{"hash": "...", "text": "...", "index": 0, "metadata": {...}}, ...]

Insert is an upsert by content hash: an item whose hash already exists in the
collection replaces the stored chunk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()

			items, err := readItems(file)
			if err != nil {
				return err
			}

			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			if embed {
				if err := embedItems(ctx, items, settings); err != nil {
					return err
				}
			}

			j := openJournal(log)
			if j != nil {
				defer j.Close()
			}
			err = mutate(ctx, log, j, "insert", args[0], len(items), func() error {
				return backend.InsertVectorItems(ctx, args[0], items, settings)
			})
			if err != nil {
				return err
			}
			fmt.Printf("inserted %d items into %s\n", len(items), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON item array (default: stdin)")
	cmd.Flags().BoolVar(&embed, "embed", false, "Compute vectors client-side before inserting")

	return cmd
}

// readItems decodes the JSON item array from path, or stdin when path is empty.
func readItems(path string) ([]vectorstore.VectorItem, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open items file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var items []vectorstore.VectorItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// embedItems fills in each item's vector using the client-side embedder for
// the active provider. Items already carrying a vector keep it.
func embedItems(ctx context.Context, items []vectorstore.VectorItem, settings *vectorstore.Settings) error {
	emb, err := embedder.New(settings)
	if err != nil {
		return err
	}

	var texts []string
	var idx []int
	for i, it := range items {
		if it.Vector == nil {
			texts = append(texts, it.Text)
			idx = append(idx, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := emb.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	for n, i := range idx {
		items[i].Vector = vectors[n]
	}
	return nil
}
