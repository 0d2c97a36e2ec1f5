package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecthare/vecthare-go/internal/embedder"
)

// NewQueryCmd constructs the `vecthare query` subcommand. With one collection
// id it runs a single-collection query; with several it fans out a
// multi-collection query where each collection's failure degrades to an empty
// result instead of failing the whole call.
func NewQueryCmd() *cobra.Command {
	var (
		topK      int
		threshold float64
		embed     bool
	)

	cmd := &cobra.Command{
		Use:   "query <text> <collection-id>...",
		Short: "Run a similarity query against one or more collections",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := cmdContext()
			backend, settings, err := newBackend(ctx, log)
			if err != nil {
				return err
			}

			text := args[0]
			ids := args[1:]

			var vector []float32
			if embed {
				emb, err := embedder.New(settings)
				if err != nil {
					return err
				}
				vectors, err := emb.Embed(ctx, []string{text})
				if err != nil {
					return fmt.Errorf("embed query: %w", err)
				}
				vector = vectors[0]
			}

			if len(ids) == 1 {
				res, err := backend.QueryCollection(ctx, ids[0], text, topK, settings, vector)
				if err != nil {
					return err
				}
				return printJSON(res)
			}

			th := threshold
			if !cmd.Flags().Changed("threshold") {
				th = settings.ScoreThreshold
			}
			results, err := backend.QueryMultipleCollections(ctx, ids, text, topK, th, settings, vector)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Maximum number of results per collection")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum relevance score (multi-collection queries)")
	cmd.Flags().BoolVar(&embed, "embed", false, "Compute the query vector client-side")

	return cmd
}
