package plugin

import (
	"context"
	"log/slog"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// queryFunc runs one collection's query with an explicit threshold.
type queryFunc func(ctx context.Context, collectionID string, threshold float64) (*vectorstore.QueryResult, error)

// queryEach fans out one query per collection id, sequentially. Each
// collection's outcome is independent: a failed query degrades that
// collection's entry to an empty result and logs a warning instead of
// failing the whole call.
func queryEach(ctx context.Context, log *slog.Logger, collectionIDs []string, threshold float64, query queryFunc) map[string]*vectorstore.QueryResult {
	results := make(map[string]*vectorstore.QueryResult, len(collectionIDs))
	for _, id := range collectionIDs {
		r, err := query(ctx, id, threshold)
		if err != nil {
			log.Warn("multi-collection query degraded to empty result",
				slog.String("collection", id),
				slog.Any("error", err),
			)
			results[id] = vectorstore.EmptyResult()
			continue
		}
		results[id] = r
	}
	return results
}

// logInsertFailure emits chunk-size statistics before an insert error is
// returned, so oversized payloads (the usual out-of-memory trigger in the
// embedding step) are diagnosable from the log alone. The original error is
// never suppressed — callers return it unchanged after this.
func logInsertFailure(log *slog.Logger, backend, collectionID string, items []vectorstore.VectorItem, err error) {
	count, total, max := vectorstore.ChunkSizeStats(items)
	log.Warn("insert failed",
		slog.String("backend", backend),
		slog.String("collection", collectionID),
		slog.Int("chunks", count),
		slog.Int("total_bytes", total),
		slog.Int("max_chunk_bytes", max),
		slog.Any("error", err),
	)
}
