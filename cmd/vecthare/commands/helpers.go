package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vecthare/vecthare-go/internal/config"
	"github.com/vecthare/vecthare-go/internal/embedder"
	"github.com/vecthare/vecthare-go/internal/hybrid"
	"github.com/vecthare/vecthare-go/internal/journal"
	"github.com/vecthare/vecthare-go/internal/logging"
	"github.com/vecthare/vecthare-go/internal/metrics"
	"github.com/vecthare/vecthare-go/internal/plugin"
	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// newBackend builds the settings, transport, and configured backend adapter,
// then initializes it. The returned backend is ready for use; a failed
// Initialize is fatal to the invocation.
func newBackend(ctx context.Context, log *slog.Logger) (vectorstore.Backend, *vectorstore.Settings, error) {
	settings, err := config.Settings()
	if err != nil {
		return nil, nil, err
	}
	embedder.WarnOnChatModel(settings, log)

	t := transport.New(&transport.Config{
		RateLimit: getEnvFloat("TRANSPORT_RATE_LIMIT"),
		RateBurst: getEnvInt("TRANSPORT_RATE_BURST"),
		Headers:   settings.Headers,
		Metrics:   metrics.New(prometheus.NewRegistry()),
	})

	var backend vectorstore.Backend
	name := config.Backend()
	blog := logging.WithBackend(log, name)
	switch name {
	case "vectra":
		backend = hybrid.New(t, blog)
	case "chroma":
		backend = plugin.NewChroma(t, blog)
	case "qdrant":
		backend = plugin.NewQdrant(t, blog)
	case "milvus":
		backend = plugin.NewMilvus(t, blog)
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q — valid values: vectra, chroma, qdrant, milvus", name)
	}

	if err := backend.Initialize(ctx, settings); err != nil {
		return nil, nil, err
	}
	return backend, settings, nil
}

// openJournal opens the operation journal, or returns nil when journalling is
// disabled via VECTHARE_JOURNAL_DB=disabled. Open failures are downgraded to
// a warning — a broken journal must never block a backend operation.
func openJournal(log *slog.Logger) journal.Journal {
	path := os.Getenv("VECTHARE_JOURNAL_DB")
	if path == "disabled" {
		return nil
	}
	if path == "" {
		var err error
		path, err = journal.DefaultDBPath()
		if err != nil {
			log.Warn("journal disabled", slog.Any("error", err))
			return nil
		}
	}
	j, err := journal.Open(path)
	if err != nil {
		log.Warn("journal disabled", slog.Any("error", err))
		return nil
	}
	return j
}

// recordOp writes one journal entry for a completed mutating operation.
// Journal failures are logged, never surfaced.
func recordOp(ctx context.Context, log *slog.Logger, j journal.Journal, e journal.Entry) {
	if j == nil {
		return
	}
	if err := j.Record(ctx, e); err != nil {
		log.Warn("journal record failed", slog.Any("error", err))
	}
}

// mutate runs fn against the journal-wrapped operation clock: it times the
// call, records the outcome, and returns fn's error unchanged.
func mutate(ctx context.Context, log *slog.Logger, j journal.Journal, op, collection string, items int, fn func() error) error {
	start := time.Now()
	err := fn()
	entry := journal.Entry{
		Op:         op,
		Backend:    config.Backend(),
		Collection: collection,
		Items:      items,
		Duration:   time.Since(start),
	}
	if err != nil {
		entry.Err = err.Error()
	}
	recordOp(ctx, log, j, entry)
	return err
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cmdContext returns the logger-carrying context for a command invocation.
func cmdContext() (context.Context, *slog.Logger) {
	log := logging.New()
	return logging.WithLogger(context.Background(), log), log
}

// getEnvFloat returns the float value of the named environment variable, or
// zero if unset or unparseable.
func getEnvFloat(key string) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// getEnvInt returns the integer value of the named environment variable, or
// zero if unset or unparseable.
func getEnvInt(key string) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return 0
}
