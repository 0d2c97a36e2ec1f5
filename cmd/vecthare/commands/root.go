// Package commands defines all Cobra CLI commands for the vecthare binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/vecthare/vecthare-go/internal/audit"
	"github.com/vecthare/vecthare-go/internal/config"
	"github.com/vecthare/vecthare-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vecthare",
		Short: "VectHare — uniform access to interchangeable vector storage backends",
		Long: `VectHare stores and searches text chunks as vector embeddings across
interchangeable backends: the host-native vector store plus Chroma, Qdrant,
and Milvus reached through the extension's unified API.

The active backend is selected via the VECTOR_BACKEND environment variable
or a YAML config file (~/.vecthare/config.yaml).
See 'vecthare --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.vecthare/config.yaml)")

	root.AddCommand(
		NewHealthCmd(),
		NewHashesCmd(),
		NewInsertCmd(),
		NewDeleteCmd(),
		NewQueryCmd(),
		NewPurgeCmd(),
		NewChunksCmd(),
		NewStatsCmd(),
		NewCollectionsCmd(),
		NewJournalCmd(),
		NewVersionCmd(),
	)

	return root
}
