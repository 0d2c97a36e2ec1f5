package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecthare/vecthare-go/internal/config"
)

// NewHealthCmd constructs the `vecthare health` subcommand. It initializes the
// configured backend and runs one liveness probe. The exit code mirrors the
// result so the command works as a scripted check.
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the configured vector backend for liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, log := cmdContext()
			backend, _, err := newBackend(ctx, log)
			if err != nil {
				return err
			}
			if !backend.HealthCheck(ctx) {
				return fmt.Errorf("backend %s is unhealthy", config.Backend())
			}
			fmt.Printf("backend %s is healthy\n", config.Backend())
			return nil
		},
	}
}
