package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/core-platform/config"
	"github.com/upb/core-platform/internal/observability"
	"go.uber.org/zap"
)

const serviceName = "core-platform"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "City catalog and user API behind bearer token authentication",
		Long: `core-platform serves the city catalog, user accounts and file uploads.
Every route except login, sign-up, health and API docs requires a bearer token
obtained from POST /users/login.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newHashPasswordCmd(),
		newImportCitiesCmd(),
	)
	return root
}

// initLogger builds the process logger from the observability settings
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(observability.LoggerConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: serviceName,
	})
}
