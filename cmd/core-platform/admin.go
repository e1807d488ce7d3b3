package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upb/core-platform/auth"
	"github.com/upb/core-platform/config"
	"github.com/upb/core-platform/repositories/postgres"
	"github.com/upb/core-platform/services/city"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and cities tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.New(ctx)
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := postgres.NewDB(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.InitSchema(ctx)
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Long: `Print the bcrypt hash of a password, for seeding accounts by hand.
Without an argument the password is read from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read password: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if secret == "" {
				return errors.New("password is required")
			}

			hash, err := auth.HashPassword(secret, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func newImportCitiesCmd() *cobra.Command {
	var ifEmpty bool

	cmd := &cobra.Command{
		Use:   "import-cities <file.csv>",
		Short: "Import a city catalog CSV",
		Long: `Import rows of latD,ns,longD,ew,city,state into the cities table.
Malformed rows are skipped and counted; the import itself is one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.New(ctx)
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			factory, err := postgres.NewRepositoryFactory(cfg, logger)
			if err != nil {
				return err
			}
			defer factory.Close()

			repos := factory.NewRepositories()
			svc := city.NewService(repos.Cities, factory.GetTransactionManager(), cfg.Catalog.CacheTTL, nil, logger)

			var result city.ImportResult
			if ifEmpty {
				var seeded bool
				result, seeded, err = svc.SeedIfEmpty(ctx, f)
				if err == nil && !seeded {
					logger.Info("cities table is not empty, nothing imported")
					return nil
				}
			} else {
				result, err = svc.Import(ctx, f)
			}
			if err != nil {
				return err
			}

			logger.Info("city catalog imported", zap.Stringer("result", result))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
	cmd.Flags().BoolVar(&ifEmpty, "if-empty", false, "only import when the cities table is empty")
	return cmd
}
