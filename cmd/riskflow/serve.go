package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelworks/riskflow/internal/scoring"
	"github.com/kestrelworks/riskflow/internal/server"
	"github.com/kestrelworks/riskflow/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assessment HTTP API",
		Long: `Serve exposes the workflow over HTTP: a scoring endpoint for split
deployments, single and batch assessment endpoints, and a health
check.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 8000, "port to listen on")
	cmd.Flags().Bool("save", false, "persist completed assessments to the database")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := defaultLogger()

	// Credentials and region commonly live in a .env file alongside
	// the deployment; a missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	runner, agent, err := newRunner(ctx, "", logger)
	if err != nil {
		return err
	}
	defer func() { _ = agent.Close() }()

	var store storage.Storage
	if save, _ := cmd.Flags().GetBool("save"); save {
		dbPath, err := defaultDBPath()
		if err != nil {
			return err
		}

		sqlStore, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = sqlStore.Close() }()

		if err := sqlStore.Migrate(ctx); err != nil {
			return err
		}
		store = sqlStore
	}

	srv := server.New(server.Config{
		Port:    viper.GetInt("server.port"),
		Runner:  runner,
		Scoring: scoring.NewPipeline(logger),
		Storage: store,
		Logger:  logger,
	})

	return srv.Start(ctx)
}
