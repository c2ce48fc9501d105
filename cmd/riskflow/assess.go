package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kestrelworks/riskflow/internal/model"
	"github.com/kestrelworks/riskflow/internal/storage"
)

func assessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Assess entities from a JSON document",
		Long: `Assess reads a JSON document holding a single entity or an array of
entities, runs the full risk workflow for each, and writes the
assessment records to stdout as JSON. With no file argument the
document is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAssess,
	}

	cmd.Flags().String("remote-scorer", "", "URL of a split scoring service (default: score locally)")
	cmd.Flags().Bool("save", false, "persist assessment records to the database")
	cmd.Flags().String("db", "", "database path (overrides config)")

	return cmd
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := defaultLogger()

	input, err := readInput(args)
	if err != nil {
		return err
	}

	entities, err := loadEntities(input)
	if err != nil {
		return err
	}

	remoteURL, _ := cmd.Flags().GetString("remote-scorer")
	runner, agent, err := newRunner(ctx, remoteURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = agent.Close() }()

	// Progress goes to stderr so stdout stays clean JSON.
	bar := progressbar.NewOptions(len(entities),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("assessing"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)

	records := runner.AssessBatch(ctx, entities, func(done, _ int) {
		_ = bar.Add(1)
	})

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRecords(cmd, records); err != nil {
			return err
		}
	}

	return writeRecords(records)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func saveRecords(cmd *cobra.Command, records []model.AssessmentRecord) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return err
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	for i := range records {
		if err := store.SaveAssessment(ctx, &records[i]); err != nil {
			return fmt.Errorf("failed to save assessment for %q: %w", records[i].EntityName, err)
		}
	}

	return nil
}

// writeRecords emits a single record as an object and multiples as an
// array, matching the input shape convention.
func writeRecords(records []model.AssessmentRecord) error {
	var payload any = records
	if len(records) == 1 {
		payload = records[0]
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
