/*
main.go - Operational CLI for the benefits service

PURPOSE:
  hrctl works directly against the SQLite database: it seeds demo data,
  runs CSV imports without going through HTTP, and prints table counts.

COMMANDS:
  hrctl seed    --db benefits.db [--workers 1000] [--seed 42] [--keep]
  hrctl import  {workers|enrollments|time-entries} FILE --db benefits.db
  hrctl stats   --db benefits.db

The import subcommand uses the same pipeline as the HTTP endpoints, so
rows land with identical validation and audit entries.
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openhcm/benefits-engine/eib"
	"github.com/openhcm/benefits-engine/fixture"
	"github.com/openhcm/benefits-engine/store/sqlite"
)

var dbPath string

func main() {
	root := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operate the benefits cost database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "benefits.db", "SQLite database path")

	root.AddCommand(seedCmd(), importCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func openStore() (*sqlite.Store, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return store, nil
}

// =============================================================================
// SEED
// =============================================================================

func seedCmd() *cobra.Command {
	var (
		workers int
		seed    int64
		keep    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with deterministic demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if !keep {
				if err := store.Reset(ctx); err != nil {
					return fmt.Errorf("reset: %w", err)
				}
			}

			ds, err := fixture.Load(ctx, store, fixture.Config{Seed: seed, Workers: workers})
			if err != nil {
				return err
			}

			color.Green("Seed complete")
			fmt.Printf("  workers:      %d\n", len(ds.Workers))
			fmt.Printf("  enrollments:  %d\n", len(ds.Enrollments))
			fmt.Printf("  time entries: %d\n", len(ds.TimeEntries))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1000, "number of workers to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "PRNG seed")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep existing rows instead of resetting")
	return cmd
}

// =============================================================================
// IMPORT
// =============================================================================

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import {workers|enrollments|time-entries} FILE",
		Short: "Import a CSV file into the database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			importer := eib.NewImporter(store)
			ctx := context.Background()

			var result eib.Result
			switch kind {
			case "workers":
				result, err = importer.ImportWorkers(ctx, f)
			case "enrollments":
				result, err = importer.ImportEnrollments(ctx, f)
			case "time-entries":
				result, err = importer.ImportTimeEntries(ctx, f)
			default:
				return fmt.Errorf("unknown import kind %q", kind)
			}
			if err != nil {
				return err
			}

			color.Green("Imported %d rows", result.Imported)
			for _, e := range result.Errors {
				color.Yellow("  skipped %s", e)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d rows skipped", len(result.Errors))
			}
			return nil
		},
	}
	return cmd
}

// =============================================================================
// STATS
// =============================================================================

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print table row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Count(context.Background())
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println(dbPath)
			fmt.Printf("  workers:      %d\n", st.Workers)
			fmt.Printf("  enrollments:  %d\n", st.Enrollments)
			fmt.Printf("  time entries: %d\n", st.TimeEntries)
			fmt.Printf("  audit rows:   %d\n", st.AuditRows)
			return nil
		},
	}
}
