package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"veresiye/internal/config"
	"veresiye/internal/db"
	"veresiye/internal/domain"
	"veresiye/internal/ledger"
	"veresiye/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Offline ledger administration: list, export and import ledger bundles",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var ledgersCmd = &cobra.Command{
	Use:   "ledgers",
	Short: "List all ledgers and mark the current one",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, pool, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		metas, err := svc.ListLedgers(cmd.Context())
		if err != nil {
			return err
		}
		current, _, err := svc.CurrentLedger(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range metas {
			marker := " "
			if m.ID == current.ID {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  (created %s, modified %s)\n", marker, m.ID, m.Name, m.CreatedDate, m.LastModified)
		}
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every ledger's record sets to a bundle file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, pool, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		bundle, err := svc.ExportAll(cmd.Context())
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("encode bundle: %w", err)
		}
		if err := os.WriteFile(exportOut, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Printf("exported %d ledgers to %s\n", len(bundle.Databases), exportOut)
		return nil
	},
}

var importIn string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge a bundle file into the ledger set (existing ids win)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read %s: %w", importIn, err)
		}
		var bundle domain.ExportBundle
		if err := json.Unmarshal(raw, &bundle); err != nil {
			return fmt.Errorf("decode bundle: %w", err)
		}

		svc, pool, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		count, err := svc.ImportAll(cmd.Context(), bundle)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d ledgers from %s\n", count, importIn)
		return nil
	},
}

func openService(ctx context.Context) (*ledger.Service, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return ledger.New(store.NewPostgres(pool)), pool, nil
}

func main() {
	exportCmd.Flags().StringVar(&exportOut, "out", "ledger-bundle.json", "output bundle path")
	importCmd.Flags().StringVar(&importIn, "in", "ledger-bundle.json", "input bundle path")
	rootCmd.AddCommand(ledgersCmd, exportCmd, importCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
