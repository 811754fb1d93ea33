package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crawlkit/sqlgen/internal/config"
	"github.com/crawlkit/sqlgen/internal/generator"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List every base table in the connected database",
	Long: `
Connect to the configured database and print its base table names, one per
line, in catalog order. Nothing is written to disk.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		svc, err := generator.NewService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		tables, err := svc.ListTables(context.Background())
		if err != nil {
			return err
		}

		if len(tables) == 0 {
			color.Yellow("No tables found")
			return nil
		}

		color.Cyan("Found %d table(s):", len(tables))
		for _, name := range tables {
			fmt.Println("  " + name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
