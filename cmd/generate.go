package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crawlkit/sqlgen/internal/config"
	"github.com/crawlkit/sqlgen/internal/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate model source files from the database schema",
	Long: `
Inspect the connected database and write one model file per table into the
output directory, plus a shared base file and a package index.

By default every table is generated. Use --tables to restrict the run to a
subset; foreign keys are still resolved against the whole schema, so a
relation into an unselected table is reported and its field omitted rather
than generated dangling.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		tables, _ := cmd.Flags().GetStringSlice("tables")
		out, _ := cmd.Flags().GetString("out")
		pkg, _ := cmd.Flags().GetString("package")
		reportPath, _ := cmd.Flags().GetString("report")

		svc, err := generator.NewService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		report, genErr := svc.Generate(context.Background(), generator.Options{
			Tables: tables,
			Out:    out,
			Pkg:    pkg,
		})

		if report != nil && reportPath != "" {
			if err := writeReport(report, reportPath); err != nil {
				color.Yellow("⚠️  Failed to write report: %v", err)
			}
		}
		if genErr != nil {
			return genErr
		}

		var warned int
		for _, tr := range report.Tables {
			warned += len(tr.Warnings)
		}
		color.Green("✅ Generated %d model(s) in %s", len(report.Tables), report.OutputDir)
		if warned > 0 {
			color.Yellow("⚠️  %d warning(s), see the report for details", warned)
			for _, tr := range report.Tables {
				for _, w := range tr.Warnings {
					color.Yellow("   %s: %s", w.Table, w.Message)
				}
			}
		}
		return nil
	},
}

func writeReport(report *generator.Report, path string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringSliceP("tables", "t", nil, "Generate only the named tables (comma separated or repeated)")
	generateCmd.Flags().StringP("out", "o", "", "Output directory (default from config, ./models)")
	generateCmd.Flags().String("package", "", "Package name for generated files (default from config, models)")
	generateCmd.Flags().String("report", "", "Write a YAML generation report to this path")
}
