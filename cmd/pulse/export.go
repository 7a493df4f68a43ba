package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/export"
)

var exportCmd = &cobra.Command{
	Use:     "export <path>",
	GroupID: "sync",
	Short:   "Export feedbacks to JSONL or YAML",
	Long: `Export the local store to a file.

Formats:
  jsonl   one feedback per line (the interchange format; importable)
  yaml    full workspace archive including regions and categories

The format is inferred from the file extension unless --format is given.

Example usage:
  pulse export feedbacks.jsonl
  pulse export backup.yaml
  pulse export snapshot --format yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatFlag, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		n, err := export.Export(st, args[0], format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d feedbacks to %s\n", n, args[0])
	},
}

var importCmd = &cobra.Command{
	Use:     "import <path>",
	GroupID: "sync",
	Short:   "Import feedbacks from a JSONL file",
	Long: `Import feedbacks from a JSONL export into the local store.

Records whose id already exists locally are skipped, so imports are
safe to re-run. Use --dry-run to preview the outcome.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		result, err := export.Import(st, export.ImportOptions{
			FromJSONL: args[0],
			DryRun:    dryRun,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d feedbacks (%d skipped)\n", verb, result.Imported, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", e)
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "", "Output format: jsonl or yaml (default: by extension)")
	importCmd.Flags().Bool("dry-run", false, "Parse and count without applying")

	rootCmd.AddCommand(exportCmd, importCmd)
}
