package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:     "ingest <inbox-dir>",
	GroupID: "serve",
	Short:   "Run the inbox daemon standalone",
	Long: `Watch an inbox directory and apply dropped JSON feedback files.

Each file holds one feedback record (same shape as the webhook body).
Handled files move to processed/, malformed ones to failed/. Records
are mirrored to the backend like any other mutation.

Use --once to drain the inbox and exit instead of watching.

Example usage:
  pulse ingest ./inbox
  pulse ingest ./inbox --once`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		once, _ := cmd.Flags().GetBool("once")

		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		daemon, err := ingest.NewWithConfig(st, args[0], &ingest.Config{
			Classifier: newClassifier(cfg),
			Logger:     newLogger(cfg, "[ingest] "),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if once {
			before := len(st.Feedbacks())
			ctx, cancel := context.WithCancel(context.Background())
			cancel() // Start drains before it blocks on the context
			if err := daemon.Start(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Ingested %d feedbacks\n", len(st.Feedbacks())-before)
			return
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
		if err := daemon.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	ingestCmd.Flags().Bool("once", false, "Drain the inbox and exit")
	rootCmd.AddCommand(ingestCmd)
}
