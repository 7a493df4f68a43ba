package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/config"
	"github.com/feedbackpulse/pulse/internal/dashboard"
	"github.com/feedbackpulse/pulse/internal/ingest"
	"github.com/feedbackpulse/pulse/internal/sentiment"
	"github.com/feedbackpulse/pulse/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "serve",
	Short:   "Start the webhook server, dashboard, and inbox daemon",
	Long: `Start the long-running services over the local store.

Services:
  - Webhook server (POST /api/webhook) accepting feedback from n8n,
    WhatsApp bridges, and other automations
  - WebSocket dashboard broadcasting live changes and stats
  - Inbox daemon ingesting JSON files dropped into the inbox directory
    (only when an inbox directory is configured)

Example usage:
  pulse serve                              # defaults: :8090 / :8091
  pulse serve --addr :9090 --port 9091
  pulse serve --inbox ./inbox              # also watch a drop directory

Connect a dashboard client:
  ws://localhost:8091/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.WebhookAddr = addr
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.DashboardPort = port
		}
		if inbox, _ := cmd.Flags().GetString("inbox"); inbox != "" {
			cfg.InboxDir = inbox
		}

		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		classifier := newClassifier(cfg)

		// Dashboard first so mutations from the other services are
		// broadcast from the start.
		dash := dashboard.NewServer(&dashboard.Config{
			Port:   cfg.DashboardPort,
			Logger: newLogger(cfg, "[dashboard] "),
		})
		dashboard.Attach(dash, st)
		if err := dash.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start dashboard: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := dash.Stop(); err != nil {
				logger.Printf("Dashboard shutdown error: %v", err)
			}
		}()

		hookCfg := webhook.Config{
			Addr:       cfg.WebhookAddr,
			Store:      st,
			Classifier: classifier,
			Logger:     newLogger(cfg, "[webhook] "),
		}
		if adapter != nil {
			hookCfg.Remote = adapter
		}
		hook, err := webhook.NewServer(hookCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := hook.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start webhook server: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := hook.Stop(); err != nil {
				logger.Printf("Webhook shutdown error: %v", err)
			}
		}()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if cfg.InboxDir != "" {
			daemon, err := ingest.NewWithConfig(st, cfg.InboxDir, &ingest.Config{
				Classifier: classifier,
				Logger:     newLogger(cfg, "[ingest] "),
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			go func() {
				if err := daemon.Start(ctx); err != nil {
					logger.Printf("Inbox daemon error: %v", err)
				}
			}()
			fmt.Printf("Inbox daemon watching %s\n", cfg.InboxDir)
		}

		fmt.Printf("Webhook server on http://localhost%s/api/webhook\n", hook.Addr())
		fmt.Printf("Dashboard WebSocket on ws://%s/ws\n", dash.Addr())
		fmt.Println("\nPress Ctrl+C to stop...")

		<-ctx.Done()
		fmt.Println("\nShutting down...")
	},
}

// newClassifier picks the sentiment classifier: LLM when an API key is
// configured, keyword rules otherwise.
func newClassifier(cfg *config.Config) sentiment.Classifier {
	if cfg.AnthropicAPIKey != "" {
		return sentiment.NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel, nil)
	}
	return sentiment.Keyword{}
}

func init() {
	serveCmd.Flags().String("addr", "", "Webhook listen address (default \":8090\")")
	serveCmd.Flags().IntP("port", "p", 0, "Dashboard port (default 8091)")
	serveCmd.Flags().String("inbox", "", "Inbox directory to watch for feedback files")

	rootCmd.AddCommand(serveCmd)
}
