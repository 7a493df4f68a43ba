package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/dashboard"
	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "serve",
	Short:   "Follow the live dashboard feed in the terminal",
	Long: `Connect to a running dashboard server and print its broadcast
frames as they arrive.

Example usage:
  pulse watch                         # connect to localhost:8091
  pulse watch --url ws://host:9000/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			cfg := loadConfig()
			url = fmt.Sprintf("ws://localhost:%d/ws", cfg.DashboardPort)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to connect to %s: %v\n", url, err)
			os.Exit(1)
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		fmt.Printf("Watching %s (Ctrl+C to stop)\n\n", url)

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				fmt.Fprintf(os.Stderr, "Connection closed: %v\n", err)
				os.Exit(1)
			}

			var msg dashboard.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			printFrame(msg)
		}
	},
}

// printFrame renders a single dashboard frame.
func printFrame(msg dashboard.Message) {
	ts := ui.Dim(msg.Timestamp.Local().Format("15:04:05"))

	switch msg.Type {
	case dashboard.MessageTypeFeedbackUpdate,
		dashboard.MessageTypeRegionUpdate,
		dashboard.MessageTypeCategoryUpdate:
		var change dashboard.ChangeData
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			return
		}
		fmt.Printf("%s  %-16s %s %s\n", ts, msg.Type, ui.ID(change.ID), change.Action)

	case dashboard.MessageTypeStats:
		var stats model.Stats
		if err := json.Unmarshal(msg.Data, &stats); err != nil {
			return
		}
		fmt.Printf("%s  %-16s total=%d positive=%d neutral=%d negative=%d critical=%d\n",
			ts, msg.Type, stats.TotalFeedbacks,
			stats.SentimentDistribution[model.SentimentPositive],
			stats.SentimentDistribution[model.SentimentNeutral],
			stats.SentimentDistribution[model.SentimentNegative],
			stats.SentimentDistribution[model.SentimentCritical])

	default:
		fmt.Printf("%s  %s\n", ts, msg.Type)
	}
}

func init() {
	watchCmd.Flags().String("url", "", "Dashboard WebSocket URL (default from config)")
	rootCmd.AddCommand(watchCmd)
}
