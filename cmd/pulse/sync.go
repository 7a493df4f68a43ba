package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Pull the backend state over the local store",
	Long: `Replace the local store with the current backend state.

This performs a full pull:
  1. Fetches the oldest workspace from the backend
  2. Fetches its regions, categories, and feedbacks
  3. Overwrites the local snapshot with the fetched state

Local records that never reached the backend are discarded. If any
fetch fails the local store is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")

		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		if adapter == nil {
			fmt.Fprintf(os.Stderr, "Error: backend unavailable\n")
			os.Exit(1)
		}

		st.Pull(context.Background())

		ws := st.Workspace()
		fmt.Printf("Synced workspace %s: %d regions, %d categories, %d feedbacks\n",
			ws.Name, len(st.Regions()), len(st.Categories()), len(st.Feedbacks()))
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
