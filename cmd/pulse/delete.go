package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <feedback-id>...",
	GroupID: "data",
	Short:   "Delete feedbacks by id",
	Long: `Delete one or more feedbacks from the local store.

Deletion is mirrored to the backend. Unknown ids are silently ignored,
so re-running a delete is safe.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		for _, id := range args {
			st.DeleteFeedback(id)
			fmt.Printf("Deleted %s\n", ui.ID(id))
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
