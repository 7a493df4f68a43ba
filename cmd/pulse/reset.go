package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:     "reset",
	GroupID: "data",
	Short:   "Restore the seeded demo data",
	Long: `Discard the entire local store and regenerate the seeded demo data.

The reset is local-only: the backend keeps its current state and will
overwrite the fresh seed on the next pull. Use --force to skip the
confirmation prompt.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Print("This discards all local feedbacks, regions, and categories. Continue? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted")
				return
			}
		}

		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		st.ResetData()
		fmt.Printf("Reset to seed data: %d regions, %d categories, %d feedbacks\n",
			len(st.Regions()), len(st.Categories()), len(st.Feedbacks()))
	},
}

func init() {
	resetCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
