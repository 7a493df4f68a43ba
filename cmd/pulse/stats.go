package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "data",
	Short:   "Show the sentiment summary",
	Long: `Show the derived summary the dashboard displays: total feedback
count, sentiment distribution, and the busiest region and category.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		stats := st.Stats()
		ws := st.Workspace()

		fmt.Println(ui.Title(ws.Name))
		fmt.Printf("Total feedbacks: %d\n\n", stats.TotalFeedbacks)

		for _, s := range []model.Sentiment{
			model.SentimentPositive,
			model.SentimentNeutral,
			model.SentimentNegative,
			model.SentimentCritical,
		} {
			count := stats.SentimentDistribution[s]
			pct := 0.0
			if stats.TotalFeedbacks > 0 {
				pct = float64(count) / float64(stats.TotalFeedbacks) * 100
			}
			fmt.Printf("  %-10s %4d  %s\n", ui.SentimentBadge(s), count,
				ui.Dim(fmt.Sprintf("%.1f%%", pct)))
		}

		fmt.Println()
		if stats.TopRegion != nil {
			fmt.Printf("Top region:   %s %s\n", stats.TopRegion.Name,
				ui.Countf("(%d)", stats.TopRegion.Count))
		}
		if stats.TopCategory != nil {
			fmt.Printf("Top category: %s %s\n", stats.TopCategory.Name,
				ui.Countf("(%d)", stats.TopCategory.Count))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
