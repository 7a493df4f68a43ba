package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/br"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/store"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "data",
	Short:   "List feedbacks, newest first",
	Long: `List feedbacks from the local store, newest first.

Filters combine with AND. --since accepts natural language ("2 days
ago", "ontem", "last monday") as well as RFC 3339 timestamps.

Example usage:
  pulse list
  pulse list --region Centro --sentiment negative
  pulse list --since "3 days ago" --limit 20
  pulse list --source whatsapp`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		region, _ := cmd.Flags().GetString("region")
		category, _ := cmd.Flags().GetString("category")
		sentimentFlag, _ := cmd.Flags().GetString("sentiment")
		source, _ := cmd.Flags().GetString("source")
		sinceFlag, _ := cmd.Flags().GetString("since")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.FeedbackFilter{
			RegionID:   resolveRegion(st, region),
			CategoryID: resolveCategory(st, category),
			Sentiment:  model.Sentiment(sentimentFlag),
			Source:     source,
		}
		if sinceFlag != "" {
			since, err := parseSince(sinceFlag)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			filter.Since = since
		}

		feedbacks := st.FilterFeedbacks(filter)
		total := len(feedbacks)
		if limit > 0 && len(feedbacks) > limit {
			feedbacks = feedbacks[:limit]
		}

		if total == 0 {
			fmt.Println("No feedbacks match")
			return
		}

		for _, f := range feedbacks {
			fmt.Printf("%s  %s  %-8s  %s\n",
				ui.ID(f.ID),
				ui.Dim(f.CreatedAt.Local().Format("2006-01-02 15:04")),
				ui.SentimentBadge(f.Sentiment),
				f.Description)
			fmt.Printf("      %s\n",
				ui.Dim(fmt.Sprintf("%s / %s / %s",
					st.RegionName(f.RegionID), st.CategoryName(f.CategoryID), f.Source)))
		}
		fmt.Printf("\n%s\n", ui.Countf("%d of %d feedbacks", len(feedbacks), total))
	},
}

// parseSince accepts RFC 3339, a plain date, or natural language in
// English and Portuguese.
func parseSince(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(br.All...)
	w.Add(common.All...)

	result, err := w.Parse(value, time.Now())
	if err != nil || result == nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q", value)
	}
	return result.Time, nil
}

func init() {
	listCmd.Flags().StringP("region", "r", "", "Filter by region id or name")
	listCmd.Flags().StringP("category", "c", "", "Filter by category id or name")
	listCmd.Flags().String("sentiment", "", "Filter by sentiment")
	listCmd.Flags().String("source", "", "Filter by source")
	listCmd.Flags().String("since", "", "Only feedbacks at or after this time")
	listCmd.Flags().IntP("limit", "n", 0, "Maximum rows to print (0 = all)")

	rootCmd.AddCommand(listCmd)
}
