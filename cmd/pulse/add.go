package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/store"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var addCmd = &cobra.Command{
	Use:     "add",
	GroupID: "data",
	Short:   "Record a new feedback",
	Long: `Record a new feedback in the local store.

The record is applied locally first and mirrored to the backend in the
background; a backend failure never discards the record.

Without --description in an interactive terminal, an input form is
shown. Region and category accept an id or a display name.

Example usage:
  pulse add --description "Falta remédio no posto" --region Centro --category Saúde
  pulse add -d "Praça revitalizada" -r reg-1 -c cat-5 --sentiment positive`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		description, _ := cmd.Flags().GetString("description")
		region, _ := cmd.Flags().GetString("region")
		category, _ := cmd.Flags().GetString("category")
		sentimentFlag, _ := cmd.Flags().GetString("sentiment")
		source, _ := cmd.Flags().GetString("source")
		phoneHash, _ := cmd.Flags().GetString("phone-hash")

		if description == "" {
			if !ui.Interactive() {
				fmt.Fprintf(os.Stderr, "Error: --description is required\n")
				os.Exit(1)
			}
			var err error
			description, region, category, sentimentFlag, err = promptFeedback(st)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		sent := model.Sentiment(sentimentFlag)
		if sentimentFlag != "" && !sent.Valid() {
			fmt.Fprintf(os.Stderr, "Error: invalid sentiment %q (want positive, neutral, negative, or critical)\n", sentimentFlag)
			os.Exit(1)
		}
		if sentimentFlag == "" {
			sent = newClassifier(cfg).Classify(context.Background(), description)
		}

		f := st.AddFeedback(store.FeedbackInput{
			RegionID:    resolveRegion(st, region),
			CategoryID:  resolveCategory(st, category),
			Description: description,
			Sentiment:   sent,
			Source:      source,
			PhoneHash:   phoneHash,
		})

		fmt.Printf("Added %s %s %s\n", ui.ID(f.ID), ui.SentimentBadge(f.Sentiment),
			ui.Dim(fmt.Sprintf("(%s / %s)", st.RegionName(f.RegionID), st.CategoryName(f.CategoryID))))
	},
}

// promptFeedback collects a feedback via an interactive form.
func promptFeedback(st *store.Store) (description, region, category, sentimentValue string, err error) {
	regionOptions := []huh.Option[string]{{Key: "(none)", Value: ""}}
	for _, r := range st.Regions() {
		regionOptions = append(regionOptions, huh.NewOption(r.Name, r.ID))
	}
	categoryOptions := []huh.Option[string]{{Key: "(none)", Value: ""}}
	for _, c := range st.Categories() {
		categoryOptions = append(categoryOptions, huh.NewOption(c.Name, c.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Description").
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("description is required")
					}
					return nil
				}).
				Value(&description),
			huh.NewSelect[string]().
				Title("Region").
				Options(regionOptions...).
				Value(&region),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions...).
				Value(&category),
			huh.NewSelect[string]().
				Title("Sentiment").
				Options(
					huh.NewOption("auto-detect", ""),
					huh.NewOption("positive", "positive"),
					huh.NewOption("neutral", "neutral"),
					huh.NewOption("negative", "negative"),
					huh.NewOption("critical", "critical"),
				).
				Value(&sentimentValue),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", "", "", err
	}
	return description, region, category, sentimentValue, nil
}

// resolveRegion maps an id or display name to a region id. Unmatched
// values pass through as-is.
func resolveRegion(st *store.Store, value string) string {
	if value == "" {
		return ""
	}
	for _, r := range st.Regions() {
		if r.ID == value || strings.EqualFold(r.Name, value) {
			return r.ID
		}
	}
	return value
}

// resolveCategory maps an id or display name to a category id.
func resolveCategory(st *store.Store, value string) string {
	if value == "" {
		return ""
	}
	for _, c := range st.Categories() {
		if c.ID == value || strings.EqualFold(c.Name, value) {
			return c.ID
		}
	}
	return value
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Feedback text (required unless interactive)")
	addCmd.Flags().StringP("region", "r", "", "Region id or name")
	addCmd.Flags().StringP("category", "c", "", "Category id or name")
	addCmd.Flags().String("sentiment", "", "Sentiment (positive, neutral, negative, critical); auto-detected when omitted")
	addCmd.Flags().String("source", "manual", "Feedback source")
	addCmd.Flags().String("phone-hash", "", "Masked reporter phone number")

	rootCmd.AddCommand(addCmd)
}
