package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/store"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	GroupID: "data",
	Short:   "Manage categories",
	Long: `Manage the topical categories feedback is classified into.

Deleting a category never cascades: feedbacks keep their category
reference and render it as "N/A".`,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		counts := make(map[string]int)
		for _, f := range st.Feedbacks() {
			counts[f.CategoryID]++
		}
		for _, c := range st.Categories() {
			fmt.Printf("%s  %-16s %-12s %s %s\n", ui.ID(c.ID), c.Name,
				ui.Dim(c.Icon), ui.Dim(c.Color), ui.Countf("(%d feedbacks)", counts[c.ID]))
		}
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		icon, _ := cmd.Flags().GetString("icon")
		color, _ := cmd.Flags().GetString("color")
		c := st.AddCategory(args[0], icon, color)
		fmt.Printf("Added category %s %s\n", ui.ID(c.ID), c.Name)
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update <category-id>",
	Short: "Update a category's name, icon, or color",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		var patch store.CategoryPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("icon") {
			icon, _ := cmd.Flags().GetString("icon")
			patch.Icon = &icon
		}
		if cmd.Flags().Changed("color") {
			color, _ := cmd.Flags().GetString("color")
			patch.Color = &color
		}

		c, ok := st.UpdateCategory(args[0], patch)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: category %s not found\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("Updated category %s %s\n", ui.ID(c.ID), c.Name)
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		st.DeleteCategory(args[0])
		fmt.Printf("Deleted category %s\n", ui.ID(args[0]))
	},
}

func init() {
	categoryAddCmd.Flags().String("icon", "", "Icon identifier (e.g. Activity)")
	categoryAddCmd.Flags().String("color", "", "Style token")
	categoryUpdateCmd.Flags().String("name", "", "New name")
	categoryUpdateCmd.Flags().String("icon", "", "New icon identifier")
	categoryUpdateCmd.Flags().String("color", "", "New style token")

	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryUpdateCmd, categoryDeleteCmd)
	rootCmd.AddCommand(categoryCmd)
}
