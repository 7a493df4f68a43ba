package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/store"
	"github.com/feedbackpulse/pulse/internal/ui"
)

var regionCmd = &cobra.Command{
	Use:     "region",
	GroupID: "data",
	Short:   "Manage regions",
	Long: `Manage the regions feedback is grouped by.

Deleting a region never cascades: feedbacks keep their region reference
and render it as "N/A".`,
}

var regionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List regions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		counts := make(map[string]int)
		for _, f := range st.Feedbacks() {
			counts[f.RegionID]++
		}
		for _, r := range st.Regions() {
			fmt.Printf("%s  %-20s %s %s\n", ui.ID(r.ID), r.Name,
				ui.Dim(r.Color), ui.Countf("(%d feedbacks)", counts[r.ID]))
		}
	},
}

var regionAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a region",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		color, _ := cmd.Flags().GetString("color")
		r := st.AddRegion(args[0], color)
		fmt.Printf("Added region %s %s\n", ui.ID(r.ID), r.Name)
	},
}

var regionUpdateCmd = &cobra.Command{
	Use:   "update <region-id>",
	Short: "Update a region's name or color",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		var patch store.RegionPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("color") {
			color, _ := cmd.Flags().GetString("color")
			patch.Color = &color
		}

		r, ok := st.UpdateRegion(args[0], patch)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: region %s not found\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("Updated region %s %s\n", ui.ID(r.ID), r.Name)
	},
}

var regionDeleteCmd = &cobra.Command{
	Use:   "delete <region-id>",
	Short: "Delete a region",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg, "[pulse] ")
		st, adapter := openStore(cfg, logger)
		defer closeBackend(st, adapter)

		st.DeleteRegion(args[0])
		fmt.Printf("Deleted region %s\n", ui.ID(args[0]))
	},
}

func init() {
	regionAddCmd.Flags().String("color", "", "Style token (e.g. blue-500)")
	regionUpdateCmd.Flags().String("name", "", "New name")
	regionUpdateCmd.Flags().String("color", "", "New style token")

	regionCmd.AddCommand(regionListCmd, regionAddCmd, regionUpdateCmd, regionDeleteCmd)
	rootCmd.AddCommand(regionCmd)
}
