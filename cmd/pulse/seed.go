package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/feedbackpulse/pulse/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	GroupID: "data",
	Short:   "Inspect or export the seed profile",
	Long: `Inspect the seed profile used when the store is empty.

Use "seed export" to write the built-in demo profile as TOML; edit the
copy and point seed_profile (or PULSE_SEED_PROFILE) at it to seed with
your own workspace, regions, categories, and complaint texts.`,
}

var seedShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active seed profile",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		profile := seed.BuiltIn()
		origin := "built-in"
		if cfg.SeedProfile != "" {
			loaded, err := seed.LoadProfile(cfg.SeedProfile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			profile = loaded
			origin = cfg.SeedProfile
		}

		fmt.Printf("Profile:    %s\n", origin)
		fmt.Printf("Workspace:  %s (%s)\n", profile.Workspace.Name, profile.Workspace.ID)
		fmt.Printf("Regions:    %d\n", len(profile.Regions))
		fmt.Printf("Categories: %d\n", len(profile.Categories))
		fmt.Printf("Seed count: %d feedbacks\n", cfg.SeedCount)
	},
}

var seedExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the built-in profile as an editable TOML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file, err := os.Create(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()

		if err := toml.NewEncoder(file).Encode(seed.BuiltIn()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to encode profile: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote seed profile to %s\n", args[0])
	},
}

func init() {
	seedCmd.AddCommand(seedShowCmd, seedExportCmd)
	rootCmd.AddCommand(seedCmd)
}
