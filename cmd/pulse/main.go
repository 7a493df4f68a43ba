// pulse is the citizen-feedback dashboard CLI.
//
// It keeps a local-first store of feedback records (JSON snapshot plus
// an embedded SQLite backend mirror) and exposes them through a webhook
// server, a WebSocket dashboard, and an inbox ingest daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/feedbackpulse/pulse/internal/config"
	"github.com/feedbackpulse/pulse/internal/remote"
	"github.com/feedbackpulse/pulse/internal/seed"
	"github.com/feedbackpulse/pulse/internal/store"
)

var (
	cfgFile string
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Local-first citizen feedback tracker",
	Long: `pulse tracks citizen feedback for a campaign or public office.

All data lives in a local JSON snapshot that survives restarts. Every
mutation is mirrored to an embedded SQLite backend on a best-effort
basis; a failed mirror never blocks or rolls back local work.

Start here:
  pulse stats                 # sentiment summary of the seeded demo data
  pulse list --since "2 days ago"
  pulse add --description "Falta remédio no posto"
  pulse serve                 # webhook + dashboard + inbox daemon`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.pulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log to a rotated file instead of stderr")

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "serve", Title: "Server Commands:"},
	)
}

// loadConfig resolves configuration, honoring the persistent flags.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	return cfg
}

// newLogger builds the shared logger, rotating through lumberjack when
// a log file is configured.
func newLogger(cfg *config.Config, prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}

// newSeeder builds the seed generator, loading a TOML profile when one
// is configured.
func newSeeder(cfg *config.Config) (*seed.Generator, error) {
	profile := seed.BuiltIn()
	if cfg.SeedProfile != "" {
		loaded, err := seed.LoadProfile(cfg.SeedProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed profile: %w", err)
		}
		profile = loaded
	}
	return seed.New(profile, rand.New(rand.NewSource(time.Now().UnixNano()))), nil
}

// openBackend opens the SQLite mirror, or returns nil when sync is
// disabled.
func openBackend(cfg *config.Config, logger *log.Logger) *remote.Adapter {
	if cfg.RemoteDSN == "" {
		return nil
	}
	adapter, err := remote.Open(cfg.RemoteDSN)
	if err != nil {
		logger.Printf("WARNING: backend unavailable, running local-only: %v", err)
		return nil
	}
	if err := adapter.InitSchema(context.Background()); err != nil {
		logger.Printf("WARNING: backend schema init failed, running local-only: %v", err)
		_ = adapter.Close()
		return nil
	}
	return adapter
}

// openStore wires the full store: snapshot slot, seeder, and backend.
// The returned adapter may be nil; callers that finish quickly should
// call st.Flush() before closing it.
func openStore(cfg *config.Config, logger *log.Logger) (*store.Store, *remote.Adapter) {
	seeder, err := newSeeder(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	adapter := openBackend(cfg, logger)

	storeCfg := store.Config{
		Slot:      store.NewFileSlot(cfg.SlotPath),
		Seeder:    seeder,
		Logger:    logger,
		SeedCount: cfg.SeedCount,
	}
	if adapter != nil {
		storeCfg.Remote = adapter
	}

	st, err := store.New(storeCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st.Initialize(context.Background())

	if adapter != nil {
		bootstrapBackend(st, adapter, logger)
	}
	return st, adapter
}

// bootstrapBackend seeds an empty backend from the local state so later
// pulls and mirrors have a workspace to land in. A populated backend is
// left alone.
func bootstrapBackend(st *store.Store, adapter *remote.Adapter, logger *log.Logger) {
	ctx := context.Background()

	if _, err := adapter.FetchWorkspace(ctx); err == nil {
		return
	} else if !errors.Is(err, remote.ErrNoWorkspace) {
		logger.Printf("WARNING: backend bootstrap skipped: %v", err)
		return
	}

	ws := st.Workspace()
	if ws == nil {
		return
	}
	logger.Printf("Bootstrapping empty backend with workspace %s", ws.ID)

	if err := adapter.InsertWorkspace(ctx, *ws); err != nil {
		logger.Printf("WARNING: backend bootstrap failed: %v", err)
		return
	}
	for _, r := range st.Regions() {
		if err := adapter.InsertRegion(ctx, r); err != nil {
			logger.Printf("WARNING: failed to push region %s: %v", r.ID, err)
		}
	}
	for _, c := range st.Categories() {
		if err := adapter.InsertCategory(ctx, c); err != nil {
			logger.Printf("WARNING: failed to push category %s: %v", c.ID, err)
		}
	}
	for _, f := range st.Feedbacks() {
		if err := adapter.InsertFeedback(ctx, f); err != nil {
			logger.Printf("WARNING: failed to push feedback %s: %v", f.ID, err)
		}
	}
}

// closeBackend flushes pending mirror pushes and closes the adapter.
func closeBackend(st *store.Store, adapter *remote.Adapter) {
	st.Flush()
	if adapter != nil {
		_ = adapter.Close()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
