// Package ingest provides the inbox daemon that feeds dropped files into
// the feedback store.
//
// The daemon:
// 1. Watches an inbox directory for JSON feedback files
// 2. Applies valid records to the store (which mirrors them remotely)
// 3. Moves handled files to processed/ or failed/
// 4. Handles graceful shutdown
//
// The inbox is the file-based twin of the webhook: automations that
// cannot reach the HTTP endpoint write files instead.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/sentiment"
	"github.com/feedbackpulse/pulse/internal/store"
)

// Record is the JSON shape of an inbox file. Region and category accept
// either an id or a display name.
type Record struct {
	Region      string `json:"region"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Sentiment   string `json:"sentiment,omitempty"`
	Source      string `json:"source,omitempty"`
	PhoneHash   string `json:"phone_hash,omitempty"`
}

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before processing file changes.
	// This lets writers finish before the file is read.
	DebounceInterval time.Duration

	// Classifier fills in absent or invalid sentiment values
	// (default keyword rules).
	Classifier sentiment.Classifier

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
		Classifier:       sentiment.Keyword{},
		Logger:           log.New(os.Stderr, "[ingest] ", log.LstdFlags),
	}
}

// Daemon watches the inbox directory and applies dropped feedback files.
type Daemon struct {
	store    *store.Store
	inboxDir string
	config   *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> timestamp
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance watching inboxDir.
// Use Start() to begin watching.
func New(st *store.Store, inboxDir string) (*Daemon, error) {
	return NewWithConfig(st, inboxDir, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(st *store.Store, inboxDir string, config *Config) (*Daemon, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if inboxDir == "" {
		return nil, fmt.Errorf("inboxDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Classifier == nil {
		config.Classifier = sentiment.Keyword{}
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[ingest] ", log.LstdFlags)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		store:       st,
		inboxDir:    inboxDir,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Create the inbox, processed/ and failed/ directories
// 2. Drain files already sitting in the inbox
// 3. Watch for new files, applying them after a debounce window
//
// This blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting inbox daemon")

	for _, dir := range []string{d.inboxDir, d.processedDir(), d.failedDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Drain anything dropped before we started watching.
	if err := d.drainInbox(); err != nil {
		return fmt.Errorf("initial drain failed: %w", err)
	}

	if err := d.watcher.Add(d.inboxDir); err != nil {
		return fmt.Errorf("failed to watch inbox directory: %w", err)
	}

	d.config.Logger.Printf("Watching: %s", d.inboxDir)

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processChangeQueue()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping inbox daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Inbox daemon stopped")
	return nil
}

// drainInbox processes every JSON file already present in the inbox.
func (d *Daemon) drainInbox() error {
	entries, err := os.ReadDir(d.inboxDir)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		d.ProcessFile(filepath.Join(d.inboxDir, entry.Name()))
	}
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue processes queued files after the debounce window.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	now := time.Now()
	var ready []string
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		ready = append(ready, path)
		delete(d.changeQueue, path)
	}
	d.changeQueueMu.Unlock()

	for _, path := range ready {
		d.ProcessFile(path)
	}
}

// ProcessFile applies a single inbox file to the store and moves it to
// processed/ on success or failed/ on a malformed record. Exported so
// one-shot CLI runs can reuse the same handling.
func (d *Daemon) ProcessFile(path string) {
	// A queued file may have been drained already.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	record, err := d.readRecord(path)
	if err != nil {
		d.config.Logger.Printf("Warning: skipping %s: %v", filepath.Base(path), err)
		d.moveTo(path, d.failedDir())
		return
	}

	sent := model.Sentiment(record.Sentiment)
	if !sent.Valid() {
		sent = d.config.Classifier.Classify(d.ctx, record.Description)
	}

	source := record.Source
	if source == "" {
		source = "n8n"
	}

	f := d.store.AddFeedback(store.FeedbackInput{
		RegionID:    d.resolveRegion(record.Region),
		CategoryID:  d.resolveCategory(record.Category),
		Description: record.Description,
		Sentiment:   sent,
		Source:      source,
		PhoneHash:   record.PhoneHash,
	})

	d.config.Logger.Printf("Ingested %s as %s", filepath.Base(path), f.ID)
	d.moveTo(path, d.processedDir())
}

// readRecord parses and validates an inbox file.
func (d *Daemon) readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if strings.TrimSpace(record.Description) == "" {
		return Record{}, fmt.Errorf("description required")
	}
	return record, nil
}

// moveTo relocates a handled file, renaming on collision.
func (d *Daemon) moveTo(path, dir string) {
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		base := strings.TrimSuffix(filepath.Base(path), ".json")
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d.json", base, time.Now().UnixMilli()))
	}
	if err := os.Rename(path, dest); err != nil {
		d.config.Logger.Printf("Warning: failed to move %s: %v", path, err)
	}
}

func (d *Daemon) processedDir() string {
	return filepath.Join(d.inboxDir, "processed")
}

func (d *Daemon) failedDir() string {
	return filepath.Join(d.inboxDir, "failed")
}

// resolveRegion maps an id or display name to a region id. Unmatched
// values pass through as-is.
func (d *Daemon) resolveRegion(value string) string {
	for _, r := range d.store.Regions() {
		if r.ID == value || strings.EqualFold(r.Name, value) {
			return r.ID
		}
	}
	return value
}

// resolveCategory maps an id or display name to a category id.
func (d *Daemon) resolveCategory(value string) string {
	for _, c := range d.store.Categories() {
		if c.ID == value || strings.EqualFold(c.Name, value) {
			return c.ID
		}
	}
	return value
}
