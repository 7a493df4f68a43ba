package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/feedbackpulse/pulse/internal/model"
)

// DefaultSeedCount is the number of feedbacks generated when seeding.
const DefaultSeedCount = 150

// Config holds the store's injected collaborators and tunables.
type Config struct {
	// Slot is the local persistence slot. Nil disables persistence
	// (the store then lives only in memory).
	Slot Slot

	// Seeder produces the bootstrap dataset. Required.
	Seeder Seeder

	// Remote is the backend to mirror mutations to. Nil disables
	// mirroring and the pull step.
	Remote Remote

	// Logger for store activity. Nil selects a stderr logger.
	Logger *log.Logger

	// SeedCount is the number of feedbacks generated when seeding
	// (default DefaultSeedCount).
	SeedCount int

	// PushTimeout bounds each remote mirror call (default 10s).
	PushTimeout time.Duration
}

// Store is the single source of truth for presentation collaborators.
//
// All mutations apply to local state synchronously under one mutex, then
// persist the snapshot to the slot, then fire the remote mirror on a
// goroutine. Two local mutations issued back-to-back therefore always
// serialize against the local collections before either's remote mirror
// resolves. Mirror failures never roll back a local change.
type Store struct {
	mu         sync.RWMutex
	workspace  *model.Workspace
	regions    []model.Region
	categories []model.Category
	feedbacks  []model.Feedback
	lastIDms   int64

	slot      Slot
	seeder    Seeder
	remote    Remote
	logger    *log.Logger
	seedCount int

	pushTimeout time.Duration
	pushes      sync.WaitGroup

	subsMu sync.Mutex
	subs   []EventFunc
}

// snapshot is the serialized form held by the slot.
type snapshot struct {
	Workspace  *model.Workspace `json:"workspace"`
	Regions    []model.Region   `json:"regions"`
	Categories []model.Category `json:"categories"`
	Feedbacks  []model.Feedback `json:"feedbacks"`
}

// New creates a Store from the given configuration.
func New(cfg Config) (*Store, error) {
	if cfg.Seeder == nil {
		return nil, fmt.Errorf("seeder cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = DefaultSeedCount
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 10 * time.Second
	}

	return &Store{
		slot:        cfg.Slot,
		seeder:      cfg.Seeder,
		remote:      cfg.Remote,
		logger:      cfg.Logger,
		seedCount:   cfg.SeedCount,
		pushTimeout: cfg.PushTimeout,
	}, nil
}

// Subscribe registers a callback for store events.
func (s *Store) Subscribe(fn EventFunc) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Initialize loads the persisted snapshot, seeds the store if no
// workspace is held, and then always runs the pull step.
//
// Initialize is idempotent. It never reports an error: an unreadable or
// corrupt slot is treated as empty, and pull failures are logged and
// swallowed so the seeded or previously persisted state remains the
// visible truth.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	s.loadSnapshotLocked()

	seeded := false
	if s.workspace == nil {
		ws := s.seeder.Workspace()
		s.workspace = &ws
		s.regions = s.seeder.Regions()
		s.categories = s.seeder.Categories()
		s.feedbacks = s.seeder.Feedbacks(s.seedCount)
		s.persistLocked()
		seeded = true
	}
	s.mu.Unlock()

	if seeded {
		s.emit(Event{Kind: EventReset, Action: "seeded"})
	}

	s.Pull(ctx)
}

// loadSnapshotLocked restores state from the slot. Failures are logged
// and leave the store empty; the caller's seeding path takes over.
func (s *Store) loadSnapshotLocked() {
	if s.slot == nil {
		return
	}

	data, err := s.slot.Load()
	if err != nil {
		s.logger.Printf("WARNING: failed to load snapshot, starting empty: %v", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Printf("WARNING: corrupt snapshot ignored: %v", err)
		return
	}

	s.workspace = snap.Workspace
	s.regions = snap.Regions
	s.categories = snap.Categories
	s.feedbacks = snap.Feedbacks
}

// persistLocked writes the current state to the slot. Slot failures are
// logged, never surfaced; local memory remains the visible truth.
func (s *Store) persistLocked() {
	if s.slot == nil {
		return
	}

	data, err := json.Marshal(snapshot{
		Workspace:  s.workspace,
		Regions:    s.regions,
		Categories: s.categories,
		Feedbacks:  s.feedbacks,
	})
	if err != nil {
		s.logger.Printf("WARNING: failed to marshal snapshot: %v", err)
		return
	}

	if err := s.slot.Save(data); err != nil {
		s.logger.Printf("WARNING: failed to persist snapshot: %v", err)
	}
}

// newIDLocked derives a fresh identity from wall-clock milliseconds with
// an entity-type prefix. Within one process the value is bumped to stay
// strictly increasing; across processes, sub-millisecond concurrent
// creation can still collide. Accepted limitation for single-user usage.
func (s *Store) newIDLocked(prefix string) string {
	ms := time.Now().UnixMilli()
	if ms <= s.lastIDms {
		ms = s.lastIDms + 1
	}
	s.lastIDms = ms
	return fmt.Sprintf("%s-%d", prefix, ms)
}

// workspaceIDLocked returns the owning workspace id for new records,
// falling back to the seed workspace before Initialize has run.
func (s *Store) workspaceIDLocked() string {
	if s.workspace != nil {
		return s.workspace.ID
	}
	return s.seeder.Workspace().ID
}

// AddFeedback constructs a full feedback record from the input and
// prepends it to the collection (newest-first invariant). The record is
// asynchronously mirrored to the remote backend; a mirror failure does
// not undo the local insert.
func (s *Store) AddFeedback(in FeedbackInput) model.Feedback {
	s.mu.Lock()
	f := model.Feedback{
		ID:          s.newIDLocked("fb"),
		WorkspaceID: s.workspaceIDLocked(),
		RegionID:    in.RegionID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Sentiment:   in.Sentiment,
		Source:      in.Source,
		PhoneHash:   in.PhoneHash,
		CreatedAt:   time.Now().UTC(),
	}
	s.feedbacks = append([]model.Feedback{f}, s.feedbacks...)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventFeedback, Action: "added", ID: f.ID})
	s.mirror("insert feedback "+f.ID, func(ctx context.Context) error {
		return s.remote.InsertFeedback(ctx, f)
	})
	return f
}

// ApplyFeedback prepends an externally created feedback record to the
// local collection without mirroring it. Used by boundaries (webhook)
// that have already written the record to the backend themselves.
func (s *Store) ApplyFeedback(f model.Feedback) {
	s.mu.Lock()
	s.feedbacks = append([]model.Feedback{f}, s.feedbacks...)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventFeedback, Action: "added", ID: f.ID})
}

// DeleteFeedback removes the feedback with the given id. Absent ids are a
// silent no-op. The deletion is mirrored remotely, best-effort.
func (s *Store) DeleteFeedback(id string) {
	s.mu.Lock()
	removed := false
	for i, f := range s.feedbacks {
		if f.ID == id {
			s.feedbacks = append(s.feedbacks[:i], s.feedbacks[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !removed {
		return
	}
	s.emit(Event{Kind: EventFeedback, Action: "deleted", ID: id})
	s.mirror("delete feedback "+id, func(ctx context.Context) error {
		return s.remote.DeleteFeedback(ctx, id)
	})
}

// AddRegion assigns a fresh identity and the current workspace id, and
// appends the region to the collection (append-order, unlike feedbacks).
func (s *Store) AddRegion(name, color string) model.Region {
	s.mu.Lock()
	r := model.Region{
		ID:          s.newIDLocked("reg"),
		WorkspaceID: s.workspaceIDLocked(),
		Name:        name,
		Color:       color,
	}
	s.regions = append(s.regions, r)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventRegion, Action: "added", ID: r.ID})
	s.mirror("insert region "+r.ID, func(ctx context.Context) error {
		return s.remote.InsertRegion(ctx, r)
	})
	return r
}

// UpdateRegion applies a partial patch to the region with the given id.
// Identity and workspace id are never patched. Absent ids are a silent
// no-op; the second return value reports whether a region was updated.
func (s *Store) UpdateRegion(id string, patch RegionPatch) (model.Region, bool) {
	s.mu.Lock()
	var updated model.Region
	found := false
	for i := range s.regions {
		if s.regions[i].ID == id {
			if patch.Name != nil {
				s.regions[i].Name = *patch.Name
			}
			if patch.Color != nil {
				s.regions[i].Color = *patch.Color
			}
			updated = s.regions[i]
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !found {
		return model.Region{}, false
	}
	s.emit(Event{Kind: EventRegion, Action: "updated", ID: id})
	s.mirror("update region "+id, func(ctx context.Context) error {
		return s.remote.UpdateRegion(ctx, id, patch)
	})
	return updated, true
}

// DeleteRegion removes the region with the given id. Absent ids are a
// silent no-op. Deletion does not cascade to feedbacks: dangling region
// references are tolerated and rendered as "N/A" by consumers.
func (s *Store) DeleteRegion(id string) {
	s.mu.Lock()
	removed := false
	for i, r := range s.regions {
		if r.ID == id {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !removed {
		return
	}
	s.emit(Event{Kind: EventRegion, Action: "deleted", ID: id})
	s.mirror("delete region "+id, func(ctx context.Context) error {
		return s.remote.DeleteRegion(ctx, id)
	})
}

// AddCategory assigns a fresh identity and the current workspace id, and
// appends the category to the collection.
func (s *Store) AddCategory(name, icon, color string) model.Category {
	s.mu.Lock()
	c := model.Category{
		ID:          s.newIDLocked("cat"),
		WorkspaceID: s.workspaceIDLocked(),
		Name:        name,
		Icon:        icon,
		Color:       color,
	}
	s.categories = append(s.categories, c)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventCategory, Action: "added", ID: c.ID})
	s.mirror("insert category "+c.ID, func(ctx context.Context) error {
		return s.remote.InsertCategory(ctx, c)
	})
	return c
}

// UpdateCategory applies a partial patch to the category with the given
// id. Identity and workspace id are never patched. Absent ids are a
// silent no-op.
func (s *Store) UpdateCategory(id string, patch CategoryPatch) (model.Category, bool) {
	s.mu.Lock()
	var updated model.Category
	found := false
	for i := range s.categories {
		if s.categories[i].ID == id {
			if patch.Name != nil {
				s.categories[i].Name = *patch.Name
			}
			if patch.Icon != nil {
				s.categories[i].Icon = *patch.Icon
			}
			if patch.Color != nil {
				s.categories[i].Color = *patch.Color
			}
			updated = s.categories[i]
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !found {
		return model.Category{}, false
	}
	s.emit(Event{Kind: EventCategory, Action: "updated", ID: id})
	s.mirror("update category "+id, func(ctx context.Context) error {
		return s.remote.UpdateCategory(ctx, id, patch)
	})
	return updated, true
}

// DeleteCategory removes the category with the given id. Absent ids are a
// silent no-op; dependent feedbacks keep their dangling reference.
func (s *Store) DeleteCategory(id string) {
	s.mu.Lock()
	removed := false
	for i, c := range s.categories {
		if c.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !removed {
		return
	}
	s.emit(Event{Kind: EventCategory, Action: "deleted", ID: id})
	s.mirror("delete category "+id, func(ctx context.Context) error {
		return s.remote.DeleteCategory(ctx, id)
	})
}

// ResetData unconditionally replaces workspace, regions, and categories
// with the seed values and regenerates a fresh randomized feedback
// collection. This is a local-only recovery operation: the bulk
// replacement is not mirrored remotely.
func (s *Store) ResetData() {
	s.mu.Lock()
	ws := s.seeder.Workspace()
	s.workspace = &ws
	s.regions = s.seeder.Regions()
	s.categories = s.seeder.Categories()
	s.feedbacks = s.seeder.Feedbacks(s.seedCount)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: EventReset, Action: "reset"})
}

// Workspace returns the current workspace, or nil before initialization.
func (s *Store) Workspace() *model.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.workspace == nil {
		return nil
	}
	ws := *s.workspace
	return &ws
}

// Regions returns a copy of the region collection in append order.
func (s *Store) Regions() []model.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Categories returns a copy of the category collection in append order.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Feedbacks returns a copy of the feedback collection, newest-first.
func (s *Store) Feedbacks() []model.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Feedback, len(s.feedbacks))
	copy(out, s.feedbacks)
	return out
}

// emit delivers an event to all subscribers.
func (s *Store) emit(e Event) {
	s.subsMu.Lock()
	subs := make([]EventFunc, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
