// Package store holds the authoritative in-process view of the workspace,
// regions, categories, and feedbacks, durably mirrored to a local
// persisted slot and best-effort mirrored to a remote backend.
package store

import (
	"context"

	"github.com/feedbackpulse/pulse/internal/model"
)

// Slot is the single named local persistence slot.
//
// The store depends only on "read snapshot at start, write snapshot after
// each change": Load returns the last saved snapshot bytes (nil when
// nothing has been stored yet) and Save replaces them. The contents are a
// serialized snapshot of {workspace, regions, categories, feedbacks}.
type Slot interface {
	// Load returns the stored snapshot, or (nil, nil) if the slot is empty.
	Load() ([]byte, error)

	// Save replaces the stored snapshot.
	Save(data []byte) error
}

// Seeder produces the bootstrap dataset used when no workspace is held.
type Seeder interface {
	// Workspace returns the seed workspace.
	Workspace() model.Workspace

	// Regions returns the seed regions.
	Regions() []model.Region

	// Categories returns the seed categories.
	Categories() []model.Category

	// Feedbacks generates n randomized seed feedbacks, newest-first.
	Feedbacks(n int) []model.Feedback
}

// Remote is the row-oriented backend the store mirrors to.
//
// The adapter is a stateless channel: it holds no entity state of its own.
// Every call either succeeds or returns an error; the adapter performs no
// retries and no batching. The store is responsible for containing those
// errors — nothing above the store ever observes a rejected mutation.
type Remote interface {
	// FetchWorkspace returns the backend's workspace. The system assumes
	// exactly one workspace exists; implementations return the first row
	// available and ErrNoWorkspace when the table is empty.
	FetchWorkspace(ctx context.Context) (*model.Workspace, error)

	// FetchRegions returns all regions owned by the workspace.
	FetchRegions(ctx context.Context, workspaceID string) ([]model.Region, error)

	// FetchCategories returns all categories owned by the workspace.
	FetchCategories(ctx context.Context, workspaceID string) ([]model.Category, error)

	// FetchFeedbacks returns all feedbacks owned by the workspace,
	// ordered by creation time descending.
	FetchFeedbacks(ctx context.Context, workspaceID string) ([]model.Feedback, error)

	InsertFeedback(ctx context.Context, f model.Feedback) error
	DeleteFeedback(ctx context.Context, id string) error

	InsertRegion(ctx context.Context, r model.Region) error
	UpdateRegion(ctx context.Context, id string, patch RegionPatch) error
	DeleteRegion(ctx context.Context, id string) error

	InsertCategory(ctx context.Context, c model.Category) error
	UpdateCategory(ctx context.Context, id string, patch CategoryPatch) error
	DeleteCategory(ctx context.Context, id string) error
}

// RegionPatch is a partial field update for a region. Nil fields are left
// unchanged. Identity and workspace id are never patchable.
type RegionPatch struct {
	Name  *string
	Color *string
}

// CategoryPatch is a partial field update for a category. Nil fields are
// left unchanged. Identity and workspace id are never patchable.
type CategoryPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

// FeedbackInput carries the caller-supplied fields of a new feedback.
// Identity, workspace id, and creation timestamp are assigned by the
// store. The non-empty description constraint is enforced at the boundary
// that accepts the input, not re-validated here.
type FeedbackInput struct {
	RegionID    string
	CategoryID  string
	Description string
	Sentiment   model.Sentiment
	Source      string
	PhoneHash   string
}

// EventKind identifies which collection an event concerns.
type EventKind string

const (
	EventFeedback EventKind = "feedback"
	EventRegion   EventKind = "region"
	EventCategory EventKind = "category"
	EventPull     EventKind = "pull"
	EventReset    EventKind = "reset"
)

// Event describes a completed local state change. Events fire after the
// local mutation has been applied and persisted; they say nothing about
// the remote mirror's outcome.
type Event struct {
	Kind   EventKind
	Action string // added, updated, deleted, seeded, completed
	ID     string
}

// EventFunc receives store events. Callbacks run synchronously on the
// mutating goroutine and must not call back into the store.
type EventFunc func(Event)
