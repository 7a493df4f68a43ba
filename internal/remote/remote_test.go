package remote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/store"
)

// setupAdapter creates a temporary backend database with schema applied.
func setupAdapter(t *testing.T) *Adapter {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "remote.db")
	adapter, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open adapter: %v", err)
	}
	t.Cleanup(func() { _ = adapter.Close() })

	if err := adapter.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return adapter
}

func testWorkspace() model.Workspace {
	return model.Workspace{
		ID:        "ws-demo",
		Name:      "Demo",
		Slug:      "demo",
		CreatedAt: time.Now(),
	}
}

func TestFetchWorkspaceEmpty(t *testing.T) {
	adapter := setupAdapter(t)

	_, err := adapter.FetchWorkspace(context.Background())
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("expected ErrNoWorkspace, got %v", err)
	}
}

func TestFetchWorkspaceReturnsOldest(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	older := model.Workspace{ID: "ws-a", Name: "A", Slug: "a", CreatedAt: time.Now().Add(-time.Hour)}
	newer := model.Workspace{ID: "ws-b", Name: "B", Slug: "b", CreatedAt: time.Now()}
	if err := adapter.InsertWorkspace(ctx, newer); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := adapter.InsertWorkspace(ctx, older); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	ws, err := adapter.FetchWorkspace(ctx)
	if err != nil {
		t.Fatalf("FetchWorkspace failed: %v", err)
	}
	if ws.ID != "ws-a" {
		t.Errorf("expected oldest workspace ws-a, got %s", ws.ID)
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	if err := adapter.InsertWorkspace(ctx, testWorkspace()); err != nil {
		t.Fatalf("insert workspace failed: %v", err)
	}

	f := model.Feedback{
		ID:          "fb-1",
		WorkspaceID: "ws-demo",
		RegionID:    "reg-1",
		CategoryID:  "cat-1",
		Description: "Buraco enorme na rua principal.",
		Sentiment:   model.SentimentNegative,
		Source:      "whatsapp",
		PhoneHash:   "55119****1234",
		CreatedAt:   time.Now().UTC(),
	}
	if err := adapter.InsertFeedback(ctx, f); err != nil {
		t.Fatalf("InsertFeedback failed: %v", err)
	}

	got, err := adapter.FetchFeedbacks(ctx, "ws-demo")
	if err != nil {
		t.Fatalf("FetchFeedbacks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 feedback, got %d", len(got))
	}
	if got[0].Description != f.Description || got[0].Sentiment != f.Sentiment {
		t.Errorf("content mismatch: %+v", got[0])
	}
	if got[0].RegionID != "reg-1" || got[0].PhoneHash != "55119****1234" {
		t.Errorf("nullable columns mismapped: %+v", got[0])
	}
	if got[0].CreatedAt.IsZero() {
		t.Errorf("created_at not round-tripped")
	}
}

func TestFetchFeedbacksOrderedNewestFirst(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, age := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		f := model.Feedback{
			ID:          []string{"fb-old", "fb-new", "fb-mid"}[i],
			WorkspaceID: "ws-demo",
			Description: "x",
			Sentiment:   model.SentimentNeutral,
			Source:      "manual",
			CreatedAt:   now.Add(-age),
		}
		if err := adapter.InsertFeedback(ctx, f); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := adapter.FetchFeedbacks(ctx, "ws-demo")
	if err != nil {
		t.Fatalf("FetchFeedbacks failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 feedbacks, got %d", len(got))
	}
	if got[0].ID != "fb-new" || got[1].ID != "fb-mid" || got[2].ID != "fb-old" {
		t.Errorf("wrong order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestDeleteFeedbackIdempotent(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	if err := adapter.DeleteFeedback(ctx, "fb-missing"); err != nil {
		t.Errorf("delete of missing id should not error: %v", err)
	}
}

func TestRegionUpdatePatchesOnlyGivenColumns(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	r := model.Region{ID: "reg-1", WorkspaceID: "ws-demo", Name: "Centro", Color: "blue-500"}
	if err := adapter.InsertRegion(ctx, r); err != nil {
		t.Fatalf("InsertRegion failed: %v", err)
	}

	name := "Centro Histórico"
	if err := adapter.UpdateRegion(ctx, "reg-1", store.RegionPatch{Name: &name}); err != nil {
		t.Fatalf("UpdateRegion failed: %v", err)
	}

	regions, err := adapter.FetchRegions(ctx, "ws-demo")
	if err != nil {
		t.Fatalf("FetchRegions failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Name != "Centro Histórico" {
		t.Errorf("name not updated: %s", regions[0].Name)
	}
	if regions[0].Color != "blue-500" {
		t.Errorf("color changed unexpectedly: %s", regions[0].Color)
	}
}

func TestEmptyPatchIsNoop(t *testing.T) {
	adapter := setupAdapter(t)

	if err := adapter.UpdateRegion(context.Background(), "reg-1", store.RegionPatch{}); err != nil {
		t.Errorf("empty patch should be a no-op: %v", err)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	c := model.Category{ID: "cat-1", WorkspaceID: "ws-demo", Name: "Saúde", Icon: "Activity", Color: "rose"}
	if err := adapter.InsertCategory(ctx, c); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}

	icon := "HeartPulse"
	if err := adapter.UpdateCategory(ctx, "cat-1", store.CategoryPatch{Icon: &icon}); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}

	cats, err := adapter.FetchCategories(ctx, "ws-demo")
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Icon != "HeartPulse" || cats[0].Name != "Saúde" {
		t.Errorf("category mismatch: %+v", cats)
	}

	if err := adapter.DeleteCategory(ctx, "cat-1"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	cats, err = adapter.FetchCategories(ctx, "ws-demo")
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected 0 categories after delete, got %d", len(cats))
	}
}

func TestWorkspaceScoping(t *testing.T) {
	adapter := setupAdapter(t)
	ctx := context.Background()

	if err := adapter.InsertRegion(ctx, model.Region{ID: "reg-1", WorkspaceID: "ws-a", Name: "A"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := adapter.InsertRegion(ctx, model.Region{ID: "reg-2", WorkspaceID: "ws-b", Name: "B"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	regions, err := adapter.FetchRegions(ctx, "ws-a")
	if err != nil {
		t.Fatalf("FetchRegions failed: %v", err)
	}
	if len(regions) != 1 || regions[0].ID != "reg-1" {
		t.Errorf("scoping broken: %+v", regions)
	}
}
