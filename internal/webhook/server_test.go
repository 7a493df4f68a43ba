package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/seed"
	"github.com/feedbackpulse/pulse/internal/store"
)

// failingRemote rejects every write.
type failingRemote struct{}

var errBackendDown = errors.New("backend down")

func (failingRemote) FetchWorkspace(context.Context) (*model.Workspace, error) {
	return nil, errBackendDown
}
func (failingRemote) FetchRegions(context.Context, string) ([]model.Region, error) {
	return nil, errBackendDown
}
func (failingRemote) FetchCategories(context.Context, string) ([]model.Category, error) {
	return nil, errBackendDown
}
func (failingRemote) FetchFeedbacks(context.Context, string) ([]model.Feedback, error) {
	return nil, errBackendDown
}
func (failingRemote) InsertFeedback(context.Context, model.Feedback) error { return errBackendDown }
func (failingRemote) DeleteFeedback(context.Context, string) error         { return errBackendDown }
func (failingRemote) InsertRegion(context.Context, model.Region) error     { return errBackendDown }
func (failingRemote) UpdateRegion(context.Context, string, store.RegionPatch) error {
	return errBackendDown
}
func (failingRemote) DeleteRegion(context.Context, string) error           { return errBackendDown }
func (failingRemote) InsertCategory(context.Context, model.Category) error { return errBackendDown }
func (failingRemote) UpdateCategory(context.Context, string, store.CategoryPatch) error {
	return errBackendDown
}
func (failingRemote) DeleteCategory(context.Context, string) error { return errBackendDown }

// setupServer builds an initialized store and a webhook server over it.
func setupServer(t *testing.T, remote store.Remote) (*Server, *store.Store) {
	t.Helper()

	st, err := store.New(store.Config{
		Slot:   &store.MemSlot{},
		Seeder: seed.New(nil, rand.New(rand.NewSource(1))),
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	st.Initialize(context.Background())

	srv, err := NewServer(Config{
		Store:  st,
		Remote: remote,
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, st
}

func postWebhook(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWebhookAcceptsFeedback(t *testing.T) {
	srv, st := setupServer(t, nil)
	before := len(st.Feedbacks())

	rec := postWebhook(t, srv, `{"region":"Centro","category":"Saúde","description":"Falta médico","sentiment":"negative","source":"whatsapp"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.ID == "" {
		t.Errorf("expected success with id, got %+v", resp)
	}

	feedbacks := st.Feedbacks()
	if len(feedbacks) != before+1 {
		t.Fatalf("feedback not applied locally")
	}
	if feedbacks[0].RegionID != "reg-1" {
		t.Errorf("region name not resolved to id: %s", feedbacks[0].RegionID)
	}
	if feedbacks[0].CategoryID != "cat-1" {
		t.Errorf("category name not resolved to id: %s", feedbacks[0].CategoryID)
	}
}

func TestWebhookRejectsEmptyDescription(t *testing.T) {
	srv, st := setupServer(t, nil)
	before := len(st.Feedbacks())

	rec := postWebhook(t, srv, `{"region":"Centro","category":"Saúde","description":"  "}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(st.Feedbacks()) != before {
		t.Errorf("invalid feedback reached the store")
	}
}

func TestWebhookClassifiesMissingSentiment(t *testing.T) {
	srv, st := setupServer(t, nil)

	rec := postWebhook(t, srv, `{"region":"reg-1","category":"cat-1","description":"Atendimento excelente hoje"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := st.Feedbacks()[0].Sentiment; got != model.SentimentPositive {
		t.Errorf("expected classified positive sentiment, got %s", got)
	}
}

func TestWebhookBackendFailureReturns500(t *testing.T) {
	srv, st := setupServer(t, failingRemote{})
	before := len(st.Feedbacks())

	rec := postWebhook(t, srv, `{"region":"reg-1","category":"cat-1","description":"x"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
		t.Errorf("expected structured error body, got %s", rec.Body.String())
	}
	if len(st.Feedbacks()) != before {
		t.Errorf("failed backend insert should not apply locally")
	}
}

func TestWebhookDefaultsSource(t *testing.T) {
	srv, st := setupServer(t, nil)

	rec := postWebhook(t, srv, `{"region":"reg-1","category":"cat-1","description":"x","sentiment":"neutral"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := st.Feedbacks()[0].Source; got != "n8n" {
		t.Errorf("expected default source n8n, got %s", got)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := setupServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats model.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad stats body: %v", err)
	}
	if stats.TotalFeedbacks != 150 {
		t.Errorf("expected 150 total feedbacks, got %d", stats.TotalFeedbacks)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
