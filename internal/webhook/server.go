// Package webhook provides the inbound HTTP boundary.
//
// The webhook accepts feedback posted by external integrations (n8n,
// WhatsApp bridges) and is the only place in the system where a backend
// failure is surfaced to the caller as a structured error response. The
// core's mutations never reject; this boundary does.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/sentiment"
	"github.com/feedbackpulse/pulse/internal/store"
)

// Request is the inbound webhook body. Region and category accept either
// an id or a display name; unresolved values are kept verbatim as
// dangling references, which consumers render as "N/A".
type Request struct {
	Region      string `json:"region"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Sentiment   string `json:"sentiment,omitempty"`
	Source      string `json:"source,omitempty"`
	PhoneHash   string `json:"phone_hash,omitempty"`
}

// Response is the webhook success body.
type Response struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// errorResponse is the webhook failure body.
type errorResponse struct {
	Error string `json:"error"`
}

// Config holds webhook server configuration.
type Config struct {
	// Addr to listen on (default ":8090").
	Addr string

	// Store is the local store; required.
	Store *store.Store

	// Remote receives the synchronous insert. Nil runs local-only.
	Remote store.Remote

	// Classifier fills in absent or invalid sentiment values
	// (default keyword rules).
	Classifier sentiment.Classifier

	// Logger for server activity (default stderr logger).
	Logger *log.Logger
}

// Server is the inbound webhook HTTP server.
type Server struct {
	addr       string
	store      *store.Store
	remote     store.Remote
	classifier sentiment.Classifier
	logger     *log.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer creates a webhook server from the config.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.Classifier == nil {
		cfg.Classifier = sentiment.Keyword{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[webhook] ", log.LstdFlags)
	}

	return &Server{
		addr:       cfg.Addr,
		store:      cfg.Store,
		remote:     cfg.Remote,
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
	}, nil
}

// Handler returns the route table. Exposed separately so tests can drive
// it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/webhook", s.handleWebhook)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start begins serving. Non-blocking; use Stop to shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Printf("Webhook server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "POST required"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Description required"})
		return
	}

	sent := model.Sentiment(req.Sentiment)
	if !sent.Valid() {
		sent = s.classifier.Classify(r.Context(), req.Description)
	}

	source := req.Source
	if source == "" {
		source = "n8n"
	}

	f := model.Feedback{
		ID:          fmt.Sprintf("fb-%d", time.Now().UnixMilli()),
		WorkspaceID: s.workspaceID(),
		RegionID:    s.resolveRegion(req.Region),
		CategoryID:  s.resolveCategory(req.Category),
		Description: req.Description,
		Sentiment:   sent,
		Source:      source,
		PhoneHash:   req.PhoneHash,
		CreatedAt:   time.Now().UTC(),
	}

	if s.remote != nil {
		if err := s.remote.InsertFeedback(r.Context(), f); err != nil {
			s.logger.Printf("Backend insert failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
	}

	// The backend write succeeded (or is disabled); reflect the record
	// locally without triggering a second mirror.
	s.store.ApplyFeedback(f)

	s.logger.Printf("Webhook received: %s (%s/%s)", f.ID, f.RegionID, f.CategoryID)
	writeJSON(w, http.StatusOK, Response{Success: true, ID: f.ID})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// workspaceID returns the store's current workspace id; the webhook is
// scoped to the single implicitly-chosen workspace.
func (s *Server) workspaceID() string {
	if ws := s.store.Workspace(); ws != nil {
		return ws.ID
	}
	return "ws-demo"
}

// resolveRegion maps an id or display name to a region id. Unmatched
// values pass through as-is.
func (s *Server) resolveRegion(value string) string {
	for _, r := range s.store.Regions() {
		if r.ID == value || strings.EqualFold(r.Name, value) {
			return r.ID
		}
	}
	return value
}

// resolveCategory maps an id or display name to a category id.
func (s *Server) resolveCategory(value string) string {
	for _, c := range s.store.Categories() {
		if c.ID == value || strings.EqualFold(c.Name, value) {
			return c.ID
		}
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
