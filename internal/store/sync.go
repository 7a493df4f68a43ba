package store

import (
	"context"
)

// Pull fetches remote state and, when a remote workspace exists, fully
// replaces the local regions, categories, and feedbacks with the remote
// versions. Last writer at pull time wins unconditionally; this is an
// overwrite, not a merge.
//
// Any failure (network error, absent workspace, partial fetch) leaves the
// local state as the fallback. The failure is logged and swallowed — it
// is never surfaced as an actionable error, so Pull has no error return.
func (s *Store) Pull(ctx context.Context) {
	if s.remote == nil {
		return
	}

	ws, err := s.remote.FetchWorkspace(ctx)
	if err != nil {
		s.logger.Printf("WARNING: remote pull skipped: %v", err)
		return
	}

	regions, err := s.remote.FetchRegions(ctx, ws.ID)
	if err != nil {
		s.logger.Printf("WARNING: remote pull failed fetching regions: %v", err)
		return
	}
	categories, err := s.remote.FetchCategories(ctx, ws.ID)
	if err != nil {
		s.logger.Printf("WARNING: remote pull failed fetching categories: %v", err)
		return
	}
	feedbacks, err := s.remote.FetchFeedbacks(ctx, ws.ID)
	if err != nil {
		s.logger.Printf("WARNING: remote pull failed fetching feedbacks: %v", err)
		return
	}

	s.mu.Lock()
	s.workspace = ws
	s.regions = regions
	s.categories = categories
	s.feedbacks = feedbacks
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Printf("Pulled remote state: %d regions, %d categories, %d feedbacks",
		len(regions), len(categories), len(feedbacks))
	s.emit(Event{Kind: EventPull, Action: "completed", ID: ws.ID})
}

// mirror runs a remote write on its own goroutine with a bounded timeout.
// The caller observes only the local result; a failed mirror is logged
// with the operation description and otherwise dropped. No retries: each
// push is attempted exactly once, and a record whose push failed is
// silently replaced by whatever the remote holds on the next full pull.
func (s *Store) mirror(desc string, fn func(context.Context) error) {
	if s.remote == nil {
		return
	}

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Printf("WARNING: remote mirror failed (%s): %v", desc, err)
		}
	}()
}

// Flush blocks until all in-flight remote mirrors have resolved. Used at
// shutdown and in tests; the interactive paths never wait on it.
func (s *Store) Flush() {
	s.pushes.Wait()
}
