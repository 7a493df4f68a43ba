package store

import (
	"time"

	"github.com/feedbackpulse/pulse/internal/model"
)

// FeedbackFilter selects a subset of the feedback collection. Zero-valued
// fields match everything.
type FeedbackFilter struct {
	RegionID   string
	CategoryID string
	Sentiment  model.Sentiment
	Since      time.Time
	Source     string
}

// FilterFeedbacks returns the feedbacks matching the filter, preserving
// newest-first order.
func (s *Store) FilterFeedbacks(f FeedbackFilter) []model.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Feedback
	for _, fb := range s.feedbacks {
		if f.RegionID != "" && fb.RegionID != f.RegionID {
			continue
		}
		if f.CategoryID != "" && fb.CategoryID != f.CategoryID {
			continue
		}
		if f.Sentiment != "" && fb.Sentiment != f.Sentiment {
			continue
		}
		if f.Source != "" && fb.Source != f.Source {
			continue
		}
		if !f.Since.IsZero() && fb.CreatedAt.Before(f.Since) {
			continue
		}
		out = append(out, fb)
	}
	return out
}

// Stats computes the derived-read summary over the current feedback
// collection. Dangling region or category references count toward totals
// but never toward the top entries.
func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.Stats{
		TotalFeedbacks: len(s.feedbacks),
		SentimentDistribution: map[model.Sentiment]int{
			model.SentimentPositive: 0,
			model.SentimentNeutral:  0,
			model.SentimentNegative: 0,
			model.SentimentCritical: 0,
		},
	}

	regionCounts := make(map[string]int)
	categoryCounts := make(map[string]int)
	for _, fb := range s.feedbacks {
		stats.SentimentDistribution[fb.Sentiment]++
		regionCounts[fb.RegionID]++
		categoryCounts[fb.CategoryID]++
	}

	for _, r := range s.regions {
		count := regionCounts[r.ID]
		if count == 0 {
			continue
		}
		if stats.TopRegion == nil || count > stats.TopRegion.Count {
			stats.TopRegion = &model.NameCount{Name: r.Name, Count: count}
		}
	}
	for _, c := range s.categories {
		count := categoryCounts[c.ID]
		if count == 0 {
			continue
		}
		if stats.TopCategory == nil || count > stats.TopCategory.Count {
			stats.TopCategory = &model.NameCount{Name: c.Name, Count: count}
		}
	}

	return stats
}

// RegionName resolves a region id to its display name, or "N/A" for
// dangling references.
func (s *Store) RegionName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.regions {
		if r.ID == id {
			return r.Name
		}
	}
	return "N/A"
}

// CategoryName resolves a category id to its display name, or "N/A" for
// dangling references.
func (s *Store) CategoryName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "N/A"
}
