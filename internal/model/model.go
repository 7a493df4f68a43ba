// Package model provides the data records shared by the local store, the
// remote sync adapter, and the HTTP boundary.
//
// Records are pure data contracts with flat fields. Region and Category
// are referenced from Feedback by id only; deleting either never cascades
// to dependent feedbacks, so dangling references are legal and are rendered
// as "N/A" by consumers.
package model

import (
	"fmt"
	"time"
)

// Sentiment is the emotional-valence tag on a feedback record.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentCritical Sentiment = "critical"
)

// Valid reports whether s is one of the four known sentiment values.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentCritical:
		return true
	}
	return false
}

// Workspace is the single tenant context owning all other records.
// One workspace exists per deployment; it is created by seeding or by a
// remote pull and is never deleted in normal operation.
type Workspace struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks that the workspace has the required fields.
func (w *Workspace) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("id is required")
	}
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	if w.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	return nil
}

// Region is a geographic or organizational subdivision used to group
// feedback. Color is a style-system token (e.g. "blue-500"), opaque here.
type Region struct {
	ID          string `json:"id" yaml:"id"`
	WorkspaceID string `json:"workspace_id" yaml:"workspace_id"`
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
}

// Validate checks that the region has the required fields.
func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.WorkspaceID == "" {
		return fmt.Errorf("workspace_id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Category is a topical classification applied to feedback. Icon is an
// identifier resolved by the presentation layer.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	WorkspaceID string `json:"workspace_id" yaml:"workspace_id"`
	Name        string `json:"name" yaml:"name"`
	Icon        string `json:"icon" yaml:"icon"`
	Color       string `json:"color" yaml:"color"`
}

// Validate checks that the category has the required fields.
func (c *Category) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.WorkspaceID == "" {
		return fmt.Errorf("workspace_id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Feedback is a single piece of citizen feedback. RegionID and CategoryID
// may reference records that no longer exist. Feedback content is
// immutable after creation; the only lifecycle operations are add and
// delete.
type Feedback struct {
	ID          string    `json:"id" yaml:"id"`
	WorkspaceID string    `json:"workspace_id" yaml:"workspace_id"`
	RegionID    string    `json:"region_id" yaml:"region_id"`
	CategoryID  string    `json:"category_id" yaml:"category_id"`
	Description string    `json:"description" yaml:"description"`
	Sentiment   Sentiment `json:"sentiment" yaml:"sentiment"`
	Source      string    `json:"source" yaml:"source"` // "whatsapp", "manual", "n8n", or others
	PhoneHash   string    `json:"phone_hash,omitempty" yaml:"phone_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks that the feedback has the required fields.
func (f *Feedback) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("id is required")
	}
	if f.WorkspaceID == "" {
		return fmt.Errorf("workspace_id is required")
	}
	if f.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !f.Sentiment.Valid() {
		return fmt.Errorf("invalid sentiment %q", f.Sentiment)
	}
	return nil
}

// NameCount pairs a display name with an occurrence count.
type NameCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Stats is the derived-read summary the dashboard consumes.
type Stats struct {
	TotalFeedbacks        int               `json:"total_feedbacks" yaml:"total_feedbacks"`
	SentimentDistribution map[Sentiment]int `json:"sentiment_distribution" yaml:"sentiment_distribution"`
	TopRegion             *NameCount        `json:"top_region,omitempty" yaml:"top_region,omitempty"`
	TopCategory           *NameCount        `json:"top_category,omitempty" yaml:"top_category,omitempty"`
}
