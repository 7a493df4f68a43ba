package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/sentiment"
)

// Generator produces seed collections from a profile.
//
// The generator is safe to construct with a nil rng; a time-seeded source
// is used in that case. Tests pass a fixed-seed rand.Rand for
// reproducibility.
type Generator struct {
	profile    *Profile
	rng        *rand.Rand
	classifier sentiment.Keyword
}

// New creates a Generator. A nil profile selects the built-in demo
// profile.
func New(profile *Profile, rng *rand.Rand) *Generator {
	if profile == nil {
		profile = BuiltIn()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{profile: profile, rng: rng}
}

// Workspace returns a copy of the seed workspace.
func (g *Generator) Workspace() model.Workspace {
	return g.profile.Workspace
}

// Regions returns a copy of the seed regions.
func (g *Generator) Regions() []model.Region {
	out := make([]model.Region, len(g.profile.Regions))
	copy(out, g.profile.Regions)
	return out
}

// Categories returns a copy of the seed categories.
func (g *Generator) Categories() []model.Category {
	out := make([]model.Category, len(g.profile.Categories))
	copy(out, g.profile.Categories)
	return out
}

// Feedbacks generates n randomized feedback records distributed over the
// last 30 days, sorted newest-first.
//
// Region selection is category-weighted per the profile, sentiment is
// derived from the complaint text (with a 30% escalation of negative to
// critical), and sources split roughly 70% whatsapp / 30% manual.
func (g *Generator) Feedbacks(n int) []model.Feedback {
	feedbacks := make([]model.Feedback, 0, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		category := g.profile.Categories[g.rng.Intn(len(g.profile.Categories))]
		regionID := g.weightedRegion(category.Name)

		pool := g.profile.Complaints[category.Name]
		description := "Feedback genérico"
		if len(pool) > 0 {
			description = pool[g.rng.Intn(len(pool))]
		}

		s := g.classifier.Classify(context.Background(), description)
		if s == model.SentimentNegative && g.rng.Float64() > 0.7 {
			s = model.SentimentCritical
		}

		source := "whatsapp"
		if g.rng.Float64() <= 0.3 {
			source = "manual"
		}

		phoneHash := ""
		if g.rng.Float64() > 0.5 {
			phoneHash = "55119****1234"
		}

		feedbacks = append(feedbacks, model.Feedback{
			ID:          fmt.Sprintf("fb-%d", i),
			WorkspaceID: g.profile.Workspace.ID,
			RegionID:    regionID,
			CategoryID:  category.ID,
			Description: description,
			Sentiment:   s,
			Source:      source,
			PhoneHash:   phoneHash,
			CreatedAt:   now.Add(-time.Duration(g.rng.Intn(30*24)) * time.Hour),
		})
	}

	sort.Slice(feedbacks, func(i, j int) bool {
		return feedbacks[i].CreatedAt.After(feedbacks[j].CreatedAt)
	})

	return feedbacks
}

// weightedRegion picks a region id for a category: the favored region 60%
// of the time when the profile lists one, uniform otherwise.
func (g *Generator) weightedRegion(categoryName string) string {
	favored, ok := g.profile.Weights[categoryName]
	if ok && g.rng.Float64() < 0.6 {
		return favored
	}

	if ok {
		// Uniform over the remaining regions.
		others := make([]string, 0, len(g.profile.Regions)-1)
		for _, r := range g.profile.Regions {
			if r.ID != favored {
				others = append(others, r.ID)
			}
		}
		if len(others) > 0 {
			return others[g.rng.Intn(len(others))]
		}
	}

	return g.profile.Regions[g.rng.Intn(len(g.profile.Regions))].ID
}
