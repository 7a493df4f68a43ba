package seed

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/feedbackpulse/pulse/internal/model"
)

func newGenerator(t *testing.T, seedVal int64) *Generator {
	t.Helper()
	return New(nil, rand.New(rand.NewSource(seedVal)))
}

func TestBuiltInProfileShape(t *testing.T) {
	p := BuiltIn()

	if p.Workspace.ID != "ws-demo" {
		t.Errorf("unexpected workspace id: %s", p.Workspace.ID)
	}
	if len(p.Regions) != 6 {
		t.Errorf("expected 6 regions, got %d", len(p.Regions))
	}
	if len(p.Categories) != 5 {
		t.Errorf("expected 5 categories, got %d", len(p.Categories))
	}
	for _, c := range p.Categories {
		if len(p.Complaints[c.Name]) == 0 {
			t.Errorf("no complaint pool for category %s", c.Name)
		}
	}
	if err := p.Validate(); err != nil {
		t.Errorf("built-in profile invalid: %v", err)
	}
}

func TestFeedbacksCountAndOrder(t *testing.T) {
	g := newGenerator(t, 42)
	feedbacks := g.Feedbacks(150)

	if len(feedbacks) != 150 {
		t.Fatalf("expected 150 feedbacks, got %d", len(feedbacks))
	}
	for i := 1; i < len(feedbacks); i++ {
		if feedbacks[i].CreatedAt.After(feedbacks[i-1].CreatedAt) {
			t.Fatalf("feedbacks not sorted newest-first at index %d", i)
		}
	}
}

func TestFeedbacksAreValid(t *testing.T) {
	g := newGenerator(t, 42)

	for _, f := range g.Feedbacks(150) {
		if err := f.Validate(); err != nil {
			t.Fatalf("generated feedback invalid: %v (%+v)", err, f)
		}
		if f.Source != "whatsapp" && f.Source != "manual" {
			t.Errorf("unexpected source %s", f.Source)
		}
		if f.PhoneHash != "" && f.PhoneHash != "55119****1234" {
			t.Errorf("unexpected phone hash %s", f.PhoneHash)
		}
	}
}

func TestWeightedRegionFavorsConfiguredRegion(t *testing.T) {
	g := newGenerator(t, 7)

	favored := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if g.weightedRegion("Saúde") == "reg-2" {
			favored++
		}
	}

	// 60% direct picks plus uniform spillover over the remaining five
	// regions puts the expectation near 0.68; allow generous slack.
	ratio := float64(favored) / trials
	if ratio < 0.55 || ratio > 0.80 {
		t.Errorf("favored region ratio out of range: %.2f", ratio)
	}
}

func TestUnweightedCategoryDistributesUniformly(t *testing.T) {
	g := newGenerator(t, 7)

	counts := make(map[string]int)
	const trials = 3000
	for i := 0; i < trials; i++ {
		counts[g.weightedRegion("Educação")]++
	}

	for _, r := range g.profile.Regions {
		ratio := float64(counts[r.ID]) / trials
		if ratio < 0.08 || ratio > 0.28 {
			t.Errorf("region %s ratio out of uniform range: %.2f", r.ID, ratio)
		}
	}
}

func TestCollectionsReturnCopies(t *testing.T) {
	g := newGenerator(t, 1)

	regions := g.Regions()
	regions[0].Name = "mutated"
	if g.Regions()[0].Name == "mutated" {
		t.Errorf("Regions returned shared backing array")
	}

	categories := g.Categories()
	categories[0].Name = "mutated"
	if g.Categories()[0].Name == "mutated" {
		t.Errorf("Categories returned shared backing array")
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := `[workspace]
id = "ws-city"
name = "Ouvidoria Municipal"
slug = "ouvidoria"

[[regions]]
id = "reg-1"
name = "Distrito Único"
color = "teal-500"

[[categories]]
id = "cat-1"
name = "Geral"
icon = "Inbox"
color = "gray"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if p.Workspace.Name != "Ouvidoria Municipal" {
		t.Errorf("workspace not overridden: %s", p.Workspace.Name)
	}
	if len(p.Regions) != 1 || p.Regions[0].Name != "Distrito Único" {
		t.Errorf("regions not overridden: %+v", p.Regions)
	}
	if p.Regions[0].WorkspaceID != "ws-city" {
		t.Errorf("workspace id not stamped onto region: %s", p.Regions[0].WorkspaceID)
	}
	// Untouched sections keep built-in values.
	if len(p.Complaints) == 0 {
		t.Errorf("complaint pools lost on partial override")
	}
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := `[workspace]
id = ""
name = ""
slug = ""
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	if _, err := LoadProfile(path); err == nil {
		t.Errorf("expected validation error")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestGeneratorUsesProfileWorkspace(t *testing.T) {
	p := BuiltIn()
	p.Workspace.ID = "ws-custom"
	for i := range p.Regions {
		p.Regions[i].WorkspaceID = "ws-custom"
	}
	for i := range p.Categories {
		p.Categories[i].WorkspaceID = "ws-custom"
	}

	g := New(p, rand.New(rand.NewSource(5)))
	for _, f := range g.Feedbacks(10) {
		if f.WorkspaceID != "ws-custom" {
			t.Fatalf("feedback has wrong workspace: %s", f.WorkspaceID)
		}
	}
	if g.Workspace().ID != "ws-custom" {
		t.Errorf("workspace not taken from profile")
	}
}

func TestSentimentEscalation(t *testing.T) {
	g := newGenerator(t, 99)

	dist := map[model.Sentiment]int{}
	for _, f := range g.Feedbacks(500) {
		dist[f.Sentiment]++
	}

	if dist[model.SentimentCritical] == 0 {
		t.Errorf("expected some critical feedbacks from escalation")
	}
	if dist[model.SentimentNegative] == 0 || dist[model.SentimentPositive] == 0 {
		t.Errorf("degenerate sentiment distribution: %+v", dist)
	}
}
