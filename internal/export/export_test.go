package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/seed"
	"github.com/feedbackpulse/pulse/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(store.Config{
		Slot:   &store.MemSlot{},
		Seeder: seed.New(nil, rand.New(rand.NewSource(11))),
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	st.Initialize(context.Background())
	return st
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Format
		wantErr bool
	}{
		{"jsonl", "out.jsonl", FormatJSONL, false},
		{"yaml", "out.yaml", FormatYAML, false},
		{"yml", "out.txt", FormatYAML, false},
		{"", "out.yaml", FormatYAML, false},
		{"", "out.yml", FormatYAML, false},
		{"", "out.jsonl", FormatJSONL, false},
		{"", "out", FormatJSONL, false},
		{"csv", "out.csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name, tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q, %q): expected error", tt.name, tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q, %q) failed: %v", tt.name, tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q, %q) = %s, want %s", tt.name, tt.path, got, tt.want)
		}
	}
}

func TestExportJSONLRoundTrip(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "out.jsonl")

	n, err := Export(st, path, FormatJSONL)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 150 {
		t.Errorf("expected 150 exported feedbacks, got %d", n)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer file.Close()

	feedbacks, err := ReadJSONL(file)
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(feedbacks) != 150 {
		t.Fatalf("expected 150 parsed feedbacks, got %d", len(feedbacks))
	}
	if feedbacks[0].ID != st.Feedbacks()[0].ID {
		t.Errorf("ordering not preserved")
	}
}

func TestExportJSONLOneObjectPerLine(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "out.jsonl")

	if _, err := Export(st, path, FormatJSONL); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		var f model.Feedback
		if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
			t.Fatalf("line %d is not a standalone object: %v", lines+1, err)
		}
		lines++
	}
	if lines != 150 {
		t.Errorf("expected 150 lines, got %d", lines)
	}
}

func TestExportYAMLArchive(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "out.yaml")

	n, err := Export(st, path, FormatYAML)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 150 {
		t.Errorf("expected 150 exported feedbacks, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	var archive Archive
	if err := yaml.Unmarshal(data, &archive); err != nil {
		t.Fatalf("archive not parseable: %v", err)
	}
	if archive.Workspace == nil || archive.Workspace.ID != "ws-demo" {
		t.Errorf("workspace missing from archive")
	}
	if len(archive.Regions) != 6 || len(archive.Categories) != 5 {
		t.Errorf("expected 6 regions and 5 categories, got %d/%d",
			len(archive.Regions), len(archive.Categories))
	}
	if len(archive.Feedbacks) != 150 {
		t.Errorf("expected 150 feedbacks, got %d", len(archive.Feedbacks))
	}
}

func TestImportAppliesNewRecords(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "in.jsonl")

	extra := model.Feedback{
		ID:          "fb-import-1",
		WorkspaceID: "ws-demo",
		RegionID:    "reg-1",
		CategoryID:  "cat-1",
		Description: "Praça revitalizada",
		Sentiment:   model.SentimentPositive,
		Source:      "manual",
		CreatedAt:   time.Now().UTC(),
	}
	data, _ := json.Marshal(extra)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	before := len(st.Feedbacks())
	result, err := Import(st, ImportOptions{FromJSONL: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(st.Feedbacks()) != before+1 {
		t.Errorf("record not applied to store")
	}
	if st.Feedbacks()[0].ID != "fb-import-1" {
		t.Errorf("imported record should keep its id, got %s", st.Feedbacks()[0].ID)
	}
}

func TestImportSkipsExistingIDs(t *testing.T) {
	st := newTestStore(t)
	exportPath := filepath.Join(t.TempDir(), "out.jsonl")

	if _, err := Export(st, exportPath, FormatJSONL); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	before := len(st.Feedbacks())
	result, err := Import(st, ImportOptions{FromJSONL: exportPath})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 150 {
		t.Errorf("re-import should skip everything: %+v", result)
	}
	if len(st.Feedbacks()) != before {
		t.Errorf("re-import changed store size")
	}
}

func TestImportDryRunLeavesStoreUntouched(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "in.jsonl")

	extra := model.Feedback{
		ID:          "fb-dry-1",
		WorkspaceID: "ws-demo",
		Description: "x",
		Sentiment:   model.SentimentNeutral,
		Source:      "manual",
		CreatedAt:   time.Now().UTC(),
	}
	data, _ := json.Marshal(extra)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	before := len(st.Feedbacks())
	result, err := Import(st, ImportOptions{FromJSONL: path, DryRun: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("dry run should still count imports: %+v", result)
	}
	if len(st.Feedbacks()) != before {
		t.Errorf("dry run mutated the store")
	}
}

func TestImportCountsInvalidRecords(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "in.jsonl")

	lines := []string{
		`{"id":"fb-bad-1","workspace_id":"ws-demo","description":"","sentiment":"negative","source":"manual"}`,
		`{"id":"fb-bad-2","workspace_id":"ws-demo","description":"x","sentiment":"furious","source":"manual"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	result, err := Import(st, ImportOptions{FromJSONL: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 0 || len(result.Errors) != 2 {
		t.Errorf("expected 2 validation errors, got %+v", result)
	}
}

func TestImportRejectsMalformedJSONL(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "in.jsonl")

	if err := os.WriteFile(path, []byte("{not json\n"), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	if _, err := Import(st, ImportOptions{FromJSONL: path}); err == nil {
		t.Errorf("expected parse error")
	}
}
