// Package export moves feedback data in and out of the local store.
//
// Exports produce JSONL (one feedback per line, the interchange format)
// or a YAML archive of the full workspace. Imports read JSONL back into
// the store, preserving ids and timestamps.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/store"
)

// Format selects the export encoding.
type Format string

const (
	// FormatJSONL writes one feedback JSON object per line.
	FormatJSONL Format = "jsonl"
	// FormatYAML writes a single YAML archive of the workspace.
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied format name, defaulting by file
// extension when the name is empty.
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(name) {
	case "jsonl":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		default:
			return FormatJSONL, nil
		}
	default:
		return "", fmt.Errorf("unknown format %q (want jsonl or yaml)", name)
	}
}

// Archive is the YAML export shape: the full workspace in one document.
type Archive struct {
	Workspace  *model.Workspace `yaml:"workspace"`
	Regions    []model.Region   `yaml:"regions"`
	Categories []model.Category `yaml:"categories"`
	Feedbacks  []model.Feedback `yaml:"feedbacks"`
}

// Export writes the store's current state to path in the given format.
// Returns the number of feedbacks written.
func Export(st *store.Store, path string, format Format) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}

	var n int
	switch format {
	case FormatJSONL:
		n, err = WriteJSONL(file, st.Feedbacks())
	case FormatYAML:
		n, err = WriteYAML(file, Archive{
			Workspace:  st.Workspace(),
			Regions:    st.Regions(),
			Categories: st.Categories(),
			Feedbacks:  st.Feedbacks(),
		})
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return 0, err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return n, nil
}

// WriteJSONL streams feedbacks as one JSON object per line.
func WriteJSONL(w io.Writer, feedbacks []model.Feedback) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, f := range feedbacks {
		if err := enc.Encode(f); err != nil {
			return 0, fmt.Errorf("failed to encode feedback %s: %w", f.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush output: %w", err)
	}
	return len(feedbacks), nil
}

// WriteYAML writes the archive as a single YAML document.
func WriteYAML(w io.Writer, archive Archive) (int, error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(archive); err != nil {
		return 0, fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish archive: %w", err)
	}
	return len(archive.Feedbacks), nil
}

// ImportOptions configures a JSONL import.
type ImportOptions struct {
	FromJSONL string // Input JSONL file path
	DryRun    bool   // Preview without applying
}

// ImportResult contains statistics about the import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// ReadJSONL parses a JSONL stream into feedbacks. Malformed lines abort
// with a line-numbered error.
func ReadJSONL(r io.Reader) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	decoder := json.NewDecoder(r)
	lineNum := 0

	for {
		var f model.Feedback
		if err := decoder.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineNum+1, err)
		}
		lineNum++
		feedbacks = append(feedbacks, f)
	}
	return feedbacks, nil
}

// Import reads a JSONL file and applies its feedbacks to the store.
// Records whose id already exists are skipped; records that fail
// validation are counted in Errors. The import is local-only, matching
// the snapshot-restore nature of the operation.
func Import(st *store.Store, opts ImportOptions) (*ImportResult, error) {
	// #nosec G304 - controlled path from CLI
	file, err := os.Open(opts.FromJSONL)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file: %w", err)
	}
	defer file.Close()

	feedbacks, err := ReadJSONL(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONL: %w", err)
	}

	existing := make(map[string]bool)
	for _, f := range st.Feedbacks() {
		existing[f.ID] = true
	}

	result := &ImportResult{}
	for _, f := range feedbacks {
		if existing[f.ID] {
			result.Skipped++
			continue
		}
		if err := f.Validate(); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("invalid feedback %s: %v", f.ID, err))
			continue
		}
		existing[f.ID] = true

		if !opts.DryRun {
			st.ApplyFeedback(f)
		}
		result.Imported++
	}
	return result, nil
}
