// Package remote provides the row-oriented backend adapter for the
// feedback store.
//
// The adapter translates between the core entity shapes and the backend's
// table schema (workspaces, regions, categories, feedbacks) and performs
// the actual read/write calls. It is a stateless channel: full-collection
// reads, single-row writes, no retries, no batching. Failures surface as
// returned errors; containing them is the synchronization policy's job.
//
// The backend is libSQL/SQLite through the ncruces driver, so the same
// adapter serves an embedded database file or any SQLite-compatible DSN.
// Field-name translation (snake_case columns, camel-case fields) happens
// exclusively here.
package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/feedbackpulse/pulse/internal/model"
	"github.com/feedbackpulse/pulse/internal/store"
)

// ErrNoWorkspace is returned by FetchWorkspace when the workspaces table
// is empty.
var ErrNoWorkspace = errors.New("no workspace found")

// Adapter wraps the backend database connection.
type Adapter struct {
	conn *sql.DB
	dsn  string
}

// Open creates a connection for the given DSN. A plain path is opened as
// an embedded database file; the parent directory is created if needed.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	adapter, err := remote.Open(".pulse/remote.db")
//	if err != nil {
//	    return err
//	}
//	defer adapter.Close()
func Open(dsn string) (*Adapter, error) {
	if !strings.Contains(dsn, "://") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + dsn
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	a := &Adapter{conn: conn, dsn: dsn}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := a.conn.Exec(pragma); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	return a, nil
}

// Close closes the connection, checkpointing the WAL first.
func (a *Adapter) Close() error {
	if a.conn == nil {
		return nil
	}
	if _, err := a.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.conn = nil
	return nil
}

// InitSchema creates the backend tables if they don't exist. Idempotent.
func (a *Adapter) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS regions (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		name TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS feedbacks (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		region_id TEXT,
		category_id TEXT,
		description TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		phone_hash TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_regions_workspace ON regions(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_categories_workspace ON categories(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_feedbacks_workspace ON feedbacks(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_feedbacks_created ON feedbacks(created_at);
	`

	if _, err := a.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// FetchWorkspace returns the first workspace row available (oldest by
// creation time). The system assumes exactly one workspace exists; this
// is a single-tenant simplification, not a multi-workspace lookup.
func (a *Adapter) FetchWorkspace(ctx context.Context) (*model.Workspace, error) {
	row := a.conn.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM workspaces ORDER BY created_at ASC LIMIT 1`)

	var ws model.Workspace
	var createdAt string
	if err := row.Scan(&ws.ID, &ws.Name, &ws.Slug, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoWorkspace
		}
		return nil, fmt.Errorf("failed to fetch workspace: %w", err)
	}
	ws.CreatedAt = parseTime(createdAt)
	return &ws, nil
}

// InsertWorkspace upserts a workspace row. Used when publishing a locally
// seeded workspace to an empty backend; the store's push rule never calls
// this.
func (a *Adapter) InsertWorkspace(ctx context.Context, ws model.Workspace) error {
	query := `
	INSERT INTO workspaces (id, name, slug, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		slug = excluded.slug
	`
	_, err := a.conn.ExecContext(ctx, query, ws.ID, ws.Name, ws.Slug, formatTime(ws.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert workspace %s: %w", ws.ID, err)
	}
	return nil
}

// FetchRegions returns all regions scoped to the workspace.
func (a *Adapter) FetchRegions(ctx context.Context, workspaceID string) ([]model.Region, error) {
	rows, err := a.conn.QueryContext(ctx,
		`SELECT id, workspace_id, name, color FROM regions WHERE workspace_id = ? ORDER BY id ASC`,
		workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := []model.Region{}
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.WorkspaceID, &r.Name, &r.Color); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}

// FetchCategories returns all categories scoped to the workspace.
func (a *Adapter) FetchCategories(ctx context.Context, workspaceID string) ([]model.Category, error) {
	rows, err := a.conn.QueryContext(ctx,
		`SELECT id, workspace_id, name, icon, color FROM categories WHERE workspace_id = ? ORDER BY id ASC`,
		workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// FetchFeedbacks returns all feedbacks scoped to the workspace, ordered
// by creation time descending.
func (a *Adapter) FetchFeedbacks(ctx context.Context, workspaceID string) ([]model.Feedback, error) {
	rows, err := a.conn.QueryContext(ctx, `
		SELECT id, workspace_id, region_id, category_id, description,
		       sentiment, source, phone_hash, created_at
		FROM feedbacks
		WHERE workspace_id = ?
		ORDER BY created_at DESC`,
		workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedbacks: %w", err)
	}
	defer rows.Close()

	feedbacks := []model.Feedback{}
	for rows.Next() {
		var f model.Feedback
		var regionID, categoryID, phoneHash sql.NullString
		var createdAt string

		err := rows.Scan(&f.ID, &f.WorkspaceID, &regionID, &categoryID,
			&f.Description, &f.Sentiment, &f.Source, &phoneHash, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		f.RegionID = regionID.String
		f.CategoryID = categoryID.String
		f.PhoneHash = phoneHash.String
		f.CreatedAt = parseTime(createdAt)
		feedbacks = append(feedbacks, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedbacks: %w", err)
	}
	return feedbacks, nil
}

// InsertFeedback upserts a single feedback row.
func (a *Adapter) InsertFeedback(ctx context.Context, f model.Feedback) error {
	query := `
	INSERT INTO feedbacks (
		id, workspace_id, region_id, category_id, description,
		sentiment, source, phone_hash, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		description = excluded.description,
		sentiment = excluded.sentiment,
		source = excluded.source
	`
	_, err := a.conn.ExecContext(ctx, query,
		f.ID, f.WorkspaceID,
		nullable(f.RegionID), nullable(f.CategoryID),
		f.Description, string(f.Sentiment), f.Source,
		nullable(f.PhoneHash), formatTime(f.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert feedback %s: %w", f.ID, err)
	}
	return nil
}

// DeleteFeedback removes a feedback row. Missing ids are not an error.
func (a *Adapter) DeleteFeedback(ctx context.Context, id string) error {
	if _, err := a.conn.ExecContext(ctx, `DELETE FROM feedbacks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete feedback %s: %w", id, err)
	}
	return nil
}

// InsertRegion upserts a single region row.
func (a *Adapter) InsertRegion(ctx context.Context, r model.Region) error {
	query := `
	INSERT INTO regions (id, workspace_id, name, color)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		color = excluded.color
	`
	if _, err := a.conn.ExecContext(ctx, query, r.ID, r.WorkspaceID, r.Name, r.Color); err != nil {
		return fmt.Errorf("failed to insert region %s: %w", r.ID, err)
	}
	return nil
}

// UpdateRegion applies a partial patch to a region row. A patch with no
// fields set, or a missing id, is a no-op.
func (a *Adapter) UpdateRegion(ctx context.Context, id string, patch store.RegionPatch) error {
	var sets []string
	var args []interface{}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE regions SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update region %s: %w", id, err)
	}
	return nil
}

// DeleteRegion removes a region row. Missing ids are not an error.
func (a *Adapter) DeleteRegion(ctx context.Context, id string) error {
	if _, err := a.conn.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete region %s: %w", id, err)
	}
	return nil
}

// InsertCategory upserts a single category row.
func (a *Adapter) InsertCategory(ctx context.Context, c model.Category) error {
	query := `
	INSERT INTO categories (id, workspace_id, name, icon, color)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		icon = excluded.icon,
		color = excluded.color
	`
	if _, err := a.conn.ExecContext(ctx, query, c.ID, c.WorkspaceID, c.Name, c.Icon, c.Color); err != nil {
		return fmt.Errorf("failed to insert category %s: %w", c.ID, err)
	}
	return nil
}

// UpdateCategory applies a partial patch to a category row.
func (a *Adapter) UpdateCategory(ctx context.Context, id string, patch store.CategoryPatch) error {
	var sets []string
	var args []interface{}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *patch.Icon)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE categories SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update category %s: %w", id, err)
	}
	return nil
}

// DeleteCategory removes a category row. Missing ids are not an error.
func (a *Adapter) DeleteCategory(ctx context.Context, id string) error {
	if _, err := a.conn.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// formatTime stores timestamps as RFC 3339 text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads timestamps back; unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
