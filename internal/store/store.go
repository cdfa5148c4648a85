// Package store persists project snapshots as JSON files, with an index
// row per project in SQLite for fast listing and latest-project lookup.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type Store struct {
	dir    string
	db     *sql.DB
	logger *slog.Logger
}

// ProjectInfo is one row of the project index.
type ProjectInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SchemaVersion int       `json:"schema_version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func New(dir string, db *sql.DB, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create projects dir: %w", err)
	}
	return &Store{dir: dir, db: db, logger: logger}, nil
}

func (s *Store) snapshotPath(projectID string) string {
	return filepath.Join(s.dir, projectID+".json")
}

// Save writes the project snapshot atomically (temp file + rename) and
// upserts the index row.
func (s *Store) Save(ctx context.Context, p *timeline.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := s.snapshotPath(p.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, snapshot_path, schema_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			snapshot_path = excluded.snapshot_path,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, path, p.SchemaVersion,
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("index snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("project snapshot saved", "project_id", p.ID)
	}
	return nil
}

// Load reads a snapshot by project ID, migrating older schema versions
// forward before returning.
func (s *Store) Load(ctx context.Context, projectID string) (*timeline.Project, error) {
	data, err := os.ReadFile(s.snapshotPath(projectID))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return MigrateSnapshot(data)
}

// LoadLatest returns the most recently saved project, or nil when the
// store is empty.
func (s *Store) LoadLatest(ctx context.Context) (*timeline.Project, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM projects ORDER BY updated_at DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

// List returns the project index, newest first.
func (s *Store) List(ctx context.Context) ([]ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, schema_version, updated_at
		FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ProjectInfo
	for rows.Next() {
		var info ProjectInfo
		var updatedAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.SchemaVersion, &updatedAt); err != nil {
			return nil, err
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a project's snapshot file and index row.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	if err := os.Remove(s.snapshotPath(projectID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", projectID)
	return err
}

// MigrateSnapshot unmarshals a snapshot and upgrades it to the current
// schema. Version 1 snapshots predate per-track and per-clip volume, so
// those fields get their defaults filled in.
func MigrateSnapshot(data []byte) (*timeline.Project, error) {
	var p timeline.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if p.SchemaVersion > timeline.SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d is newer than supported %d",
			p.SchemaVersion, timeline.SchemaVersion)
	}

	if p.SchemaVersion < 2 {
		for _, tr := range p.Tracks {
			if tr.Volume == 0 {
				tr.Volume = 1.0
			}
			for _, c := range tr.Clips {
				if c.Volume == 0 {
					c.Volume = 1.0
				}
			}
		}
		p.SchemaVersion = timeline.SchemaVersion
	}

	return &p, nil
}
