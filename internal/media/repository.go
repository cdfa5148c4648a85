package media

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateMediaFile(ctx context.Context, f *MediaFile) error
	GetMediaFile(ctx context.Context, id string) (*MediaFile, error)
	GetMediaFileByPath(ctx context.Context, path string) (*MediaFile, error)
	ListMediaFiles(ctx context.Context) ([]*MediaFile, error)
	DeleteMediaFile(ctx context.Context, id string) error
	CountMediaFiles(ctx context.Context) (int, error)
	UpdateMediaFileProbe(ctx context.Context, id string, duration float64, width, height int) error
	UpdateMediaFileStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateMediaFileThumbnail(ctx context.Context, id, thumbnailPath string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const mediaFileColumns = `id, path, filename, kind, duration_seconds, width, height, size_bytes, status, error, thumbnail_path, created_at, updated_at`

func (r *SQLiteRepository) CreateMediaFile(ctx context.Context, f *MediaFile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_files (`+mediaFileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Path, f.Filename, f.Kind, f.DurationSeconds, f.Width, f.Height, f.SizeBytes,
		f.Status, f.Error, f.ThumbnailPath,
		f.CreatedAt.Format(time.RFC3339), f.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetMediaFile(ctx context.Context, id string) (*MediaFile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+mediaFileColumns+` FROM media_files WHERE id = ?
	`, id)
	return scanMediaFile(row)
}

func (r *SQLiteRepository) GetMediaFileByPath(ctx context.Context, path string) (*MediaFile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+mediaFileColumns+` FROM media_files WHERE path = ?
	`, path)
	return scanMediaFile(row)
}

func scanMediaFile(row *sql.Row) (*MediaFile, error) {
	var f MediaFile
	var createdAt, updatedAt string

	err := row.Scan(&f.ID, &f.Path, &f.Filename, &f.Kind, &f.DurationSeconds,
		&f.Width, &f.Height, &f.SizeBytes, &f.Status, &f.Error, &f.ThumbnailPath,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &f, nil
}

func (r *SQLiteRepository) ListMediaFiles(ctx context.Context) ([]*MediaFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mediaFileColumns+` FROM media_files ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*MediaFile
	for rows.Next() {
		var f MediaFile
		var createdAt, updatedAt string
		if err := rows.Scan(&f.ID, &f.Path, &f.Filename, &f.Kind, &f.DurationSeconds,
			&f.Width, &f.Height, &f.SizeBytes, &f.Status, &f.Error, &f.ThumbnailPath,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		files = append(files, &f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) DeleteMediaFile(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM media_files WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountMediaFiles(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_files").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) UpdateMediaFileProbe(ctx context.Context, id string, duration float64, width, height int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE media_files SET duration_seconds = ?, width = ?, height = ?,
			status = ?, error = '', updated_at = datetime('now')
		WHERE id = ?
	`, duration, width, height, StatusReady, id)
	return err
}

func (r *SQLiteRepository) UpdateMediaFileStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE media_files SET status = ?, error = ?, updated_at = datetime('now') WHERE id = ?
	`, status, errorMsg, id)
	return err
}

func (r *SQLiteRepository) UpdateMediaFileThumbnail(ctx context.Context, id, thumbnailPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE media_files SET thumbnail_path = ?, updated_at = datetime('now') WHERE id = ?
	`, thumbnailPath, id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
