// internal/database/queries.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Error definitions
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Content block keys
const (
	ContentHeroTitle    = "heroTitle"
	ContentHeroSubtitle = "heroSubtitle"
	ContentCTAPrimary   = "ctaPrimary"
	ContentCTASecondary = "ctaSecondary"
)

// Content is the editable site text served to the public pages and the admin
// dashboard. LastUpdatedAt is epoch milliseconds of the newest block change.
type Content struct {
	HeroTitle     string `json:"heroTitle"`
	HeroSubtitle  string `json:"heroSubtitle"`
	CTAPrimary    string `json:"ctaPrimary"`
	CTASecondary  string `json:"ctaSecondary"`
	LastUpdatedBy string `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty"`
}

// Media describes one uploaded gallery file.
type Media struct {
	ID          int64
	Filename    string
	Kind        string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

// GetSetting retrieves a setting value
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?",
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// GetSettings returns all settings as a map for template rendering.
func (db *DB) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value.String
	}
	return settings, rows.Err()
}

// UpdateSetting upserts a setting value
func (db *DB) UpdateSetting(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value, type, updated_at)
		VALUES (?, ?, 'string', CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

// GetContent assembles the editable content blocks into a Content value.
// Missing blocks come back empty rather than as an error so a partially
// seeded database still renders.
func (db *DB) GetContent(ctx context.Context) (Content, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT key, value, updated_by, updated_at FROM content_blocks")
	if err != nil {
		return Content{}, err
	}
	defer rows.Close()

	var content Content
	for rows.Next() {
		var key, value string
		var updatedBy sql.NullString
		var updatedAt int64
		if err := rows.Scan(&key, &value, &updatedBy, &updatedAt); err != nil {
			return Content{}, err
		}
		switch key {
		case ContentHeroTitle:
			content.HeroTitle = value
		case ContentHeroSubtitle:
			content.HeroSubtitle = value
		case ContentCTAPrimary:
			content.CTAPrimary = value
		case ContentCTASecondary:
			content.CTASecondary = value
		}
		if updatedAt > content.LastUpdatedAt {
			content.LastUpdatedAt = updatedAt
			content.LastUpdatedBy = updatedBy.String
		}
	}
	return content, rows.Err()
}

// UpdateContent upserts the given content blocks, stamping each with the
// editing user and the current time in epoch milliseconds.
func (db *DB) UpdateContent(ctx context.Context, blocks map[string]string, user string) error {
	if len(blocks) == 0 {
		return ErrInvalidInput
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO content_blocks (key, value, updated_by, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_by = excluded.updated_by,
		updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for key, value := range blocks {
		if _, err := stmt.ExecContext(ctx, key, value, user, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMedia returns media of the given kind, newest first.
func (db *DB) ListMedia(ctx context.Context, kind string) ([]Media, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, filename, kind, content_type, size_bytes, created_at
		FROM media
		WHERE kind = ?
		ORDER BY created_at DESC, id DESC`,
		kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		var m Media
		var contentType sql.NullString
		if err := rows.Scan(&m.ID, &m.Filename, &m.Kind, &contentType, &m.SizeBytes, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ContentType = contentType.String
		media = append(media, m)
	}
	return media, rows.Err()
}

// AddMedia records an uploaded file's metadata.
func (db *DB) AddMedia(ctx context.Context, filename, kind, contentType string, sizeBytes int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO media (filename, kind, content_type, size_bytes) VALUES (?, ?, ?, ?)",
		filename, kind, contentType, sizeBytes,
	)
	return err
}

// DeleteMedia removes a media record by filename.
func (db *DB) DeleteMedia(ctx context.Context, filename string) error {
	result, err := db.ExecContext(ctx,
		"DELETE FROM media WHERE filename = ?", filename)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
