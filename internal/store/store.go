// Package store persists the photo library in a SQLite database. The
// cycling engine consumes it through the framelib.Library interface and
// only ever sees display-path identifiers; rows carry the full upload
// metadata for the gallery UI.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPhotoNotFound is returned when a photo id does not exist.
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is one library entry.
type Photo struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	OriginalPath  string `json:"original_path"`
	DisplayPath   string `json:"display_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FileSize      int64  `json:"file_size"`
	MimeType      string `json:"mime_type"`
	DateTaken     string `json:"date_taken"`
	UploadedAt    string `json:"uploaded_at"`
	DisplayOrder  int    `json:"display_order"`
	IsFavorite    bool   `json:"is_favorite"`
}

// Store wraps the photo database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the photo database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo database: %w", err)
	}
	// The daemon is the only writer and SQLite serializes anyway; a single
	// connection avoids table-lock errors from the pool.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS photos (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            filename TEXT NOT NULL UNIQUE,
            original_path TEXT NOT NULL,
            display_path TEXT NOT NULL,
            thumbnail_path TEXT NOT NULL,
            width INTEGER DEFAULT 0,
            height INTEGER DEFAULT 0,
            file_size INTEGER DEFAULT 0,
            mime_type TEXT DEFAULT '',
            date_taken TEXT DEFAULT '',
            uploaded_at TEXT NOT NULL,
            display_order INTEGER DEFAULT 0,
            is_favorite INTEGER DEFAULT 0
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create photos table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const photoColumns = `id, filename, original_path, display_path, thumbnail_path,
    width, height, file_size, mime_type, date_taken, uploaded_at, display_order, is_favorite`

func scanPhoto(row interface{ Scan(...interface{}) error }) (Photo, error) {
	var p Photo
	var fav int
	err := row.Scan(&p.ID, &p.Filename, &p.OriginalPath, &p.DisplayPath, &p.ThumbnailPath,
		&p.Width, &p.Height, &p.FileSize, &p.MimeType, &p.DateTaken, &p.UploadedAt,
		&p.DisplayOrder, &fav)
	if err != nil {
		return Photo{}, err
	}
	p.IsFavorite = fav != 0
	return p, nil
}

// Add inserts a photo record and returns its id. UploadedAt is stamped
// here when unset.
func (s *Store) Add(p Photo) (int64, error) {
	if p.UploadedAt == "" {
		p.UploadedAt = time.Now().Format(time.RFC3339)
	}
	res, err := s.db.Exec(`
        INSERT INTO photos (filename, original_path, display_path, thumbnail_path,
            width, height, file_size, mime_type, date_taken, uploaded_at, display_order, is_favorite)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Filename, p.OriginalPath, p.DisplayPath, p.ThumbnailPath,
		p.Width, p.Height, p.FileSize, p.MimeType, p.DateTaken, p.UploadedAt,
		p.DisplayOrder, boolToInt(p.IsFavorite))
	if err != nil {
		return 0, fmt.Errorf("failed to add photo: %w", err)
	}
	return res.LastInsertId()
}

// Get returns a photo by id, or ErrPhotoNotFound.
func (s *Store) Get(id int64) (Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrPhotoNotFound
	}
	if err != nil {
		return Photo{}, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

// List returns photos newest-first. limit <= 0 returns everything.
func (s *Store) List(limit, offset int) ([]Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos ORDER BY uploaded_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo row: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photo rows: %w", err)
	}
	return photos, nil
}

// Delete removes a photo and returns the removed record so the caller can
// clean up its files. Returns ErrPhotoNotFound for unknown ids.
func (s *Store) Delete(id int64) (Photo, error) {
	p, err := s.Get(id)
	if err != nil {
		return Photo{}, err
	}
	if _, err := s.db.Exec(`DELETE FROM photos WHERE id = ?`, id); err != nil {
		return Photo{}, fmt.Errorf("failed to delete photo: %w", err)
	}
	return p, nil
}

// DeleteBulk removes several photos at once, returning the removed
// records. Unknown ids are skipped.
func (s *Store) DeleteBulk(ids []int64) ([]Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var removed []Photo
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(id)
		if errors.Is(err, ErrPhotoNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		removed = append(removed, p)
		args = append(args, id)
	}
	if len(args) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	if _, err := s.db.Exec(`DELETE FROM photos WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return nil, fmt.Errorf("failed to delete photos: %w", err)
	}
	return removed, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(id int64) (bool, error) {
	res, err := s.db.Exec(`UPDATE photos SET is_favorite = NOT is_favorite WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, ErrPhotoNotFound
	}
	var fav int
	if err := s.db.QueryRow(`SELECT is_favorite FROM photos WHERE id = ?`, id).Scan(&fav); err != nil {
		return false, fmt.Errorf("failed to read favorite flag: %w", err)
	}
	return fav != 0, nil
}

// Count returns the number of photos in the library.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return n, nil
}

// DisplayIDs returns every display-path identifier in stable upload
// order. This is the sequential cycling order; random order is the
// cycling engine's business, not the store's.
func (s *Store) DisplayIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT display_path FROM photos ORDER BY uploaded_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list display photos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan display photo: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate display photos: %w", err)
	}
	return ids, nil
}

// Exists reports whether a display-path identifier is still in the
// library.
func (s *Store) Exists(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE display_path = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check photo existence: %w", err)
	}
	return n > 0, nil
}

// ByDisplayPath returns the photo record backing a display identifier.
func (s *Store) ByDisplayPath(id string) (Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoColumns+` FROM photos WHERE display_path = ?`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrPhotoNotFound
	}
	if err != nil {
		return Photo{}, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
