package devbackend

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no page exists under a slug.
var ErrNotFound = errors.New("devbackend: page not found")

// Page is a stored wiki page.
type Page struct {
	Slug      string
	Title     string
	Content   string
	Private   bool
	UpdatedAt time.Time
}

// Commit is one entry of the commit log.
type Commit struct {
	ID      int64     `json:"id"`
	Slug    string    `json:"slug"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Store wraps a SQLite database holding pages and their commit log.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the page view read while a commit writes; writers wait on
	// the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    private INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS commits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL,
    author TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// GetPage returns the page stored under slug, or ErrNotFound.
func (s *Store) GetPage(slug string) (Page, error) {
	var p Page
	var private int
	var updated string
	err := s.db.QueryRow(`SELECT slug, title, content, private, updated_at FROM pages WHERE slug = ?`, slug).
		Scan(&p.Slug, &p.Title, &p.Content, &private, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	if err != nil {
		return Page{}, err
	}
	p.Private = private == 1
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}

// SavePage upserts p and appends a commit log entry in one transaction.
func (s *Store) SavePage(p Page, author, message string) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	stamp := p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	private := 0
	if p.Private {
		private = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO pages (slug, title, content, private, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Content, private, stamp); err != nil {
		return fmt.Errorf("save page %q: %w", p.Slug, err)
	}
	if _, err := tx.Exec(`INSERT INTO commits (slug, author, message, created_at) VALUES (?, ?, ?, ?)`,
		p.Slug, author, message, stamp); err != nil {
		return fmt.Errorf("log commit %q: %w", p.Slug, err)
	}
	return tx.Commit()
}

// Log returns up to limit commit log entries, newest first. A limit of zero
// or less returns the whole log.
func (s *Store) Log(limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT id, slug, author, message, created_at FROM commits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []Commit
	for rows.Next() {
		var c Commit
		var created string
		if err := rows.Scan(&c.ID, &c.Slug, &c.Author, &c.Message, &created); err != nil {
			return nil, err
		}
		c.Time, _ = time.Parse(time.RFC3339Nano, created)
		log = append(log, c)
	}
	return log, rows.Err()
}

// ListPages returns stored pages ordered by slug, without their content.
// Private pages are included only when withPrivate is set.
func (s *Store) ListPages(withPrivate bool) ([]Page, error) {
	rows, err := s.db.Query(`SELECT slug, title, private, updated_at FROM pages WHERE private = 0 OR ? ORDER BY slug`, withPrivate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var private int
		var updated string
		if err := rows.Scan(&p.Slug, &p.Title, &private, &updated); err != nil {
			return nil, err
		}
		p.Private = private == 1
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
