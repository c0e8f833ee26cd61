// Package store persists drafting documents, the template gallery and
// user accounts in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Document is one drafting document. Content is the structured
// document tree as JSON.
type Document struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// Template is one entry of the template gallery. InitialContent is
// semantic HTML markup, sanitized before it leaves the store.
type Template struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	InitialContent string `json:"initialContent"`
	ImageURL       string `json:"imageUrl"`
	Label          string `json:"label"`
}

// User is a registered account. PasswordHash is bcrypt.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    int64
}

// Store wraps the database with the application's queries.
type Store struct {
	db        *sql.DB
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    owner      TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    content    TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner, updated_at DESC);

CREATE TABLE IF NOT EXISTS templates (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    initial_content TEXT NOT NULL DEFAULT '',
    image_url       TEXT NOT NULL DEFAULT '',
    label           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at    INTEGER NOT NULL
);
`

// New creates a Store and applies the database schema.
func New(db *sql.DB) (*Store, error) {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("store schema: %w", err)
		}
	}
	return &Store{
		db:        db,
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}, nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateDocument inserts a new document and returns it.
func (s *Store) CreateDocument(ctx context.Context, owner, title string, content json.RawMessage) (*Document, error) {
	if owner == "" {
		return nil, errors.New("store: owner is required")
	}
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	doc := &Document{
		ID:        newID(),
		Owner:     owner,
		Title:     title,
		Content:   content,
		CreatedAt: s.now().Unix(),
		UpdatedAt: s.now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Owner, doc.Title, string(doc.Content), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create document: %w", err)
	}
	return doc, nil
}

// GetDocument fetches one document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, content, created_at, updated_at FROM documents WHERE id = ?`, id)
	var doc Document
	var content string
	err := row.Scan(&doc.ID, &doc.Owner, &doc.Title, &content, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document: %w", err)
	}
	doc.Content = json.RawMessage(content)
	return &doc, nil
}

// UpdateDocument replaces the title and content of a document.
func (s *Store) UpdateDocument(ctx context.Context, id, title string, content json.RawMessage) error {
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, string(content), s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("store: update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document. Deleting an unknown id is an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDocuments returns an owner's documents, most recently updated
// first, capped at limit.
func (s *Store) ListDocuments(ctx context.Context, owner string, limit int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, title, content, created_at, updated_at FROM documents
		 WHERE owner = ? ORDER BY updated_at DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var content string
		if err := rows.Scan(&doc.ID, &doc.Owner, &doc.Title, &content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: list documents: %w", err)
		}
		doc.Content = json.RawMessage(content)
		out = append(out, doc)
	}
	return out, rows.Err()
}

// GetTemplate fetches one gallery template by id.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, initial_content, image_url, label FROM templates WHERE id = ?`, id)
	tpl, err := s.scanTemplate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template: %w", err)
	}
	return tpl, nil
}

// SearchTemplates matches the query against template names and labels,
// case-insensitively. An empty query returns an empty result without
// touching the database. Results are capped at limit.
func (s *Store) SearchTemplates(ctx context.Context, query string, limit int) ([]Template, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Template{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, initial_content, image_url, label FROM templates
		 WHERE lower(name) LIKE ? ESCAPE '\' OR lower(label) LIKE ? ESCAPE '\'
		 ORDER BY name LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search templates: %w", err)
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		tpl, err := s.scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: search templates: %w", err)
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

func (s *Store) scanTemplate(scan func(...any) error) (*Template, error) {
	var tpl Template
	if err := scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.InitialContent, &tpl.ImageURL, &tpl.Label); err != nil {
		return nil, err
	}
	tpl.InitialContent = s.sanitizer.Sanitize(tpl.InitialContent)
	return &tpl, nil
}

func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// CreateUser inserts a user with a precomputed bcrypt hash.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	if email == "" || passwordHash == "" {
		return nil, errors.New("store: email and password hash are required")
	}
	u := &User{
		ID:           newID(),
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// UserByEmail fetches a user by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(email))
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by email: %w", err)
	}
	return &u, nil
}
