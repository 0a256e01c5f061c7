// Package store keeps the timeline's items in an in-memory SQLite database.
//
// Nothing is written to disk. Every accepted update bumps a monotonically
// increasing revision, and every read returns freshly allocated values so
// callers never share state with the store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fentz26/timeline/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrItemNotFound indicates no item has the requested id.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidName indicates an empty or whitespace-only name.
	ErrInvalidName = errors.New("name must not be empty")
	// ErrNameTooLong indicates a name over models.MaxNameLength characters.
	ErrNameTooLong = fmt.Errorf("name longer than %d characters", models.MaxNameLength)
	// ErrInvalidRange indicates an end date before the start date.
	ErrInvalidRange = errors.New("end date before start date")
	// ErrInvalidID indicates an item without an id.
	ErrInvalidID = errors.New("item id must not be empty")
	// ErrDuplicateID indicates two loaded items share an id.
	ErrDuplicateID = errors.New("duplicate item id")
)

// Snapshot is a consistent copy of the items at one revision.
type Snapshot struct {
	Revision int64         `json:"revision"`
	Items    []models.Item `json:"items"`
}

// Store provides access to the timeline items.
type Store struct {
	db *sql.DB
}

// New opens an empty in-memory store.
func New() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Each connection to :memory: is a separate database, so pin the pool
	// to a single connection for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS changes (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		item_id TEXT,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		details TEXT,
		revision INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO meta (key, value) VALUES ('revision', 0);

	CREATE INDEX IF NOT EXISTS idx_changes_item_id ON changes(item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Item Operations ---

// Load replaces every item with items and returns the new revision.
// Items are validated first; on any error nothing changes.
func (s *Store) Load(items []models.Item) (int64, error) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}
		if err := validate(it); err != nil {
			return 0, fmt.Errorf("item %s: %w", it.ID, err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	now := time.Now().UTC()
	for _, it := range items {
		_, err := tx.Exec(
			`INSERT INTO items (id, name, start_date, end_date, updated_at) VALUES (?, ?, ?, ?, ?)`,
			it.ID, strings.TrimSpace(it.Name), it.Start, it.End, now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert item: %w", err)
		}
	}

	rev, err := bumpRevision(tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return rev, nil
}

// Snapshot returns the current revision and a copy of every item in load order.
func (s *Store) Snapshot() (Snapshot, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var snap Snapshot
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'revision'`).Scan(&snap.Revision); err != nil {
		return Snapshot{}, fmt.Errorf("query revision: %w", err)
	}
	items, err := listItems(tx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Items = items
	return snap, nil
}

// ListItems returns every item in load order.
func (s *Store) ListItems() ([]models.Item, error) {
	return listItems(s.db)
}

// GetItem retrieves an item by id.
func (s *Store) GetItem(id string) (*models.Item, error) {
	it := &models.Item{}
	err := s.db.QueryRow(
		`SELECT id, name, start_date, end_date FROM items WHERE id = ?`, id,
	).Scan(&it.ID, &it.Name, &it.Start, &it.End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return it, nil
}

// Revision returns the current revision.
func (s *Store) Revision() (int64, error) {
	var rev int64
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("query revision: %w", err)
	}
	return rev, nil
}

// RenameItem sets an item's name. The name is trimmed and must be non-empty
// and at most models.MaxNameLength characters.
func (s *Store) RenameItem(id, name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	return s.update(id, `UPDATE items SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
}

// RescheduleItem sets an item's start and end dates (YYYY-MM-DD).
func (s *Store) RescheduleItem(id, start, end string) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	return s.update(id, `UPDATE items SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		start, end, time.Now().UTC(), id)
}

func (s *Store) update(id, query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	if _, err := bumpRevision(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// --- Change Log Operations ---

// WriteChange appends a change record stamped with the current revision.
func (s *Store) WriteChange(action models.ChangeAction, itemID, inputsHash, outcome, details string) (*models.ChangeRecord, error) {
	rec := &models.ChangeRecord{
		ID:         uuid.New().String(),
		Action:     action,
		ItemID:     itemID,
		InputsHash: inputsHash,
		Outcome:    outcome,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'revision'`).Scan(&rec.Revision); err != nil {
		return nil, fmt.Errorf("query revision: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO changes (id, action, item_id, inputs_hash, outcome, details, revision, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Action, rec.ItemID, rec.InputsHash, rec.Outcome, rec.Details, rec.Revision, rec.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert change: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return rec, nil
}

// ListChanges returns the most recent change records, newest first.
// A non-positive limit returns all of them.
func (s *Store) ListChanges(itemID string, limit int) ([]models.ChangeRecord, error) {
	query := `SELECT id, action, item_id, inputs_hash, outcome, details, revision, timestamp FROM changes`
	var args []interface{}

	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY timestamp DESC, revision DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var out []models.ChangeRecord
	for rows.Next() {
		var rec models.ChangeRecord
		var itemIDCol, details sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Action, &itemIDCol, &rec.InputsHash, &rec.Outcome, &details, &rec.Revision, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		rec.ItemID = itemIDCol.String
		rec.Details = details.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// --- helpers ---

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func listItems(q querier) ([]models.Item, error) {
	rows, err := q.Query(`SELECT id, name, start_date, end_date FROM items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Start, &it.End); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func bumpRevision(tx *sql.Tx) (int64, error) {
	if _, err := tx.Exec(`UPDATE meta SET value = value + 1 WHERE key = 'revision'`); err != nil {
		return 0, fmt.Errorf("bump revision: %w", err)
	}
	var rev int64
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("query revision: %w", err)
	}
	return rev, nil
}

func validate(it models.Item) error {
	if strings.TrimSpace(it.ID) == "" {
		return ErrInvalidID
	}
	if err := validateName(strings.TrimSpace(it.Name)); err != nil {
		return err
	}
	return validateRange(it.Start, it.End)
}

func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateRange(start, end string) error {
	s, err := models.ParseDate(start)
	if err != nil {
		return err
	}
	e, err := models.ParseDate(end)
	if err != nil {
		return err
	}
	if e.Before(s) {
		return ErrInvalidRange
	}
	return nil
}
