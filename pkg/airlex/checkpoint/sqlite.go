package checkpoint

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists checkpoint entries to SQLite.
// It is suitable for single-process production use and is independently
// inspectable with any sqlite3 client.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite checkpoint store.
// The path should be a file path (e.g., "./enrichment-checkpoint.db") or
// ":memory:" for testing.
//
// An unreadable or inconsistent database surfaces as a CorruptError; the
// store never silently treats a broken file as "everything pending" or
// "everything done".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for crash safety, FULL sync so MarkProcessed is durable on return
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("enable WAL mode: %w", err)}
	}
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("set synchronous mode: %w", err)}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS processed (
			provider TEXT NOT NULL,
			code TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL,
			PRIMARY KEY (provider, code)
		)
	`); err != nil {
		db.Close()
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("create table: %w", err)}
	}

	// Probe the table so a torn file fails here, not mid-run
	if _, err := db.Exec(`SELECT COUNT(*) FROM processed`); err != nil {
		db.Close()
		return nil, &CorruptError{Path: path, Err: fmt.Errorf("probe table: %w", err)}
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// IsProcessed implements Store.
func (s *SQLiteStore) IsProcessed(provider, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM processed
		WHERE provider = ? AND code = ?
	`, provider, normalize(code)).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query checkpoint: %w", err)
	}
	return true, nil
}

// MarkProcessed implements Store.
func (s *SQLiteStore) MarkProcessed(provider, code, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO processed (provider, code, model, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider, code) DO UPDATE SET
			model = excluded.model,
			timestamp = excluded.timestamp
	`, provider, normalize(code), model, time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Pending implements Store.
func (s *SQLiteStore) Pending(provider string, codes []string) ([]string, error) {
	done, err := s.processedSet(provider)
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(codes))
	for _, code := range codes {
		if !done[normalize(code)] {
			pending = append(pending, code)
		}
	}
	return pending, nil
}

// Processed implements Store.
func (s *SQLiteStore) Processed(provider string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT code FROM processed
		WHERE provider = ?
		ORDER BY rowid
	`, provider)
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan processed code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed codes: %w", err)
	}
	return codes, nil
}

// LastModel implements Store.
func (s *SQLiteStore) LastModel(provider string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var model string
	err := s.db.QueryRow(`
		SELECT model FROM processed
		WHERE provider = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT 1
	`, provider).Scan(&model)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last model: %w", err)
	}
	return model, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// processedSet returns the processed codes for a provider as a set.
func (s *SQLiteStore) processedSet(provider string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT code FROM processed WHERE provider = ?
	`, provider)
	if err != nil {
		return nil, fmt.Errorf("query processed set: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan processed code: %w", err)
		}
		done[code] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed set: %w", err)
	}
	return done, nil
}

// normalize canonicalizes a code the same way the dataset loader does.
func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
