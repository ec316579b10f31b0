package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"folio/internal/errors"
	"folio/internal/models"
)

// SQLiteStore persists the portfolio snapshot as a single JSON document in
// SQLite, with committed buy/sell transactions mirrored into an append-only
// ledger table for external inspection. The snapshot document is the source
// of truth; the ledger table is derived.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	cache  *models.Snapshot
	closed bool
}

// NewSQLiteStore opens (or creates) the store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Mutations are serialized by the store mutex; a single connection avoids
	// SQLITE_BUSY churn under WAL.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.loadSnapshot(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		document TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		symbol TEXT NOT NULL,
		amount REAL NOT NULL,
		price_per_unit REAL NOT NULL,
		total_value REAL NOT NULL,
		cost_basis_at_execution REAL,
		realized_pnl REAL,
		position_id TEXT,
		date TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) loadSnapshot() error {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM snapshot WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		s.cache = &models.Snapshot{}
		return nil
	}
	if err != nil {
		return err
	}
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return fmt.Errorf("corrupt snapshot document: %w", err)
	}
	s.cache = &snap
	return nil
}

// Read returns a deep copy of the current snapshot.
func (s *SQLiteStore) Read() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.cache)
}

// Mutate applies fn to a copy of the snapshot and commits the new document
// plus any appended ledger entries in a single SQL transaction. Mutations are
// serialized; queries continue to read the previous snapshot until commit.
func (s *SQLiteStore) Mutate(fn MutateFunc) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}

	next := cloneSnapshot(s.cache)
	priorTxCount := len(s.cache.Transactions)

	result, err := fn(next)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshot (id, document, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		string(doc), time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	for _, t := range next.Transactions[min(priorTxCount, len(next.Transactions)):] {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO transactions
			 (id, type, symbol, amount, price_per_unit, total_value, cost_basis_at_execution, realized_pnl, position_id, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Type), t.Symbol, t.Amount, t.PricePerUnit, t.TotalValue,
			t.CostBasisAtExecution, t.RealizedPnL, t.PositionID, t.Date, t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appending ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing mutation: %w", err)
	}

	s.cache = next
	return result, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
