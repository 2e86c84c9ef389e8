// Package state persists the run history in a local sqlite database.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run statuses
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Manager handles run history persistence
type Manager struct {
	db *sql.DB
}

// RunRecord represents a single run of an action against an account
type RunRecord struct {
	ID           int64
	RunID        string
	Action       string // "show", "plan", "apply", "tidy"
	AccountID    string
	StartTime    time.Time
	EndTime      time.Time
	Status       string // "success", "failed", "cancelled"
	EntryCount   int
	PlanCount    int
	SuccessCount int
	SkipCount    int
	FailCount    int
	ReportPath   string
	Error        string
}

// NewRunID returns a unique identifier for a run
func NewRunID() string {
	return uuid.NewString()
}

// NewManager creates a new state manager backed by a sqlite file in dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "drivemover.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		action TEXT NOT NULL,
		account_id TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		entry_count INTEGER DEFAULT 0,
		plan_count INTEGER DEFAULT 0,
		success_count INTEGER DEFAULT 0,
		skip_count INTEGER DEFAULT 0,
		fail_count INTEGER DEFAULT 0,
		report_path TEXT,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_account_time ON runs(account_id, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveRun records a completed run
func (m *Manager) SaveRun(record RunRecord) error {
	if record.Status != StatusSuccess && record.Status != StatusFailed && record.Status != StatusCancelled {
		return fmt.Errorf("invalid status: %s (must be '%s', '%s', or '%s')",
			record.Status, StatusSuccess, StatusFailed, StatusCancelled)
	}

	query := `
		INSERT INTO runs (run_id, action, account_id, start_time, end_time, status,
			entry_count, plan_count, success_count, skip_count, fail_count, report_path, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.RunID,
		record.Action,
		record.AccountID,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.EntryCount,
		record.PlanCount,
		record.SuccessCount,
		record.SkipCount,
		record.FailCount,
		record.ReportPath,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT id, run_id, action, account_id, start_time, end_time, status,
		entry_count, plan_count, success_count, skip_count, fail_count, report_path, error
	FROM runs
`

func scanRecord(scan func(dest ...any) error) (RunRecord, error) {
	var record RunRecord
	err := scan(
		&record.ID,
		&record.RunID,
		&record.Action,
		&record.AccountID,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.EntryCount,
		&record.PlanCount,
		&record.SuccessCount,
		&record.SkipCount,
		&record.FailCount,
		&record.ReportPath,
		&record.Error,
	)
	return record, err
}

// GetHistory retrieves run history for an account, most recent first
func (m *Manager) GetHistory(accountID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := selectColumns + `
		WHERE account_id = ?
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// GetLastPlan retrieves the most recent successful 'plan' run for an
// account, or nil if there is none
func (m *Manager) GetLastPlan(accountID string) (*RunRecord, error) {
	query := selectColumns + `
		WHERE account_id = ? AND action = 'plan' AND status = 'success'
		ORDER BY start_time DESC
		LIMIT 1
	`

	record, err := scanRecord(m.db.QueryRow(query, accountID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last plan: %w", err)
	}

	return &record, nil
}

// GetAllHistory retrieves run history across all accounts
func (m *Manager) GetAllHistory(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := selectColumns + `
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query all history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
