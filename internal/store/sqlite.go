package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nvandessel/conjoint/internal/models"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteRunStore implements RunStore on a SQLite database at
// .conjoint/conjoint.db under the project root.
type SQLiteRunStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	dataDir string
	dbPath  string
}

var _ RunStore = (*SQLiteRunStore)(nil)

// NewSQLiteRunStore opens (creating if needed) the run database for projectRoot.
func NewSQLiteRunStore(projectRoot string) (*SQLiteRunStore, error) {
	dataDir := DataDir(projectRoot)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", DataDirName, err)
	}

	dbPath := DBPath(projectRoot)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dataDir: dataDir, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string { return s.dbPath }

// SaveDesign stores a design run and all of its rows in one transaction.
func (s *SQLiteRunStore) SaveDesign(ctx context.Context, run *DesignRun) error {
	if run == nil || run.Table == nil {
		return fmt.Errorf("design run has no table")
	}
	if run.ID == "" {
		run.ID = NewRunID("d")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	cfgJSON, err := json.Marshal(run.Study)
	if err != nil {
		return fmt.Errorf("failed to encode study config: %w", err)
	}
	attrsJSON, err := json.Marshal(run.Table.Attributes())
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO design_runs (id, study, method, seed, config, attributes, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Study.Name, run.Method, run.Seed, string(cfgJSON), string(attrsJSON),
		run.Table.Len(), run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert design run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO design_rows (run_id, idx, version, task, concept, levels)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range run.Table.Rows() {
		levels, err := json.Marshal(row.Levels)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, row.Version, row.Task, row.Concept, string(levels)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetDesign loads a design run by ID. Returns ErrNotFound for unknown IDs.
func (s *SQLiteRunStore) GetDesign(ctx context.Context, id string) (*DesignRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run       DesignRun
		cfgJSON   string
		attrsJSON string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, method, seed, config, attributes, created_at
		FROM design_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Method, &run.Seed, &cfgJSON, &attrsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query design run: %w", err)
	}

	if err := json.Unmarshal([]byte(cfgJSON), &run.Study); err != nil {
		return nil, fmt.Errorf("failed to decode study config: %w", err)
	}
	var attrs []string
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	run.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT version, task, concept, levels
		FROM design_rows WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query design rows: %w", err)
	}
	defer rows.Close()

	var designRows []models.DesignRow
	for rows.Next() {
		var (
			r      models.DesignRow
			levels string
		)
		if err := rows.Scan(&r.Version, &r.Task, &r.Concept, &levels); err != nil {
			return nil, fmt.Errorf("failed to scan design row: %w", err)
		}
		if err := json.Unmarshal([]byte(levels), &r.Levels); err != nil {
			return nil, fmt.Errorf("failed to decode design row levels: %w", err)
		}
		designRows = append(designRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read design rows: %w", err)
	}

	run.Table = models.NewDesignTable(attrs, designRows)
	return &run, nil
}

// SaveResponses stores a response run and all of its rows in one transaction.
func (s *SQLiteRunStore) SaveResponses(ctx context.Context, run *ResponseRun) error {
	if run == nil || run.Table == nil {
		return fmt.Errorf("response run has no table")
	}
	if run.ID == "" {
		run.ID = NewRunID("r")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM design_runs WHERE id = ?`, run.DesignID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check design run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("design %s: %w", run.DesignID, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response_runs (id, design_id, driver, seed, n_tasks, respondents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DesignID, run.Table.Driver(), run.Seed, run.Table.NumTasks(),
		run.Table.Len(), run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert response run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO response_rows (run_id, idx, respondent, version, choices)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range run.Table.Rows() {
		choices, err := json.Marshal(row.Choices)
		if err != nil {
			return fmt.Errorf("failed to encode respondent %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, row.RespondentID, row.Version, string(choices)); err != nil {
			return fmt.Errorf("failed to insert respondent %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetResponses loads a response run by ID. Returns ErrNotFound for unknown IDs.
func (s *SQLiteRunStore) GetResponses(ctx context.Context, id string) (*ResponseRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run       ResponseRun
		driver    string
		nTasks    int
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, design_id, driver, seed, n_tasks, created_at
		FROM response_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.DesignID, &driver, &run.Seed, &nTasks, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("simulation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query response run: %w", err)
	}
	run.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT respondent, version, choices
		FROM response_rows WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query response rows: %w", err)
	}
	defer rows.Close()

	var respRows []models.ResponseRow
	for rows.Next() {
		var (
			r       models.ResponseRow
			choices string
		)
		if err := rows.Scan(&r.RespondentID, &r.Version, &choices); err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}
		if err := json.Unmarshal([]byte(choices), &r.Choices); err != nil {
			return nil, fmt.Errorf("failed to decode choices: %w", err)
		}
		respRows = append(respRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read response rows: %w", err)
	}

	run.Table = models.NewResponseTable(driver, nTasks, respRows)
	return &run, nil
}

// ListRuns returns design and simulation runs, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, 'design', study, '', method, '', seed, row_count, created_at
		FROM design_runs
		UNION ALL
		SELECT r.id, 'simulation', d.study, r.design_id, '', r.driver, r.seed, r.respondents, r.created_at
		FROM response_runs r JOIN design_runs d ON d.id = r.design_id
		ORDER BY 9 DESC, 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum       RunSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Kind, &sum.Study, &sum.DesignID, &sum.Method,
			&sum.Driver, &sum.Seed, &sum.Rows, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.CreatedAt = parseTime(createdAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
