package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"treasurehunt/pkg/common"
)

var ErrRunNotFound = errors.New("storage: run not found")

// RunRecord 是一次搜索的持久化形式
type RunRecord struct {
	ID          string
	Params      common.HuntParams
	StartedAt   time.Time
	Duration    time.Duration
	Found       int
	Discoveries []common.Discovery
}

type History interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	// ListRuns returns the newest runs first, without their discoveries.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
	Truncate(ctx context.Context) error
	Close() error
}

type SQLiteHistory struct {
	db          *sql.DB
	mu          sync.Mutex
	journalMode string
}

var _ History = (*SQLiteHistory)(nil)

func OpenSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			regions INTEGER NOT NULL,
			groups_count INTEGER NOT NULL,
			treasures INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			found INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS discoveries (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			region INTEGER NOT NULL,
			group_id INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS runs_started ON runs (started_at)`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	// 与单写多读的访问模式匹配；不支持 WAL 的库（如 :memory:）会返回实际模式
	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode = WAL`).Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}

	return &SQLiteHistory{db: db, journalMode: mode}, nil
}

// JournalMode is the SQLite journal mode in effect after open ("wal" for file databases).
func (s *SQLiteHistory) JournalMode() string {
	return s.journalMode
}

// SaveRun writes the run and all its discoveries in one transaction.
func (s *SQLiteHistory) SaveRun(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, regions, groups_count, treasures, seed, started_at, duration_ns, found)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Params.Regions, rec.Params.Groups, rec.Params.Treasures, rec.Params.Seed,
		rec.StartedAt.UnixNano(), int64(rec.Duration), len(rec.Discoveries))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO discoveries (run_id, seq, region, group_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, d := range rec.Discoveries {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, d.Region, int(d.Group)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert discovery: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteHistory) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, regions, groups_count, treasures, seed, started_at, duration_ns, found FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT region, group_id FROM discoveries WHERE run_id = ? ORDER BY seq ASC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec.Discoveries = make([]common.Discovery, 0, rec.Found)
	for rows.Next() {
		var region, group int
		if err := rows.Scan(&region, &group); err != nil {
			return nil, err
		}
		rec.Discoveries = append(rec.Discoveries, common.Discovery{Region: region, Group: common.GroupID(group)})
	}
	return rec, rows.Err()
}

func (s *SQLiteHistory) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, regions, groups_count, treasures, seed, started_at, duration_ns, found
		 FROM runs ORDER BY started_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteHistory) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM discoveries"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	return err
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*RunRecord, error) {
	var (
		rec              RunRecord
		startedAt, durNs int64
	)
	err := r.Scan(&rec.ID, &rec.Params.Regions, &rec.Params.Groups, &rec.Params.Treasures,
		&rec.Params.Seed, &startedAt, &durNs, &rec.Found)
	if err != nil {
		return nil, err
	}
	rec.StartedAt = time.Unix(0, startedAt)
	rec.Duration = time.Duration(durNs)
	return &rec, nil
}
