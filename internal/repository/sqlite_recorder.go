package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"CryptoSignal/internal/domain/models"
	domrepo "CryptoSignal/internal/domain/repository"
	applogger "CryptoSignal/pkg/logger"
)

// SQLiteRecorder keeps the history of generated reports. Headline columns
// are stored for querying and the full report as JSON.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, l *applogger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if l != nil {
		l.Info("sqlite recorder opened", applogger.String("path", dbPath))
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_reports (
			id            TEXT PRIMARY KEY,
			generated_at  INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			timeframe     TEXT,
			direction     TEXT,
			confidence    REAL,
			ml_prediction REAL,
			data_points   INTEGER,
			payload       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_symbol_ts ON signal_reports(symbol, generated_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, rep *models.SignalReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	var pred sql.NullFloat64
	if p, ok := rep.Ensemble.Ensemble(); ok {
		pred = sql.NullFloat64{Float64: p, Valid: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = r.db.ExecContext(ctx, `INSERT OR REPLACE INTO signal_reports
		(id, generated_at, symbol, timeframe, direction, confidence, ml_prediction, data_points, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.GeneratedAt.UnixMilli(), rep.Symbol, rep.Timeframe,
		string(rep.Recommendation.Direction), rep.Recommendation.Confidence, pred, rep.DataPoints, string(payload))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Recent returns up to limit reports for symbol, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, symbol string, limit int) ([]models.SignalReport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM signal_reports
		WHERE symbol = ? ORDER BY generated_at DESC, rowid DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []models.SignalReport
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var rep models.SignalReport
		if err := json.Unmarshal([]byte(payload), &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error { return r.db.Close() }

// NoopRecorder is used when no database path is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, *models.SignalReport) error { return nil }
func (NoopRecorder) Recent(context.Context, string, int) ([]models.SignalReport, error) {
	return nil, nil
}
func (NoopRecorder) Close() error { return nil }

var (
	_ domrepo.Recorder = (*SQLiteRecorder)(nil)
	_ domrepo.Recorder = NoopRecorder{}
)
