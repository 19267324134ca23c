package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MRudenko/go-budget-sync/internal/utils"
	"github.com/MRudenko/go-budget-sync/migrations"
	"github.com/MRudenko/go-budget-sync/models"
)

const (
	insertCycle = `
		INSERT INTO cycles (id, started_at) VALUES (?, ?);`

	finishCycle = `
		UPDATE cycles SET finished_at = ?, failed_sync_ids = ? WHERE id = ?;`

	insertAttempt = `
		INSERT INTO attempts (
			cycle_id,
			sync_id,
			attempt_number,
			succeeded,
			error,
			recorded_at
		) VALUES (?, ?, ?, ?, ?, ?);`
)

type sqliteRecorder struct {
	db      *sql.DB
	uuidGen *utils.UUIDGenerator
}

// NewSQLiteRecorder opens (or creates) the journal database at path and
// applies the embedded schema migrations.
func NewSQLiteRecorder(path string) (Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if err = migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal db: %w", err)
	}

	return &sqliteRecorder{db: db, uuidGen: utils.NewUUIDGenerator()}, nil
}

func (r *sqliteRecorder) BeginCycle(ctx context.Context) (string, error) {
	cycleID := r.uuidGen.Generate()
	_, err := r.db.ExecContext(ctx, insertCycle, cycleID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert cycle: %w", err)
	}
	return cycleID, nil
}

func (r *sqliteRecorder) RecordAttempt(ctx context.Context, cycleID string, outcome models.SyncAttemptOutcome) error {
	var errText sql.NullString
	if outcome.Err != nil {
		errText = sql.NullString{String: outcome.Err.Error(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, insertAttempt,
		cycleID,
		outcome.SyncID,
		outcome.AttemptNumber,
		outcome.Succeeded,
		errText,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *sqliteRecorder) EndCycle(ctx context.Context, cycleID string, report models.CycleReport) error {
	_, err := r.db.ExecContext(ctx, finishCycle,
		time.Now().UTC().Format(time.RFC3339Nano),
		strings.Join(report.FailedSyncIDs, ","),
		cycleID,
	)
	if err != nil {
		return fmt.Errorf("finish cycle: %w", err)
	}
	return nil
}

func (r *sqliteRecorder) Close() error {
	return r.db.Close()
}
