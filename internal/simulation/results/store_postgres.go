package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"
	txcontext "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresSchema creates the period_statistics table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS period_statistics (
	run_id            UUID    NOT NULL,
	period            INTEGER NOT NULL,
	submitted         INTEGER NOT NULL,
	approved          INTEGER NOT NULL,
	denied            INTEGER NOT NULL,
	escalated         INTEGER NOT NULL,
	capacity_exceeded INTEGER NOT NULL,
	fraud_attempted   INTEGER NOT NULL,
	errors_made       INTEGER NOT NULL,
	honest            INTEGER NOT NULL,
	routing_anomalies INTEGER NOT NULL,
	by_program        JSONB   NOT NULL DEFAULT '{}',
	recorded_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, period)
)`

const selectPeriodColumns = `
	period, submitted, approved, denied, escalated, capacity_exceeded,
	fraud_attempted, errors_made, honest, routing_anomalies, by_program`

// PostgresStore persists period statistics in PostgreSQL. Writes join a
// transaction carried in the context when one is present.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Migrate creates the table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create period_statistics: %w", err)
	}
	return nil
}

func (s *PostgresStore) SavePeriod(ctx context.Context, runID uuid.UUID, stats models.PeriodStatistics) error {
	byProgram, err := json.Marshal(programCounts(stats))
	if err != nil {
		return fmt.Errorf("marshal program counts: %w", err)
	}

	query := `
		INSERT INTO period_statistics (
			run_id, period, submitted, approved, denied, escalated, capacity_exceeded,
			fraud_attempted, errors_made, honest, routing_anomalies, by_program
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id, period) DO UPDATE SET
			submitted = EXCLUDED.submitted,
			approved = EXCLUDED.approved,
			denied = EXCLUDED.denied,
			escalated = EXCLUDED.escalated,
			capacity_exceeded = EXCLUDED.capacity_exceeded,
			fraud_attempted = EXCLUDED.fraud_attempted,
			errors_made = EXCLUDED.errors_made,
			honest = EXCLUDED.honest,
			routing_anomalies = EXCLUDED.routing_anomalies,
			by_program = EXCLUDED.by_program,
			recorded_at = now()
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		runID.String(),
		stats.Period,
		stats.Submitted,
		stats.Approved,
		stats.Denied,
		stats.Escalated,
		stats.CapacityExceeded,
		stats.FraudAttempted,
		stats.ErrorsMade,
		stats.Honest,
		stats.RoutingAnomalies,
		byProgram,
	)
	if err != nil {
		return fmt.Errorf("upsert period statistics: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPeriod(ctx context.Context, runID uuid.UUID, period int) (models.PeriodStatistics, error) {
	query := `SELECT ` + selectPeriodColumns + ` FROM period_statistics WHERE run_id = $1 AND period = $2`
	stats, err := scanPeriod(s.execer(ctx).QueryRowContext(ctx, query, runID.String(), period))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PeriodStatistics{}, sentinel.ErrNotFound
		}
		return models.PeriodStatistics{}, fmt.Errorf("find period statistics: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) ListPeriods(ctx context.Context, runID uuid.UUID) ([]models.PeriodStatistics, error) {
	query := `SELECT ` + selectPeriodColumns + ` FROM period_statistics WHERE run_id = $1 ORDER BY period`
	rows, err := s.execer(ctx).QueryContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list period statistics: %w", err)
	}
	defer rows.Close()

	var out []models.PeriodStatistics
	for rows.Next() {
		stats, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period statistics: %w", err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period statistics: %w", err)
	}
	if len(out) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (models.PeriodStatistics, error) {
	var (
		stats     models.PeriodStatistics
		byProgram []byte
	)
	err := row.Scan(
		&stats.Period,
		&stats.Submitted,
		&stats.Approved,
		&stats.Denied,
		&stats.Escalated,
		&stats.CapacityExceeded,
		&stats.FraudAttempted,
		&stats.ErrorsMade,
		&stats.Honest,
		&stats.RoutingAnomalies,
		&byProgram,
	)
	if err != nil {
		return models.PeriodStatistics{}, err
	}
	stats.ByProgram = make(map[models.Program]models.ProgramCounts)
	if len(byProgram) > 0 {
		if err := json.Unmarshal(byProgram, &stats.ByProgram); err != nil {
			return models.PeriodStatistics{}, fmt.Errorf("decode program counts: %w", err)
		}
	}
	return stats, nil
}

func programCounts(stats models.PeriodStatistics) map[models.Program]models.ProgramCounts {
	if stats.ByProgram == nil {
		return map[models.Program]models.ProgramCounts{}
	}
	return stats.ByProgram
}
