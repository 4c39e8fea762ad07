package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.RecurringBroadcastRepository = (*RecurringRepo)(nil)

type RecurringRepo struct {
	pool *pgxpool.Pool
}

func NewRecurringRepo(pool *pgxpool.Pool) *RecurringRepo {
	return &RecurringRepo{pool: pool}
}

const recurringCols = `id, admin_id, message, segment, cadence, cron_expr, status, created_at, last_run, next_run`

func (r *RecurringRepo) Save(ctx context.Context, tx repository.Tx, rb *model.RecurringBroadcast) error {
	const q = `
INSERT INTO recurring_broadcasts (id, admin_id, message, segment, cadence, cron_expr, status, created_at, last_run, next_run)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  message=$3, segment=$4, cadence=$5, cron_expr=$6, status=$7, last_run=$9, next_run=$10;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, rb.ID, rb.AdminID, rb.Message, string(rb.Segment), string(rb.Cadence),
		rb.CronExpr, string(rb.Status), rb.CreatedAt, rb.LastRun, rb.NextRun)
	return err
}

func (r *RecurringRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecurringBroadcast, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanRecurring(ex.QueryRow(ctx, `SELECT `+recurringCols+` FROM recurring_broadcasts WHERE id=$1;`, id))
}

func (r *RecurringRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.RecurringBroadcast, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT `+recurringCols+` FROM recurring_broadcasts
 WHERE status='active' ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RecurringBroadcast
	for rows.Next() {
		rb, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (r *RecurringRepo) UpdateRuns(ctx context.Context, tx repository.Tx, id string, lastRun, nextRun *time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE recurring_broadcasts SET last_run=$2, next_run=$3 WHERE id=$1;`, id, lastRun, nextRun)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecurringRepo) SoftDelete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE recurring_broadcasts SET status='deleted' WHERE id=$1 AND status='active';`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRecurring(row pgx.Row) (*model.RecurringBroadcast, error) {
	var rb model.RecurringBroadcast
	var segment, cadence, status string
	if err := row.Scan(&rb.ID, &rb.AdminID, &rb.Message, &segment, &cadence, &rb.CronExpr,
		&status, &rb.CreatedAt, &rb.LastRun, &rb.NextRun); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rb.Segment = model.Segment(segment)
	rb.Cadence = model.RecurringType(cadence)
	rb.Status = model.RecurringStatus(status)
	return &rb, nil
}
