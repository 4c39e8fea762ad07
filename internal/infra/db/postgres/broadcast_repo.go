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

var _ repository.BroadcastRepository = (*BroadcastRepo)(nil)

type BroadcastRepo struct {
	pool *pgxpool.Pool
}

func NewBroadcastRepo(pool *pgxpool.Pool) *BroadcastRepo {
	return &BroadcastRepo{pool: pool}
}

const broadcastCols = `id, title, message, media_file_id, segment, scheduled_at, status, created_by, created_at, sent_at`

func (r *BroadcastRepo) Save(ctx context.Context, tx repository.Tx, b *model.Broadcast) error {
	const q = `
INSERT INTO broadcasts (id, title, message, media_file_id, segment, scheduled_at, status, created_by, created_at, sent_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  title=$2, message=$3, media_file_id=$4, segment=$5, scheduled_at=$6, status=$7, sent_at=$10;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, b.ID, b.Title, b.Message, b.MediaFileID, string(b.Segment),
		b.ScheduledAt, string(b.Status), b.CreatedBy, b.CreatedAt, b.SentAt)
	return err
}

func (r *BroadcastRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Broadcast, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanBroadcast(ex.QueryRow(ctx, `SELECT `+broadcastCols+` FROM broadcasts WHERE id=$1;`, id))
}

func (r *BroadcastRepo) ListScheduled(ctx context.Context, tx repository.Tx) ([]*model.Broadcast, error) {
	return r.list(ctx, tx, `
SELECT `+broadcastCols+` FROM broadcasts
 WHERE status='pending' AND scheduled_at IS NOT NULL
 ORDER BY scheduled_at ASC;`)
}

func (r *BroadcastRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Broadcast, error) {
	return r.list(ctx, tx, `
SELECT `+broadcastCols+` FROM broadcasts
 WHERE status='pending' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
 ORDER BY scheduled_at ASC;`, now)
}

func (r *BroadcastRepo) ListHistory(ctx context.Context, tx repository.Tx, limit int) ([]*model.Broadcast, error) {
	return r.list(ctx, tx, `
SELECT `+broadcastCols+` FROM broadcasts
 WHERE status IN ('sent','failed')
 ORDER BY COALESCE(sent_at, created_at) DESC
 LIMIT $1;`, limit)
}

func (r *BroadcastRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.BroadcastStatus, sentAt *time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE broadcasts SET status=$2, sent_at=$3 WHERE id=$1;`, id, string(status), sentAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the broadcast only while it is still pending. A broadcast
// that already ran keeps its history row.
func (r *BroadcastRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `DELETE FROM broadcasts WHERE id=$1 AND status='pending';`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// Distinguish a missing row from a non-deletable one.
		var status string
		err := ex.QueryRow(ctx, `SELECT status FROM broadcasts WHERE id=$1;`, id).Scan(&status)
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrNotDeletable
	}
	return nil
}

func (r *BroadcastRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Broadcast, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBroadcast(row pgx.Row) (*model.Broadcast, error) {
	var b model.Broadcast
	var segment, status string
	if err := row.Scan(&b.ID, &b.Title, &b.Message, &b.MediaFileID, &segment, &b.ScheduledAt,
		&status, &b.CreatedBy, &b.CreatedAt, &b.SentAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.Segment = model.Segment(segment)
	b.Status = model.BroadcastStatus(status)
	return &b, nil
}
