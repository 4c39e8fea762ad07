package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (telegram_id, username, joined_at, is_blocked, last_activity_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (telegram_id) DO UPDATE SET
  username=$2, is_blocked=$4, last_activity_at=$5;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, u.TelegramID, u.Username, u.JoinedAt, u.IsBlocked, u.LastActivityAt)
	return err
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const q = `
SELECT telegram_id, username, joined_at, is_blocked, last_activity_at
  FROM users WHERE telegram_id=$1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := ex.QueryRow(ctx, q, tgID).Scan(&u.TelegramID, &u.Username, &u.JoinedAt, &u.IsBlocked, &u.LastActivityAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) TouchActivity(ctx context.Context, tx repository.Tx, tgID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE users SET last_activity_at=now() WHERE telegram_id=$1;`, tgID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, tx repository.Tx, tgID int64, blocked bool) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE users SET is_blocked=$2 WHERE telegram_id=$1;`, tgID, blocked)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	const q = `
SELECT telegram_id, username, joined_at, is_blocked, last_activity_at
  FROM users ORDER BY joined_at DESC OFFSET $1 LIMIT $2;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepo) Search(ctx context.Context, tx repository.Tx, query string) ([]*model.User, error) {
	const q = `
SELECT telegram_id, username, joined_at, is_blocked, last_activity_at
  FROM users
 WHERE username ILIKE '%' || $1 || '%' OR CAST(telegram_id AS TEXT) = $1
 ORDER BY joined_at DESC LIMIT 50;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepo) FindBySegment(ctx context.Context, tx repository.Tx, segment model.Segment, inactiveSince time.Time) ([]int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	switch segment {
	case model.SegmentAll:
		rows, err = ex.Query(ctx, `SELECT telegram_id FROM users WHERE NOT is_blocked;`)
	case model.SegmentBuyers:
		// Any purchase row counts, regardless of payment status.
		rows, err = ex.Query(ctx, `
SELECT DISTINCT u.telegram_id
  FROM users u JOIN purchases p ON p.user_id = u.telegram_id
 WHERE NOT u.is_blocked;`)
	case model.SegmentInactive:
		rows, err = ex.Query(ctx, `
SELECT telegram_id FROM users
 WHERE NOT is_blocked AND last_activity_at <= $1;`, inactiveSince)
	default:
		return nil, domain.ErrUnknownSegment
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM users;`)
}

func (r *UserRepo) CountJoinedSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM users WHERE joined_at >= $1;`, since)
}

func (r *UserRepo) CountActiveSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM users WHERE last_activity_at >= $1;`, since)
}

func (r *UserRepo) countWhere(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUsers(rows pgx.Rows) ([]*model.User, error) {
	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.TelegramID, &u.Username, &u.JoinedAt, &u.IsBlocked, &u.LastActivityAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
