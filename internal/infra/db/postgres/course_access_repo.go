package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.CourseAccessRepository = (*CourseAccessRepo)(nil)

type CourseAccessRepo struct {
	pool *pgxpool.Pool
}

func NewCourseAccessRepo(pool *pgxpool.Pool) *CourseAccessRepo {
	return &CourseAccessRepo{pool: pool}
}

func (r *CourseAccessRepo) Grant(ctx context.Context, tx repository.Tx, a *model.CourseAccess) error {
	const q = `
INSERT INTO course_access (id, user_id, course_id, granted_at, expires_at, is_active)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (user_id, course_id) DO UPDATE SET
  granted_at=$4, expires_at=$5, is_active=$6;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, a.ID, a.UserID, a.CourseID, a.GrantedAt, a.ExpiresAt, a.IsActive)
	return err
}

func (r *CourseAccessRepo) Find(ctx context.Context, tx repository.Tx, userID int64, courseID string) (*model.CourseAccess, error) {
	const q = `
SELECT id, user_id, course_id, granted_at, expires_at, is_active
  FROM course_access WHERE user_id=$1 AND course_id=$2;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.CourseAccess
	if err := ex.QueryRow(ctx, q, userID, courseID).Scan(&a.ID, &a.UserID, &a.CourseID, &a.GrantedAt, &a.ExpiresAt, &a.IsActive); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *CourseAccessRepo) Revoke(ctx context.Context, tx repository.Tx, userID int64, courseID string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE course_access SET is_active=false WHERE user_id=$1 AND course_id=$2;`, userID, courseID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
