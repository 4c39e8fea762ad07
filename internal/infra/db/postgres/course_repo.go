package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.CourseRepository = (*CourseRepo)(nil)

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

const courseCols = `id, remote_id, title, price_minor, access_link, description, is_active, created_at`

func (r *CourseRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.Course) error {
	const q = `
INSERT INTO courses (id, remote_id, title, price_minor, access_link, description, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (remote_id) DO UPDATE SET
  title=$3, price_minor=$4, access_link=$5, description=$6, is_active=$7;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, c.ID, c.RemoteID, c.Title, c.PriceMinor, c.AccessLink, c.Description, c.IsActive, c.CreatedAt)
	return err
}

func (r *CourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	return r.findWhere(ctx, tx, `SELECT `+courseCols+` FROM courses WHERE id=$1;`, id)
}

func (r *CourseRepo) FindByRemoteID(ctx context.Context, tx repository.Tx, remoteID string) (*model.Course, error) {
	return r.findWhere(ctx, tx, `SELECT `+courseCols+` FROM courses WHERE remote_id=$1;`, remoteID)
}

func (r *CourseRepo) findWhere(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Course, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var c model.Course
	if err := ex.QueryRow(ctx, q, arg).Scan(&c.ID, &c.RemoteID, &c.Title, &c.PriceMinor, &c.AccessLink, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Course, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+courseCols+` FROM courses WHERE is_active ORDER BY created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.RemoteID, &c.Title, &c.PriceMinor, &c.AccessLink, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CourseRepo) CountCourses(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM courses;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
