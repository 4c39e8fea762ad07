package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

const purchaseCols = `id, user_id, course_id, amount_minor, status, external_ref, created_at`

func (r *PurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	const q = `
INSERT INTO purchases (id, user_id, course_id, amount_minor, status, external_ref, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET status=$5, external_ref=$6;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, p.ID, p.UserID, p.CourseID, p.AmountMinor, string(p.Status), p.ExternalRef, p.CreatedAt)
	return err
}

func (r *PurchaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Purchase, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Purchase
	var status string
	err = ex.QueryRow(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE id=$1;`, id).
		Scan(&p.ID, &p.UserID, &p.CourseID, &p.AmountMinor, &status, &p.ExternalRef, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return &p, nil
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE purchases SET status=$2 WHERE id=$1;`, id, string(status))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Purchase, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE user_id=$1 ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Purchase
	for rows.Next() {
		var p model.Purchase
		var status string
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.AmountMinor, &status, &p.ExternalRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Status = model.PaymentStatus(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PurchaseRepo) CountPurchases(ctx context.Context, tx repository.Tx) (int, error) {
	return r.scanInt(ctx, tx, `SELECT COUNT(*) FROM purchases;`)
}

func (r *PurchaseRepo) CountBuyers(ctx context.Context, tx repository.Tx) (int, error) {
	return r.scanInt(ctx, tx, `SELECT COUNT(DISTINCT user_id) FROM purchases;`)
}

func (r *PurchaseRepo) CompletedRevenue(ctx context.Context, tx repository.Tx) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := ex.QueryRow(ctx, `SELECT COALESCE(SUM(amount_minor),0) FROM purchases WHERE status='completed';`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PurchaseRepo) scanInt(ctx context.Context, tx repository.Tx, q string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
