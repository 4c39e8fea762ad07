package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.DeliveryLogRepository = (*DeliveryLogRepo)(nil)

type DeliveryLogRepo struct {
	pool *pgxpool.Pool
}

func NewDeliveryLogRepo(pool *pgxpool.Pool) *DeliveryLogRepo {
	return &DeliveryLogRepo{pool: pool}
}

func (r *DeliveryLogRepo) Record(ctx context.Context, tx repository.Tx, rec *model.DeliveryRecord) error {
	const q = `
INSERT INTO broadcast_deliveries (id, broadcast_id, user_id, result, error, sent_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, rec.ID, rec.BroadcastID, rec.UserID, string(rec.Result), rec.Error, rec.SentAt)
	return err
}

func (r *DeliveryLogRepo) CountByResult(ctx context.Context, tx repository.Tx, broadcastID string) (map[model.DeliveryResult]int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT result, COUNT(*) FROM broadcast_deliveries
 WHERE broadcast_id=$1 GROUP BY result;`, broadcastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.DeliveryResult]int)
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		out[model.DeliveryResult(result)] = n
	}
	return out, rows.Err()
}
