package repository

import (
	"context"
	"time"

	"telegram-agency-bot/internal/domain/model"
)

type BroadcastRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Broadcast) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Broadcast, error)

	// ListScheduled returns pending broadcasts with a schedule time,
	// ascending by that time.
	ListScheduled(ctx context.Context, tx Tx) ([]*model.Broadcast, error)
	// ListDue returns pending broadcasts whose schedule time has passed.
	ListDue(ctx context.Context, tx Tx, now time.Time) ([]*model.Broadcast, error)
	// ListHistory returns sent and failed broadcasts, newest first.
	ListHistory(ctx context.Context, tx Tx, limit int) ([]*model.Broadcast, error)

	UpdateStatus(ctx context.Context, tx Tx, id string, status model.BroadcastStatus, sentAt *time.Time) error

	// Delete removes the row only while status is pending. Returns
	// domain.ErrNotDeletable otherwise.
	Delete(ctx context.Context, tx Tx, id string) error
}

type RecurringBroadcastRepository interface {
	Save(ctx context.Context, tx Tx, rb *model.RecurringBroadcast) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.RecurringBroadcast, error)

	// ListActive returns active definitions, newest first.
	ListActive(ctx context.Context, tx Tx) ([]*model.RecurringBroadcast, error)

	UpdateRuns(ctx context.Context, tx Tx, id string, lastRun, nextRun *time.Time) error

	// SoftDelete flips status to deleted; the row stays.
	SoftDelete(ctx context.Context, tx Tx, id string) error
}

type DeliveryLogRepository interface {
	Record(ctx context.Context, tx Tx, rec *model.DeliveryRecord) error
	CountByResult(ctx context.Context, tx Tx, broadcastID string) (map[model.DeliveryResult]int, error)
}
