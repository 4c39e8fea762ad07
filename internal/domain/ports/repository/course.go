package repository

import (
	"context"

	"telegram-agency-bot/internal/domain/model"
)

type CourseRepository interface {
	// Upsert saves by remote id so sync can run repeatedly.
	Upsert(ctx context.Context, tx Tx, c *model.Course) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
	FindByRemoteID(ctx context.Context, tx Tx, remoteID string) (*model.Course, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Course, error)
	CountCourses(ctx context.Context, tx Tx) (int, error)
}

type PurchaseRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Purchase) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Purchase, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus) error
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Purchase, error)

	CountPurchases(ctx context.Context, tx Tx) (int, error)
	CountBuyers(ctx context.Context, tx Tx) (int, error)
	CompletedRevenue(ctx context.Context, tx Tx) (int64, error)
}

type CourseAccessRepository interface {
	// Grant inserts or reactivates the single (user, course) row.
	Grant(ctx context.Context, tx Tx, a *model.CourseAccess) error
	Find(ctx context.Context, tx Tx, userID int64, courseID string) (*model.CourseAccess, error)
	Revoke(ctx context.Context, tx Tx, userID int64, courseID string) error
}
