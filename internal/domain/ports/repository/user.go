package repository

import (
	"context"
	"time"

	"telegram-agency-bot/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	// TouchActivity bumps last_activity without rewriting the row.
	TouchActivity(ctx context.Context, tx Tx, tgID int64) error
	SetBlocked(ctx context.Context, tx Tx, tgID int64, blocked bool) error

	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	Search(ctx context.Context, tx Tx, query string) ([]*model.User, error)

	// FindBySegment returns the ids of unblocked users in the segment as of
	// call time. inactiveSince applies to the inactive segment only.
	FindBySegment(ctx context.Context, tx Tx, segment model.Segment, inactiveSince time.Time) ([]int64, error)

	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountJoinedSince(ctx context.Context, tx Tx, since time.Time) (int, error)
	CountActiveSince(ctx context.Context, tx Tx, since time.Time) (int, error)
}
