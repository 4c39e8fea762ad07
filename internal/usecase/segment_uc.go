package usecase

import (
	"context"
	"time"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// SegmentUseCase resolves a named audience segment into the set of user ids
// that belong to it as of the call time. It is a pure read and safe to call
// repeatedly and concurrently.
type SegmentUseCase interface {
	Resolve(ctx context.Context, segment model.Segment) ([]int64, error)
	Count(ctx context.Context, segment model.Segment) (int, error)
}

type segmentUC struct {
	users         repository.UserRepository
	inactiveAfter time.Duration
	log           *zerolog.Logger
}

func NewSegmentUseCase(users repository.UserRepository, inactiveAfter time.Duration, logger *zerolog.Logger) SegmentUseCase {
	if inactiveAfter <= 0 {
		inactiveAfter = 7 * 24 * time.Hour
	}
	return &segmentUC{users: users, inactiveAfter: inactiveAfter, log: logger}
}

func (uc *segmentUC) Resolve(ctx context.Context, segment model.Segment) ([]int64, error) {
	if _, err := model.ParseSegment(string(segment)); err != nil {
		return nil, err
	}
	inactiveSince := time.Now().Add(-uc.inactiveAfter)
	ids, err := uc.users.FindBySegment(ctx, repository.NoTX, segment, inactiveSince)
	if err != nil {
		uc.log.Error().Err(err).Str("segment", string(segment)).Msg("segment resolution failed")
		return nil, err
	}
	metrics.SetSegmentSize(string(segment), len(ids))
	return ids, nil
}

func (uc *segmentUC) Count(ctx context.Context, segment model.Segment) (int, error) {
	ids, err := uc.Resolve(ctx, segment)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
