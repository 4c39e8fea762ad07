package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// UserUseCase registers first-contact users and keeps activity timestamps
// fresh. Every inbound update flows through Touch so the inactive segment
// stays accurate.
type UserUseCase interface {
	// RegisterOrTouch creates the user on first contact and bumps activity
	// on every later one.
	RegisterOrTouch(ctx context.Context, tgID int64, username string) (*model.User, error)
	Find(ctx context.Context, tgID int64) (*model.User, error)
	// MarkBlocked flags users the platform reports as unreachable so
	// segments stop including them.
	MarkBlocked(ctx context.Context, tgID int64, blocked bool) error
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	Search(ctx context.Context, query string) ([]*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) UserUseCase {
	return &userUC{users: users, log: logger}
}

func (uc *userUC) RegisterOrTouch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	u, err := uc.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	switch {
	case err == nil:
		if terr := uc.users.TouchActivity(ctx, repository.NoTX, tgID); terr != nil {
			uc.log.Warn().Err(terr).Int64("tg_id", tgID).Msg("failed to touch activity")
		}
		u.LastActivityAt = time.Now()
		return u, nil
	case errors.Is(err, domain.ErrNotFound):
		u, err = model.NewUser(tgID, username)
		if err != nil {
			return nil, err
		}
		if err := uc.users.Save(ctx, repository.NoTX, u); err != nil {
			return nil, err
		}
		metrics.IncUsersRegistered()
		uc.log.Info().Int64("tg_id", tgID).Str("username", username).Msg("new user registered")
		return u, nil
	default:
		return nil, err
	}
}

func (uc *userUC) Find(ctx context.Context, tgID int64) (*model.User, error) {
	return uc.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (uc *userUC) MarkBlocked(ctx context.Context, tgID int64, blocked bool) error {
	return uc.users.SetBlocked(ctx, repository.NoTX, tgID, blocked)
}

func (uc *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.users.List(ctx, repository.NoTX, offset, limit)
}

func (uc *userUC) Search(ctx context.Context, query string) ([]*model.User, error) {
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.users.Search(ctx, repository.NoTX, query)
}
