package repository

import (
	"context"

	"telegram-agency-bot/internal/domain/model"
)

// WizardSessionRepository stores the broadcast wizard's per-administrator
// session, keyed by (admin id, chat id). Implementations enforce a TTL so a
// stale draft expires instead of lingering forever. Get on a missing or
// expired session returns domain.ErrNoSession.
type WizardSessionRepository interface {
	Get(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error)
	Set(ctx context.Context, sess *model.WizardSession) error
	Clear(ctx context.Context, adminID, chatID int64) error
}
