package model

import (
	"time"

	"telegram-agency-bot/internal/domain"
)

// User is a Telegram user known to the bot. Users are created on first
// contact and never deleted; blocking only flips a flag.
type User struct {
	TelegramID     int64
	Username       string
	JoinedAt       time.Time
	IsBlocked      bool
	LastActivityAt time.Time
}

func NewUser(tgID int64, username string) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		TelegramID:     tgID,
		Username:       username,
		JoinedAt:       now,
		LastActivityAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }

// Touch records an inbound interaction.
func (u *User) Touch() { u.LastActivityAt = time.Now() }
