package model

import (
	"time"

	"telegram-agency-bot/internal/domain"

	"github.com/google/uuid"
)

// Course mirrors a catalog entry from the remote course service.
// Rows are created and updated by sync only; a course is never deleted,
// only deactivated.
type Course struct {
	ID          string
	RemoteID    string
	Title       string
	PriceMinor  int64 // minor currency units
	AccessLink  string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

func NewCourse(id, remoteID, title string, priceMinor int64) (*Course, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if remoteID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	if priceMinor < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Course{
		ID:         id,
		RemoteID:   remoteID,
		Title:      title,
		PriceMinor: priceMinor,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}, nil
}
