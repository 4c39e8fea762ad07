package model

import (
	"time"

	"telegram-agency-bot/internal/domain"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Purchase links a user to a course. Once completed it is immutable except
// for the status transition recorded by MarkStatus.
type Purchase struct {
	ID          string
	UserID      int64
	CourseID    string
	AmountMinor int64
	Status      PaymentStatus
	ExternalRef string
	CreatedAt   time.Time
}

func NewPurchase(id string, userID int64, courseID string, amountMinor int64, externalRef string) (*Purchase, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if userID <= 0 || courseID == "" || amountMinor < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Purchase{
		ID:          id,
		UserID:      userID,
		CourseID:    courseID,
		AmountMinor: amountMinor,
		Status:      PaymentPending,
		ExternalRef: externalRef,
		CreatedAt:   time.Now(),
	}, nil
}

func (p *Purchase) MarkStatus(s PaymentStatus) error {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		p.Status = s
		return nil
	default:
		return domain.ErrInvalidArgument
	}
}
