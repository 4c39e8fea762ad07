package model

import (
	"time"

	"telegram-agency-bot/internal/domain"

	"github.com/google/uuid"
)

// CourseAccess authorizes a user to consume a course, independent of any
// purchase (admins can grant for free). One row per (user, course).
type CourseAccess struct {
	ID        string
	UserID    int64
	CourseID  string
	GrantedAt time.Time
	ExpiresAt *time.Time // nil means permanent
	IsActive  bool
}

func NewCourseAccess(id string, userID int64, courseID string, expiresAt *time.Time) (*CourseAccess, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if userID <= 0 || courseID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &CourseAccess{
		ID:        id,
		UserID:    userID,
		CourseID:  courseID,
		GrantedAt: time.Now(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}, nil
}

// Valid reports whether the grant is usable at the given instant.
func (a *CourseAccess) Valid(now time.Time) bool {
	if a == nil || !a.IsActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
