package adapter

import "context"

// RemoteCourse is a catalog entry as the remote course service reports it.
type RemoteCourse struct {
	ID          string
	Title       string
	PriceMinor  int64
	AccessLink  string
	Description string
}

// CourseCatalogAdapter is the port to the remote course-sales service.
type CourseCatalogAdapter interface {
	Ping(ctx context.Context) error
	ListCourses(ctx context.Context) ([]RemoteCourse, error)
	GrantAccess(ctx context.Context, courseID string, userID int64) error
	RevokeAccess(ctx context.Context, courseID string, userID int64) error
	CheckAccess(ctx context.Context, courseID string, userID int64) (bool, error)
	// CreateInvite returns a personal, short-lived access link.
	CreateInvite(ctx context.Context, courseID string, userID int64) (string, error)
}
