package catalog

import (
	"context"
	"fmt"
	"sync"

	"telegram-agency-bot/internal/domain/ports/adapter"
)

var _ adapter.CourseCatalogAdapter = (*DemoCatalog)(nil)

// DemoCatalog serves a canned course list without network access. Grants
// are tracked in memory so the whole purchase flow can be exercised in dev
// mode.
type DemoCatalog struct {
	mu      sync.Mutex
	courses []adapter.RemoteCourse
	grants  map[string]struct{}
}

func NewDemoCatalog() *DemoCatalog {
	return &DemoCatalog{
		courses: []adapter.RemoteCourse{
			{ID: "demo-1", Title: "Telegram Bots from Scratch", PriceMinor: 490000, Description: "Build and ship your first bot."},
			{ID: "demo-2", Title: "Sales Funnels for Agencies", PriceMinor: 990000, Description: "Turn subscribers into clients."},
			{ID: "demo-3", Title: "Content That Converts", PriceMinor: 290000, Description: "Write posts people act on."},
		},
		grants: map[string]struct{}{},
	}
}

func (d *DemoCatalog) Ping(ctx context.Context) error { return nil }

func (d *DemoCatalog) ListCourses(ctx context.Context) ([]adapter.RemoteCourse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]adapter.RemoteCourse, len(d.courses))
	copy(out, d.courses)
	return out, nil
}

func (d *DemoCatalog) GrantAccess(ctx context.Context, courseID string, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grants[grantKey(courseID, userID)] = struct{}{}
	return nil
}

func (d *DemoCatalog) RevokeAccess(ctx context.Context, courseID string, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.grants, grantKey(courseID, userID))
	return nil
}

func (d *DemoCatalog) CheckAccess(ctx context.Context, courseID string, userID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.grants[grantKey(courseID, userID)]
	return ok, nil
}

func (d *DemoCatalog) CreateInvite(ctx context.Context, courseID string, userID int64) (string, error) {
	return fmt.Sprintf("https://demo.example.com/invite/%s/%d", courseID, userID), nil
}

func grantKey(courseID string, userID int64) string {
	return fmt.Sprintf("%s:%d", courseID, userID)
}
