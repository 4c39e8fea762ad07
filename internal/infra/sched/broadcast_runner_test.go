package sched

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/usecase"
)

type mockBroadcastRepo struct {
	due   []*model.Broadcast
	saved []*model.Broadcast
}

func (m *mockBroadcastRepo) Save(ctx context.Context, tx repository.Tx, b *model.Broadcast) error {
	m.saved = append(m.saved, b)
	return nil
}
func (m *mockBroadcastRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Broadcast, error) {
	return nil, domain.ErrNotFound
}
func (m *mockBroadcastRepo) ListScheduled(ctx context.Context, tx repository.Tx) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *mockBroadcastRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Broadcast, error) {
	return m.due, nil
}
func (m *mockBroadcastRepo) ListHistory(ctx context.Context, tx repository.Tx, limit int) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *mockBroadcastRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.BroadcastStatus, sentAt *time.Time) error {
	return nil
}
func (m *mockBroadcastRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return nil
}

type runsUpdate struct {
	id      string
	lastRun *time.Time
	nextRun *time.Time
}

type mockRecurringRepo struct {
	active  []*model.RecurringBroadcast
	updates []runsUpdate
}

func (m *mockRecurringRepo) Save(ctx context.Context, tx repository.Tx, rb *model.RecurringBroadcast) error {
	return nil
}
func (m *mockRecurringRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecurringBroadcast, error) {
	return nil, domain.ErrNotFound
}
func (m *mockRecurringRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.RecurringBroadcast, error) {
	return m.active, nil
}
func (m *mockRecurringRepo) UpdateRuns(ctx context.Context, tx repository.Tx, id string, lastRun, nextRun *time.Time) error {
	m.updates = append(m.updates, runsUpdate{id: id, lastRun: lastRun, nextRun: nextRun})
	return nil
}
func (m *mockRecurringRepo) SoftDelete(ctx context.Context, tx repository.Tx, id string) error {
	return nil
}

type mockBroadcastUC struct {
	executed []*model.Broadcast
}

func (m *mockBroadcastUC) CreateFromDraft(ctx context.Context, adminID, chatID int64, draft model.BroadcastDraft) (*usecase.ConfirmResult, error) {
	return nil, nil
}
func (m *mockBroadcastUC) Execute(ctx context.Context, b *model.Broadcast) (usecase.DispatchStats, error) {
	m.executed = append(m.executed, b)
	return usecase.DispatchStats{Sent: 1}, nil
}
func (m *mockBroadcastUC) ListScheduled(ctx context.Context) ([]usecase.ScheduledItem, error) {
	return nil, nil
}
func (m *mockBroadcastUC) History(ctx context.Context, limit int) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *mockBroadcastUC) DeleteScheduled(ctx context.Context, id string) error { return nil }
func (m *mockBroadcastUC) DeleteRecurring(ctx context.Context, id string) error { return nil }

func newRunner(t *testing.T, broadcasts *mockBroadcastRepo, recurring *mockRecurringRepo, uc *mockBroadcastUC, now time.Time) *BroadcastRunner {
	t.Helper()
	log := zerolog.New(io.Discard)
	w := NewBroadcastRunner(time.Minute, broadcasts, recurring, uc, &log)
	w.now = func() time.Time { return now }
	return w
}

func mustRecurring(t *testing.T, cadence model.RecurringType, cronExpr string) *model.RecurringBroadcast {
	t.Helper()
	rb, err := model.NewRecurringBroadcast("", 1, "hello", model.SegmentAll, cadence, cronExpr)
	if err != nil {
		t.Fatalf("NewRecurringBroadcast: %v", err)
	}
	return rb
}

func TestTickExecutesDueBroadcasts(t *testing.T) {
	at := time.Now().Add(-time.Minute)
	b, err := model.NewBroadcast("", 1, "due now", model.SegmentAll, &at)
	if err != nil {
		t.Fatal(err)
	}
	broadcasts := &mockBroadcastRepo{due: []*model.Broadcast{b}}
	uc := &mockBroadcastUC{}

	w := newRunner(t, broadcasts, &mockRecurringRepo{}, uc, time.Now())
	w.Tick(context.Background())

	if len(uc.executed) != 1 || uc.executed[0].ID != b.ID {
		t.Fatalf("executed = %+v, want the due broadcast", uc.executed)
	}
}

func TestFirstSightingSeedsNextRunWithoutFiring(t *testing.T) {
	rb := mustRecurring(t, model.RecurringDaily, "")
	recurring := &mockRecurringRepo{active: []*model.RecurringBroadcast{rb}}
	uc := &mockBroadcastUC{}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	w := newRunner(t, &mockBroadcastRepo{}, recurring, uc, now)
	w.Tick(context.Background())

	if len(uc.executed) != 0 {
		t.Fatal("seeding pass must not fire")
	}
	if len(recurring.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(recurring.updates))
	}
	up := recurring.updates[0]
	if up.nextRun == nil || !up.nextRun.Equal(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("nextRun = %v, want today 12:00", up.nextRun)
	}
}

func TestDueRecurringFiresAndReschedules(t *testing.T) {
	rb := mustRecurring(t, model.RecurringDaily, "")
	past := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rb.NextRun = &past
	recurring := &mockRecurringRepo{active: []*model.RecurringBroadcast{rb}}
	broadcasts := &mockBroadcastRepo{}
	uc := &mockBroadcastUC{}
	now := time.Date(2026, 3, 10, 12, 3, 0, 0, time.UTC)

	w := newRunner(t, broadcasts, recurring, uc, now)
	w.Tick(context.Background())

	if len(broadcasts.saved) != 1 {
		t.Fatalf("saved = %d, want one materialized broadcast", len(broadcasts.saved))
	}
	if broadcasts.saved[0].Message != "hello" || broadcasts.saved[0].Segment != model.SegmentAll {
		t.Errorf("materialized broadcast mismatch: %+v", broadcasts.saved[0])
	}
	if len(uc.executed) != 1 {
		t.Fatalf("executed = %d, want 1", len(uc.executed))
	}
	if len(recurring.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(recurring.updates))
	}
	up := recurring.updates[0]
	if up.lastRun == nil || !up.lastRun.Equal(now) {
		t.Errorf("lastRun = %v, want tick time", up.lastRun)
	}
	if up.nextRun == nil || !up.nextRun.Equal(time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("nextRun = %v, want next day 12:00", up.nextRun)
	}
}

func TestFutureNextRunDoesNotFire(t *testing.T) {
	rb := mustRecurring(t, model.RecurringDaily, "")
	future := time.Now().Add(time.Hour)
	rb.NextRun = &future
	recurring := &mockRecurringRepo{active: []*model.RecurringBroadcast{rb}}
	uc := &mockBroadcastUC{}

	w := newRunner(t, &mockBroadcastRepo{}, recurring, uc, time.Now())
	w.Tick(context.Background())

	if len(uc.executed) != 0 || len(recurring.updates) != 0 {
		t.Fatal("nothing should happen before the slot")
	}
}

func TestUnparseableCronIsSkippedNotDeleted(t *testing.T) {
	rb := mustRecurring(t, model.RecurringCustom, "61 25 * * 9")
	past := time.Now().Add(-time.Hour)
	rb.NextRun = &past
	recurring := &mockRecurringRepo{active: []*model.RecurringBroadcast{rb}}
	uc := &mockBroadcastUC{}

	w := newRunner(t, &mockBroadcastRepo{}, recurring, uc, time.Now())
	w.Tick(context.Background())

	if len(uc.executed) != 0 {
		t.Fatal("unparseable cron must not fire")
	}
	if len(recurring.updates) != 0 {
		t.Fatal("unparseable cron must be left untouched")
	}
	if rb.Status != model.RecurringActive {
		t.Fatal("definition must stay active")
	}
}
