//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/worker"
	"telegram-agency-bot/internal/usecase"
)

type broadcastFixture struct {
	uc         usecase.BroadcastUseCase
	broadcasts *MockBroadcastRepo
	recurring  *MockRecurringRepo
	users      *MockUserRepo
	deliveries *MockDeliveryLog
	bot        *MockTelegramBot
}

func newBroadcastFixture(t *testing.T, ctx context.Context, userIDs ...int64) *broadcastFixture {
	t.Helper()
	logger := newTestLogger()

	users := NewMockUserRepo()
	for _, id := range userIDs {
		u, _ := model.NewUser(id, "user")
		_ = users.Save(ctx, repository.NoTX, u)
	}

	broadcasts := NewMockBroadcastRepo()
	recurring := NewMockRecurringRepo()
	deliveries := &MockDeliveryLog{}
	bot := &MockTelegramBot{}

	pool := worker.NewPool(2, logger)
	pool.Start(ctx)
	t.Cleanup(pool.Stop)

	segments := usecase.NewSegmentUseCase(users, 7*24*time.Hour, logger)
	dispatcher := usecase.NewDispatcher(bot, deliveries, pool, 200, logger)
	uc := usecase.NewBroadcastUseCase(broadcasts, recurring, segments, dispatcher, bot, logger)

	return &broadcastFixture{
		uc:         uc,
		broadcasts: broadcasts,
		recurring:  recurring,
		users:      users,
		deliveries: deliveries,
		bot:        bot,
	}
}

func TestExecuteRecordsEveryRecipient(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 201, 202, 203, 204)

	// One recipient has blocked the bot, one hits the platform rate limit.
	f.bot.SendMessageFunc = func(ctx context.Context, chatID int64, text string) error {
		switch chatID {
		case 202:
			return errors.New("Forbidden: bot was blocked by the user")
		case 204:
			return errors.New("Too Many Requests: retry after 5")
		default:
			return nil
		}
	}

	b, err := model.NewBroadcast("", 1, "hello", model.SegmentAll, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.broadcasts.Save(ctx, repository.NoTX, b); err != nil {
		t.Fatal(err)
	}

	stats, err := f.uc.Execute(ctx, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stats.Sent != 2 || stats.Blocked != 1 || stats.RateLimited != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}

	counts, _ := f.deliveries.CountByResult(ctx, repository.NoTX, b.ID)
	if counts[model.DeliverySent] != 2 || counts[model.DeliveryBlocked] != 1 || counts[model.DeliveryRateLimited] != 1 {
		t.Errorf("delivery log = %v", counts)
	}

	got, _ := f.broadcasts.FindByID(ctx, repository.NoTX, b.ID)
	if got.Status != model.BroadcastSent || got.SentAt == nil {
		t.Errorf("broadcast status = %s, sentAt = %v", got.Status, got.SentAt)
	}
}

func TestExecuteMarksFailedWhenNothingDelivered(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 301, 302)

	f.bot.SendMessageFunc = func(ctx context.Context, chatID int64, text string) error {
		return errors.New("Bad Gateway")
	}

	b, _ := model.NewBroadcast("", 1, "hello", model.SegmentAll, nil)
	_ = f.broadcasts.Save(ctx, repository.NoTX, b)

	stats, err := f.uc.Execute(ctx, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stats.Failed != 2 {
		t.Errorf("stats = %+v", stats)
	}
	got, _ := f.broadcasts.FindByID(ctx, repository.NoTX, b.ID)
	if got.Status != model.BroadcastFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestListScheduledSharedOrdinals(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 401)

	// Two one-shot broadcasts, deliberately saved out of schedule order.
	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)
	b2, _ := model.NewBroadcast("", 1, "second", model.SegmentAll, &later)
	b1, _ := model.NewBroadcast("", 1, "first", model.SegmentAll, &sooner)
	_ = f.broadcasts.Save(ctx, repository.NoTX, b2)
	_ = f.broadcasts.Save(ctx, repository.NoTX, b1)

	// Two recurring definitions; the newest lists first.
	r1, _ := model.NewRecurringBroadcast("", 1, "old recurring", model.SegmentAll, model.RecurringDaily, "")
	_ = f.recurring.Save(ctx, repository.NoTX, r1)
	r2, _ := model.NewRecurringBroadcast("", 1, "new recurring", model.SegmentAll, model.RecurringWeekly, "")
	_ = f.recurring.Save(ctx, repository.NoTX, r2)

	items, err := f.uc.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("ListScheduled: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}
	for i, it := range items {
		if it.Ordinal != i+1 {
			t.Errorf("item %d ordinal = %d", i, it.Ordinal)
		}
	}
	if items[0].Broadcast == nil || items[0].Broadcast.Message != "first" {
		t.Errorf("item 1 = %+v, want soonest one-shot", items[0])
	}
	if items[1].Broadcast == nil || items[1].Broadcast.Message != "second" {
		t.Errorf("item 2 = %+v", items[1])
	}
	if items[2].Recurring == nil || items[2].Recurring.Message != "new recurring" {
		t.Errorf("item 3 = %+v, want newest recurring", items[2])
	}
	if items[3].Recurring == nil || items[3].Recurring.Message != "old recurring" {
		t.Errorf("item 4 = %+v", items[3])
	}
}

func TestDeleteScheduledOnlyWhilePending(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 501)

	at := time.Now().Add(time.Hour)
	b, _ := model.NewBroadcast("", 1, "doomed", model.SegmentAll, &at)
	_ = f.broadcasts.Save(ctx, repository.NoTX, b)

	if err := f.uc.DeleteScheduled(ctx, b.ID); err != nil {
		t.Fatalf("DeleteScheduled: %v", err)
	}
	if _, err := f.broadcasts.FindByID(ctx, repository.NoTX, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("row survives hard delete: %v", err)
	}

	// A sent broadcast refuses deletion.
	b2, _ := model.NewBroadcast("", 1, "done", model.SegmentAll, &at)
	_ = f.broadcasts.Save(ctx, repository.NoTX, b2)
	now := time.Now()
	_ = f.broadcasts.UpdateStatus(ctx, repository.NoTX, b2.ID, model.BroadcastSent, &now)

	if err := f.uc.DeleteScheduled(ctx, b2.ID); !errors.Is(err, domain.ErrNotDeletable) {
		t.Errorf("expected ErrNotDeletable, got %v", err)
	}
}

func TestDeleteRecurringIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 601)

	rb, _ := model.NewRecurringBroadcast("", 1, "digest", model.SegmentAll, model.RecurringDaily, "")
	_ = f.recurring.Save(ctx, repository.NoTX, rb)

	if err := f.uc.DeleteRecurring(ctx, rb.ID); err != nil {
		t.Fatalf("DeleteRecurring: %v", err)
	}

	// Row remains but is excluded from the active listing.
	got, err := f.recurring.FindByID(ctx, repository.NoTX, rb.ID)
	if err != nil {
		t.Fatalf("row removed by soft delete: %v", err)
	}
	if got.Status != model.RecurringDeleted {
		t.Errorf("status = %s, want deleted", got.Status)
	}
	active, _ := f.recurring.ListActive(ctx, repository.NoTX)
	if len(active) != 0 {
		t.Errorf("deleted definition still listed: %d", len(active))
	}
}

func TestCreateFromDraftValidation(t *testing.T) {
	ctx := context.Background()
	f := newBroadcastFixture(t, ctx, 701)

	_, err := f.uc.CreateFromDraft(ctx, 1, 1, model.BroadcastDraft{
		Segment:      model.SegmentAll,
		ScheduleType: model.ScheduleImmediate,
	})
	if !errors.Is(err, domain.ErrEmptyMessage) {
		t.Errorf("empty message: %v", err)
	}

	_, err = f.uc.CreateFromDraft(ctx, 1, 1, model.BroadcastDraft{
		MessageText:  "hi",
		Segment:      "vip",
		ScheduleType: model.ScheduleImmediate,
	})
	if !errors.Is(err, domain.ErrUnknownSegment) {
		t.Errorf("unknown segment: %v", err)
	}

	_, err = f.uc.CreateFromDraft(ctx, 1, 1, model.BroadcastDraft{
		MessageText:  "hi",
		Segment:      model.SegmentAll,
		ScheduleType: model.ScheduleScheduled, // but no instant
	})
	if !errors.Is(err, domain.ErrBadDateTime) {
		t.Errorf("missing schedule instant: %v", err)
	}
}

func TestDispatchHoldsRateCeiling(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	var userIDs []int64
	users := NewMockUserRepo()
	for i := int64(1); i <= 10; i++ {
		u, _ := model.NewUser(1000+i, fmt.Sprintf("u%d", i))
		_ = users.Save(ctx, repository.NoTX, u)
		userIDs = append(userIDs, 1000+i)
	}

	bot := &MockTelegramBot{}
	deliveries := &MockDeliveryLog{}
	pool := worker.NewPool(4, logger)
	pool.Start(ctx)
	t.Cleanup(pool.Stop)

	// 10 messages at 100/s needs at least ~90ms of ticker waits.
	dispatcher := usecase.NewDispatcher(bot, deliveries, pool, 100, logger)
	b, _ := model.NewBroadcast("", 1, "throttled", model.SegmentAll, nil)

	start := time.Now()
	stats := dispatcher.Dispatch(ctx, b, userIDs)
	elapsed := time.Since(start)

	if stats.Sent != 10 {
		t.Fatalf("sent = %d, want 10", stats.Sent)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("fan-out of 10 at 100/s finished in %v, throttle not applied", elapsed)
	}
	if len(deliveries.Records) != 10 {
		t.Errorf("delivery records = %d, want 10", len(deliveries.Records))
	}
}
