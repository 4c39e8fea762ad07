package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/session"
	"telegram-agency-bot/internal/infra/worker"
	"telegram-agency-bot/internal/usecase"
)

// Walks a broadcast through the whole wizard and fans it out to an
// in-memory audience, printing each delivery. No Telegram, Postgres, or
// Redis needed.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	users := newMemoryUsers(20)
	broadcasts := &memoryBroadcasts{}
	recurring := &memoryRecurring{}
	deliveries := &printingDeliveries{}
	bot := &printingBot{}

	pool := worker.NewPool(4, &logger)
	pool.Start(ctx)
	defer pool.Stop()

	dispatcher := usecase.NewDispatcher(bot, deliveries, pool, 10, &logger)
	segments := usecase.NewSegmentUseCase(users, 7*24*time.Hour, &logger)
	broadcastUC := usecase.NewBroadcastUseCase(broadcasts, recurring, segments, dispatcher, bot, &logger)
	wizard := usecase.NewWizardUseCase(session.NewMemoryStore(time.Hour), segments, broadcastUC, &logger)

	const adminID, chatID = 1, 1

	must := func(_ *model.WizardSession, err error) {
		if err != nil {
			log.Fatalf("wizard: %v", err)
		}
	}
	if _, err := wizard.Start(ctx, adminID, chatID); err != nil {
		log.Fatalf("start: %v", err)
	}
	must(wizard.SubmitMessage(ctx, adminID, chatID, "Hello from the demo broadcast!"))
	must(wizard.SelectAudience(ctx, adminID, chatID, "all"))
	must(wizard.SelectSchedule(ctx, adminID, chatID, usecase.ScheduleNow))

	res, err := wizard.Confirm(ctx, adminID, chatID)
	if err != nil {
		log.Fatalf("confirm: %v", err)
	}
	fmt.Printf("confirmed: %d recipients, broadcast %s\n", res.Recipients, res.BroadcastID)

	// The immediate path fans out asynchronously; give it a moment.
	time.Sleep(5 * time.Second)
	fmt.Printf("deliveries recorded: %d\n", deliveries.count)
}

// ---- in-memory plumbing ----

type memoryUsers struct {
	users []*model.User
}

func newMemoryUsers(n int) *memoryUsers {
	m := &memoryUsers{}
	for i := 0; i < n; i++ {
		u, _ := model.NewUser(int64(1000+i), fmt.Sprintf("demo_%02d", i))
		m.users = append(m.users, u)
	}
	return m
}

func (m *memoryUsers) Save(ctx context.Context, tx repository.Tx, u *model.User) error { return nil }
func (m *memoryUsers) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	for _, u := range m.users {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	return nil, nil
}
func (m *memoryUsers) TouchActivity(ctx context.Context, tx repository.Tx, tgID int64) error {
	return nil
}
func (m *memoryUsers) SetBlocked(ctx context.Context, tx repository.Tx, tgID int64, blocked bool) error {
	return nil
}
func (m *memoryUsers) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	return m.users, nil
}
func (m *memoryUsers) Search(ctx context.Context, tx repository.Tx, query string) ([]*model.User, error) {
	return nil, nil
}
func (m *memoryUsers) FindBySegment(ctx context.Context, tx repository.Tx, segment model.Segment, inactiveSince time.Time) ([]int64, error) {
	ids := make([]int64, 0, len(m.users))
	for _, u := range m.users {
		ids = append(ids, u.TelegramID)
	}
	return ids, nil
}
func (m *memoryUsers) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return len(m.users), nil
}
func (m *memoryUsers) CountJoinedSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return 0, nil
}
func (m *memoryUsers) CountActiveSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return 0, nil
}

type memoryBroadcasts struct {
	rows []*model.Broadcast
}

func (m *memoryBroadcasts) Save(ctx context.Context, tx repository.Tx, b *model.Broadcast) error {
	m.rows = append(m.rows, b)
	return nil
}
func (m *memoryBroadcasts) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Broadcast, error) {
	for _, b := range m.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}
func (m *memoryBroadcasts) ListScheduled(ctx context.Context, tx repository.Tx) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *memoryBroadcasts) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *memoryBroadcasts) ListHistory(ctx context.Context, tx repository.Tx, limit int) ([]*model.Broadcast, error) {
	return nil, nil
}
func (m *memoryBroadcasts) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.BroadcastStatus, sentAt *time.Time) error {
	fmt.Printf("broadcast %s -> %s\n", id, status)
	return nil
}
func (m *memoryBroadcasts) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return nil
}

type memoryRecurring struct{}

func (memoryRecurring) Save(ctx context.Context, tx repository.Tx, rb *model.RecurringBroadcast) error {
	return nil
}
func (memoryRecurring) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecurringBroadcast, error) {
	return nil, nil
}
func (memoryRecurring) ListActive(ctx context.Context, tx repository.Tx) ([]*model.RecurringBroadcast, error) {
	return nil, nil
}
func (memoryRecurring) UpdateRuns(ctx context.Context, tx repository.Tx, id string, lastRun, nextRun *time.Time) error {
	return nil
}
func (memoryRecurring) SoftDelete(ctx context.Context, tx repository.Tx, id string) error {
	return nil
}

type printingDeliveries struct {
	count int
}

func (p *printingDeliveries) Record(ctx context.Context, tx repository.Tx, rec *model.DeliveryRecord) error {
	p.count++
	fmt.Printf("  delivered to %d (%s)\n", rec.UserID, rec.Result)
	return nil
}
func (p *printingDeliveries) CountByResult(ctx context.Context, tx repository.Tx, broadcastID string) (map[model.DeliveryResult]int, error) {
	return nil, nil
}

type printingBot struct{}

func (printingBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	fmt.Printf("  -> %d: %s\n", chatID, text)
	return nil
}
func (printingBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return nil
}
func (printingBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	return nil
}
func (printingBot) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	return nil
}
