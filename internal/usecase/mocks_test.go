//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger so test output stays clean.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type sentMessage struct {
	ChatID int64
	Text   string
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendMessageFunc func(ctx context.Context, chatID int64, text string) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *MockTelegramBot) SentTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			out = append(out, s.Text)
		}
	}
	return out
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return m.SendMessage(ctx, chatID, text)
}

func (m *MockTelegramBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	return m.SendMessage(ctx, chatID, text)
}

func (m *MockTelegramBot) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	return nil
}

// ---- Mock CourseCatalogAdapter ----

type MockCatalog struct {
	mu sync.Mutex

	Courses []adapter.RemoteCourse

	ListCoursesFunc  func(ctx context.Context) ([]adapter.RemoteCourse, error)
	GrantAccessFunc  func(ctx context.Context, courseID string, userID int64) error
	CheckAccessFunc  func(ctx context.Context, courseID string, userID int64) (bool, error)
	CreateInviteFunc func(ctx context.Context, courseID string, userID int64) (string, error)

	Grants  []string // "courseID:userID"
	Revokes []string
}

var _ adapter.CourseCatalogAdapter = (*MockCatalog)(nil)

func (m *MockCatalog) Ping(ctx context.Context) error { return nil }

func (m *MockCatalog) ListCourses(ctx context.Context) ([]adapter.RemoteCourse, error) {
	if m.ListCoursesFunc != nil {
		return m.ListCoursesFunc(ctx)
	}
	return m.Courses, nil
}

func (m *MockCatalog) GrantAccess(ctx context.Context, courseID string, userID int64) error {
	if m.GrantAccessFunc != nil {
		return m.GrantAccessFunc(ctx, courseID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Grants = append(m.Grants, courseID)
	return nil
}

func (m *MockCatalog) RevokeAccess(ctx context.Context, courseID string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Revokes = append(m.Revokes, courseID)
	return nil
}

func (m *MockCatalog) CheckAccess(ctx context.Context, courseID string, userID int64) (bool, error) {
	if m.CheckAccessFunc != nil {
		return m.CheckAccessFunc(ctx, courseID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.Grants {
		if g == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCatalog) CreateInvite(ctx context.Context, courseID string, userID int64) (string, error) {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, courseID, userID)
	}
	return "https://t.me/+invite-" + courseID, nil
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	store map[int64]*model.User

	SaveErr         error
	FindBySegmentFn func(ctx context.Context, tx repository.Tx, segment model.Segment, inactiveSince time.Time) ([]int64, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[int64]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) TouchActivity(ctx context.Context, tx repository.Tx, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.LastActivityAt = time.Now()
	}
	return nil
}

func (m *MockUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, tgID int64, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.IsBlocked = blocked
	}
	return nil
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserRepo) Search(ctx context.Context, tx repository.Tx, query string) ([]*model.User, error) {
	return m.List(ctx, tx, 0, 0)
}

func (m *MockUserRepo) FindBySegment(ctx context.Context, tx repository.Tx, segment model.Segment, inactiveSince time.Time) ([]int64, error) {
	if m.FindBySegmentFn != nil {
		return m.FindBySegmentFn(ctx, tx, segment, inactiveSince)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, u := range m.store {
		if u.IsBlocked {
			continue
		}
		if segment == model.SegmentInactive && u.LastActivityAt.After(inactiveSince) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

func (m *MockUserRepo) CountJoinedSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.store {
		if !u.JoinedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MockUserRepo) CountActiveSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.store {
		if !u.LastActivityAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ---- Mock BroadcastRepository ----

type MockBroadcastRepo struct {
	mu    sync.Mutex
	store map[string]*model.Broadcast

	SaveErr error
}

var _ repository.BroadcastRepository = (*MockBroadcastRepo)(nil)

func NewMockBroadcastRepo() *MockBroadcastRepo {
	return &MockBroadcastRepo{store: make(map[string]*model.Broadcast)}
}

func (m *MockBroadcastRepo) Save(ctx context.Context, tx repository.Tx, b *model.Broadcast) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *MockBroadcastRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBroadcastRepo) ListScheduled(ctx context.Context, tx repository.Tx) ([]*model.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Broadcast
	for _, b := range m.store {
		if b.Status == model.BroadcastPending && b.ScheduledAt != nil {
			cp := *b
			out = append(out, &cp)
		}
	}
	sortBroadcastsBySchedule(out)
	return out, nil
}

func (m *MockBroadcastRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Broadcast
	for _, b := range m.store {
		if b.Status == model.BroadcastPending && b.ScheduledAt != nil && !b.ScheduledAt.After(now) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockBroadcastRepo) ListHistory(ctx context.Context, tx repository.Tx, limit int) ([]*model.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Broadcast
	for _, b := range m.store {
		if b.Status == model.BroadcastSent || b.Status == model.BroadcastFailed {
			cp := *b
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockBroadcastRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.BroadcastStatus, sentAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	b.SentAt = sentAt
	return nil
}

func (m *MockBroadcastRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Status != model.BroadcastPending {
		return domain.ErrNotDeletable
	}
	delete(m.store, id)
	return nil
}

func sortBroadcastsBySchedule(bs []*model.Broadcast) {
	for i := 1; i < len(bs); i++ {
		for j := i; j > 0 && bs[j].ScheduledAt.Before(*bs[j-1].ScheduledAt); j-- {
			bs[j], bs[j-1] = bs[j-1], bs[j]
		}
	}
}

// ---- Mock RecurringBroadcastRepository ----

type MockRecurringRepo struct {
	mu    sync.Mutex
	store map[string]*model.RecurringBroadcast
	order []string // insertion order, newest appended last
}

var _ repository.RecurringBroadcastRepository = (*MockRecurringRepo)(nil)

func NewMockRecurringRepo() *MockRecurringRepo {
	return &MockRecurringRepo{store: make(map[string]*model.RecurringBroadcast)}
}

func (m *MockRecurringRepo) Save(ctx context.Context, tx repository.Tx, rb *model.RecurringBroadcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[rb.ID]; !ok {
		m.order = append(m.order, rb.ID)
	}
	cp := *rb
	m.store[rb.ID] = &cp
	return nil
}

func (m *MockRecurringRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.RecurringBroadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rb, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rb
	return &cp, nil
}

func (m *MockRecurringRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.RecurringBroadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.RecurringBroadcast
	for i := len(m.order) - 1; i >= 0; i-- {
		rb := m.store[m.order[i]]
		if rb.Status == model.RecurringActive {
			cp := *rb
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRecurringRepo) UpdateRuns(ctx context.Context, tx repository.Tx, id string, lastRun, nextRun *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rb, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	rb.LastRun = lastRun
	rb.NextRun = nextRun
	return nil
}

func (m *MockRecurringRepo) SoftDelete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rb, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	rb.Status = model.RecurringDeleted
	return nil
}

// ---- Mock DeliveryLogRepository ----

type MockDeliveryLog struct {
	mu      sync.Mutex
	Records []model.DeliveryRecord
}

var _ repository.DeliveryLogRepository = (*MockDeliveryLog)(nil)

func (m *MockDeliveryLog) Record(ctx context.Context, tx repository.Tx, rec *model.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MockDeliveryLog) CountByResult(ctx context.Context, tx repository.Tx, broadcastID string) (map[model.DeliveryResult]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.DeliveryResult]int)
	for _, r := range m.Records {
		if r.BroadcastID == broadcastID {
			out[r.Result]++
		}
	}
	return out, nil
}

// ---- Mock CourseRepository ----

type MockCourseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Course
}

var _ repository.CourseRepository = (*MockCourseRepo)(nil)

func NewMockCourseRepo() *MockCourseRepo {
	return &MockCourseRepo{store: make(map[string]*model.Course)}
}

func (m *MockCourseRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.RemoteID == c.RemoteID {
			existing.Title = c.Title
			existing.PriceMinor = c.PriceMinor
			existing.AccessLink = c.AccessLink
			existing.Description = c.Description
			existing.IsActive = c.IsActive
			return nil
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCourseRepo) FindByRemoteID(ctx context.Context, tx repository.Tx, remoteID string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.RemoteID == remoteID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCourseRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Course
	for _, c := range m.store {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCourseRepo) CountCourses(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

// ---- Mock PurchaseRepository ----

type MockPurchaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Purchase
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{store: make(map[string]*model.Purchase)}
}

func (m *MockPurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPurchaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPurchaseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *MockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPurchaseRepo) CountPurchases(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

func (m *MockPurchaseRepo) CountBuyers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]bool)
	for _, p := range m.store {
		seen[p.UserID] = true
	}
	return len(seen), nil
}

func (m *MockPurchaseRepo) CompletedRevenue(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, p := range m.store {
		if p.Status == model.PaymentCompleted {
			total += p.AmountMinor
		}
	}
	return total, nil
}

// ---- Mock CourseAccessRepository ----

type MockAccessRepo struct {
	mu    sync.Mutex
	store map[string]*model.CourseAccess // key userID:courseID
}

var _ repository.CourseAccessRepository = (*MockAccessRepo)(nil)

func NewMockAccessRepo() *MockAccessRepo {
	return &MockAccessRepo{store: make(map[string]*model.CourseAccess)}
}

func accessKey(userID int64, courseID string) string {
	return fmt.Sprintf("%s:%d", courseID, userID)
}

func (m *MockAccessRepo) Grant(ctx context.Context, tx repository.Tx, a *model.CourseAccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[accessKey(a.UserID, a.CourseID)] = &cp
	return nil
}

func (m *MockAccessRepo) Find(ctx context.Context, tx repository.Tx, userID int64, courseID string) (*model.CourseAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[accessKey(userID, courseID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAccessRepo) Revoke(ctx context.Context, tx repository.Tx, userID int64, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[accessKey(userID, courseID)]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsActive = false
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn with a nil handle; the mock repositories ignore it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}
