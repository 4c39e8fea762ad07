package model

import (
	"strings"
	"time"

	"telegram-agency-bot/internal/domain"

	"github.com/google/uuid"
)

// Segment names a rule partitioning users into a recipient set.
type Segment string

const (
	SegmentAll      Segment = "all"
	SegmentBuyers   Segment = "buyers"
	SegmentInactive Segment = "inactive"
)

func ParseSegment(s string) (Segment, error) {
	switch Segment(s) {
	case SegmentAll, SegmentBuyers, SegmentInactive:
		return Segment(s), nil
	default:
		return "", domain.ErrUnknownSegment
	}
}

func (s Segment) DisplayName() string {
	switch s {
	case SegmentAll:
		return "All users"
	case SegmentBuyers:
		return "Course buyers"
	case SegmentInactive:
		return "Inactive users"
	default:
		return string(s)
	}
}

type ScheduleType string

const (
	ScheduleImmediate ScheduleType = "immediate"
	ScheduleScheduled ScheduleType = "scheduled"
	ScheduleRecurring ScheduleType = "recurring"
)

// RecurringType is the cadence label attached to a recurring broadcast.
type RecurringType string

const (
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
	RecurringCustom  RecurringType = "custom"
)

// CanonicalCron returns the cron expression attached to the standard
// cadences. Custom cadences carry their own expression.
func (r RecurringType) CanonicalCron() (string, bool) {
	switch r {
	case RecurringDaily:
		return "0 12 * * *", true
	case RecurringWeekly:
		return "0 12 * * 1", true
	case RecurringMonthly:
		return "0 12 1 * *", true
	default:
		return "", false
	}
}

func (r RecurringType) DisplayName() string {
	switch r {
	case RecurringDaily:
		return "Daily at 12:00"
	case RecurringWeekly:
		return "Weekly on Monday at 12:00"
	case RecurringMonthly:
		return "Monthly on the 1st at 12:00"
	case RecurringCustom:
		return "Custom schedule"
	default:
		return string(r)
	}
}

type BroadcastStatus string

const (
	BroadcastStatusDraft BroadcastStatus = "draft"
	BroadcastPending     BroadcastStatus = "pending"
	BroadcastSent        BroadcastStatus = "sent"
	BroadcastFailed      BroadcastStatus = "failed"
)

// Broadcast is a persisted one-shot broadcast: either immediate
// (ScheduledAt nil) or planned for a single future instant.
type Broadcast struct {
	ID          string
	Title       string
	Message     string
	MediaFileID string
	Segment     Segment
	ScheduledAt *time.Time
	Status      BroadcastStatus
	CreatedBy   int64
	CreatedAt   time.Time
	SentAt      *time.Time
}

func NewBroadcast(id string, createdBy int64, message string, segment Segment, scheduledAt *time.Time) (*Broadcast, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if createdBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if _, err := ParseSegment(string(segment)); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Broadcast{
		ID:          id,
		Title:       "Broadcast " + now.Format("02.01.2006 15:04"),
		Message:     message,
		Segment:     segment,
		ScheduledAt: scheduledAt,
		Status:      BroadcastPending,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}

// MarkSent records fan-out completion. A broadcast is never marked sent
// before every recipient has been attempted.
func (b *Broadcast) MarkSent(at time.Time) {
	b.Status = BroadcastSent
	b.SentAt = &at
}

func (b *Broadcast) MarkFailed() { b.Status = BroadcastFailed }

type RecurringStatus string

const (
	RecurringActive  RecurringStatus = "active"
	RecurringDeleted RecurringStatus = "deleted"
)

// RecurringBroadcast is a broadcast definition that fires repeatedly per
// its cron expression. Deletion is a soft status flip, never a row removal.
type RecurringBroadcast struct {
	ID        string
	AdminID   int64
	Message   string
	Segment   Segment
	Cadence   RecurringType
	CronExpr  string
	Status    RecurringStatus
	CreatedAt time.Time
	LastRun   *time.Time
	NextRun   *time.Time
}

func NewRecurringBroadcast(id string, adminID int64, message string, segment Segment, cadence RecurringType, cronExpr string) (*RecurringBroadcast, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if adminID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if _, err := ParseSegment(string(segment)); err != nil {
		return nil, err
	}
	if canonical, ok := cadence.CanonicalCron(); ok {
		cronExpr = canonical
	} else if err := ValidateCronExpr(cronExpr); err != nil {
		return nil, err
	}
	return &RecurringBroadcast{
		ID:        id,
		AdminID:   adminID,
		Message:   message,
		Segment:   segment,
		Cadence:   cadence,
		CronExpr:  cronExpr,
		Status:    RecurringActive,
		CreatedAt: time.Now(),
	}, nil
}

// ValidateCronExpr applies the shallow 5-field check the wizard uses.
// Field ranges are not validated here; the runner parses strictly and
// skips expressions it cannot evaluate.
func ValidateCronExpr(expr string) error {
	if len(strings.Fields(expr)) != 5 {
		return domain.ErrBadCron
	}
	return nil
}

// DeliveryResult classifies a single recipient outcome during fan-out.
type DeliveryResult string

const (
	DeliverySent        DeliveryResult = "sent"
	DeliveryBlocked     DeliveryResult = "blocked"
	DeliveryRateLimited DeliveryResult = "rate_limited"
	DeliveryFailed      DeliveryResult = "failed"
)

// DeliveryRecord is the per-recipient accounting row written during fan-out.
type DeliveryRecord struct {
	ID          string
	BroadcastID string
	UserID      int64
	Result      DeliveryResult
	Error       string
	SentAt      time.Time
}
