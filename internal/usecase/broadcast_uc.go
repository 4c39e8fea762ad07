package usecase

import (
	"context"
	"fmt"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ConfirmResult reports what a confirmed draft became. Recipients is the
// audience size computed at confirmation time; actual fan-out re-resolves
// the segment when it runs.
type ConfirmResult struct {
	ScheduleType model.ScheduleType
	BroadcastID  string
	Recipients   int
	ScheduledAt  *time.Time
	Cadence      model.RecurringType
	CronExpr     string
}

// ScheduledItem is one row of the combined scheduled listing. Ordinals are
// shared across both kinds: one-shot rows come first (soonest first), then
// recurring rows (newest first), numbered continuously from 1.
type ScheduledItem struct {
	Ordinal   int
	Broadcast *model.Broadcast
	Recurring *model.RecurringBroadcast
}

type BroadcastUseCase interface {
	CreateFromDraft(ctx context.Context, adminID, chatID int64, draft model.BroadcastDraft) (*ConfirmResult, error)

	// Execute fans a pending broadcast out to its segment and flips its
	// status. Used by the immediate path and the scheduler.
	Execute(ctx context.Context, b *model.Broadcast) (DispatchStats, error)

	ListScheduled(ctx context.Context) ([]ScheduledItem, error)
	History(ctx context.Context, limit int) ([]*model.Broadcast, error)

	DeleteScheduled(ctx context.Context, id string) error
	DeleteRecurring(ctx context.Context, id string) error
}

type broadcastUC struct {
	broadcasts repository.BroadcastRepository
	recurring  repository.RecurringBroadcastRepository
	segments   SegmentUseCase
	dispatcher *Dispatcher
	bot        adapter.TelegramBotAdapter
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	broadcasts repository.BroadcastRepository,
	recurring repository.RecurringBroadcastRepository,
	segments SegmentUseCase,
	dispatcher *Dispatcher,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
) BroadcastUseCase {
	return &broadcastUC{
		broadcasts: broadcasts,
		recurring:  recurring,
		segments:   segments,
		dispatcher: dispatcher,
		bot:        bot,
		log:        logger,
	}
}

func (uc *broadcastUC) CreateFromDraft(ctx context.Context, adminID, chatID int64, draft model.BroadcastDraft) (*ConfirmResult, error) {
	if draft.MessageText == "" {
		return nil, domain.ErrEmptyMessage
	}
	if _, err := model.ParseSegment(string(draft.Segment)); err != nil {
		return nil, err
	}

	res := &ConfirmResult{
		ScheduleType: draft.ScheduleType,
		Recipients:   draft.AudienceCount,
	}

	switch draft.ScheduleType {
	case model.ScheduleRecurring:
		rb, err := model.NewRecurringBroadcast("", adminID, draft.MessageText, draft.Segment, draft.Cadence, draft.CronExpr)
		if err != nil {
			return nil, err
		}
		if err := uc.recurring.Save(ctx, repository.NoTX, rb); err != nil {
			return nil, err
		}
		res.BroadcastID = rb.ID
		res.Cadence = rb.Cadence
		res.CronExpr = rb.CronExpr
		uc.log.Info().Str("recurring_id", rb.ID).Str("cron", rb.CronExpr).
			Str("segment", string(rb.Segment)).Msg("recurring broadcast created")

	case model.ScheduleScheduled:
		if draft.ScheduledAt == nil {
			return nil, domain.ErrBadDateTime
		}
		b, err := model.NewBroadcast("", adminID, draft.MessageText, draft.Segment, draft.ScheduledAt)
		if err != nil {
			return nil, err
		}
		if err := uc.broadcasts.Save(ctx, repository.NoTX, b); err != nil {
			return nil, err
		}
		res.BroadcastID = b.ID
		res.ScheduledAt = b.ScheduledAt
		uc.log.Info().Str("broadcast_id", b.ID).Time("scheduled_at", *b.ScheduledAt).
			Str("segment", string(b.Segment)).Msg("broadcast scheduled")

	case model.ScheduleImmediate:
		b, err := model.NewBroadcast("", adminID, draft.MessageText, draft.Segment, nil)
		if err != nil {
			return nil, err
		}
		if err := uc.broadcasts.Save(ctx, repository.NoTX, b); err != nil {
			return nil, err
		}
		res.BroadcastID = b.ID
		// Fan-out runs off the update goroutine; the broadcast stays
		// pending until every recipient has been attempted.
		go uc.runImmediate(b, chatID)

	default:
		return nil, domain.ErrInvalidArgument
	}

	metrics.IncBroadcastCreated(string(draft.ScheduleType))
	return res, nil
}

func (uc *broadcastUC) runImmediate(b *model.Broadcast, notifyChatID int64) {
	ctx := context.Background()
	stats, err := uc.Execute(ctx, b)
	if err != nil {
		uc.log.Error().Err(err).Str("broadcast_id", b.ID).Msg("immediate broadcast failed")
	}
	if notifyChatID == 0 {
		return
	}
	text := fmt.Sprintf("Broadcast finished: %d sent, %d blocked, %d failed.",
		stats.Sent, stats.Blocked, stats.RateLimited+stats.Failed)
	if err != nil {
		text = "Broadcast failed: " + err.Error()
	}
	if nerr := uc.bot.SendMessage(ctx, notifyChatID, text); nerr != nil {
		uc.log.Warn().Err(nerr).Int64("chat_id", notifyChatID).Msg("failed to notify admin")
	}
}

func (uc *broadcastUC) Execute(ctx context.Context, b *model.Broadcast) (DispatchStats, error) {
	recipients, err := uc.segments.Resolve(ctx, b.Segment)
	if err != nil {
		now := time.Now()
		_ = uc.broadcasts.UpdateStatus(ctx, repository.NoTX, b.ID, model.BroadcastFailed, &now)
		return DispatchStats{}, err
	}

	stats := uc.dispatcher.Dispatch(ctx, b, recipients)

	now := time.Now()
	status := model.BroadcastSent
	if stats.Total() > 0 && stats.Sent == 0 {
		status = model.BroadcastFailed
	}
	if err := uc.broadcasts.UpdateStatus(ctx, repository.NoTX, b.ID, status, &now); err != nil {
		return stats, err
	}
	return stats, nil
}

func (uc *broadcastUC) ListScheduled(ctx context.Context) ([]ScheduledItem, error) {
	oneShot, err := uc.broadcasts.ListScheduled(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	active, err := uc.recurring.ListActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	items := make([]ScheduledItem, 0, len(oneShot)+len(active))
	ord := 0
	for _, b := range oneShot {
		ord++
		items = append(items, ScheduledItem{Ordinal: ord, Broadcast: b})
	}
	for _, rb := range active {
		ord++
		items = append(items, ScheduledItem{Ordinal: ord, Recurring: rb})
	}
	return items, nil
}

func (uc *broadcastUC) History(ctx context.Context, limit int) ([]*model.Broadcast, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.broadcasts.ListHistory(ctx, repository.NoTX, limit)
}

func (uc *broadcastUC) DeleteScheduled(ctx context.Context, id string) error {
	if err := uc.broadcasts.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.log.Info().Str("broadcast_id", id).Msg("scheduled broadcast deleted")
	return nil
}

func (uc *broadcastUC) DeleteRecurring(ctx context.Context, id string) error {
	if err := uc.recurring.SoftDelete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.log.Info().Str("recurring_id", id).Msg("recurring broadcast deactivated")
	return nil
}
