package sched

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/usecase"
)

// BroadcastRunner periodically fires one-shot broadcasts whose schedule
// time has passed and recurring definitions whose cron slot has arrived.
type BroadcastRunner struct {
	interval   time.Duration
	broadcasts repository.BroadcastRepository
	recurring  repository.RecurringBroadcastRepository
	uc         usecase.BroadcastUseCase
	now        func() time.Time
	log        *zerolog.Logger
}

func NewBroadcastRunner(
	interval time.Duration,
	broadcasts repository.BroadcastRepository,
	recurring repository.RecurringBroadcastRepository,
	uc usecase.BroadcastUseCase,
	logger *zerolog.Logger,
) *BroadcastRunner {
	if interval <= 0 {
		interval = time.Minute
	}
	runnerLog := logger.With().Str("component", "BroadcastRunner").Logger()
	return &BroadcastRunner{
		interval:   interval,
		broadcasts: broadcasts,
		recurring:  recurring,
		uc:         uc,
		now:        time.Now,
		log:        &runnerLog,
	}
}

func (w *BroadcastRunner) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting broadcast runner")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping broadcast runner")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one scan. Exposed so tests and the startup catch-up pass can
// drive it without the ticker.
func (w *BroadcastRunner) Tick(ctx context.Context) {
	now := w.now()
	w.runDue(ctx, now)
	w.runRecurring(ctx, now)
}

func (w *BroadcastRunner) runDue(ctx context.Context, now time.Time) {
	due, err := w.broadcasts.ListDue(ctx, repository.NoTX, now)
	if err != nil {
		w.log.Error().Err(err).Msg("listing due broadcasts failed")
		return
	}
	for _, b := range due {
		stats, err := w.uc.Execute(ctx, b)
		if err != nil {
			w.log.Error().Err(err).Str("broadcast_id", b.ID).Msg("scheduled broadcast failed")
			continue
		}
		w.log.Info().
			Str("broadcast_id", b.ID).
			Int("sent", stats.Sent).
			Int("blocked", stats.Blocked).
			Int("failed", stats.Failed).
			Msg("scheduled broadcast delivered")
	}
}

func (w *BroadcastRunner) runRecurring(ctx context.Context, now time.Time) {
	active, err := w.recurring.ListActive(ctx, repository.NoTX)
	if err != nil {
		w.log.Error().Err(err).Msg("listing recurring broadcasts failed")
		return
	}
	for _, rb := range active {
		sched, err := cron.ParseStandard(rb.CronExpr)
		if err != nil {
			// The wizard only checks the field count; a definition that
			// fails strict parsing stays active but never fires.
			w.log.Warn().Err(err).Str("recurring_id", rb.ID).Str("cron", rb.CronExpr).Msg("skipping unparseable cron")
			continue
		}

		if rb.NextRun == nil {
			next := sched.Next(now)
			if err := w.recurring.UpdateRuns(ctx, repository.NoTX, rb.ID, rb.LastRun, &next); err != nil {
				w.log.Error().Err(err).Str("recurring_id", rb.ID).Msg("seeding next run failed")
			}
			continue
		}
		if rb.NextRun.After(now) {
			continue
		}

		if err := w.fire(ctx, rb); err != nil {
			w.log.Error().Err(err).Str("recurring_id", rb.ID).Msg("recurring broadcast failed")
			continue
		}
		next := sched.Next(now)
		if err := w.recurring.UpdateRuns(ctx, repository.NoTX, rb.ID, &now, &next); err != nil {
			w.log.Error().Err(err).Str("recurring_id", rb.ID).Msg("recording run failed")
		}
	}
}

// fire materializes one occurrence as a plain broadcast so history and
// delivery accounting treat it like any other send.
func (w *BroadcastRunner) fire(ctx context.Context, rb *model.RecurringBroadcast) error {
	b, err := model.NewBroadcast(uuid.NewString(), rb.AdminID, rb.Message, rb.Segment, nil)
	if err != nil {
		return err
	}
	if err := w.broadcasts.Save(ctx, repository.NoTX, b); err != nil {
		return err
	}
	stats, err := w.uc.Execute(ctx, b)
	if err != nil {
		return err
	}
	w.log.Info().
		Str("recurring_id", rb.ID).
		Str("broadcast_id", b.ID).
		Int("sent", stats.Sent).
		Msg("recurring broadcast delivered")
	return nil
}
