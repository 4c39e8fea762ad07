package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"
	"telegram-agency-bot/internal/infra/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DispatchStats aggregates per-recipient outcomes of one fan-out.
type DispatchStats struct {
	Sent        int
	Blocked     int
	RateLimited int
	Failed      int
}

func (s DispatchStats) Total() int {
	return s.Sent + s.Blocked + s.RateLimited + s.Failed
}

// Dispatcher fans a broadcast message out to a recipient list through the
// worker pool, holding the send rate under the platform ceiling and writing
// one delivery record per recipient. Dispatch returns only after every
// recipient has been attempted.
type Dispatcher struct {
	bot        adapter.TelegramBotAdapter
	deliveries repository.DeliveryLogRepository
	pool       *worker.Pool
	perSecond  int
	log        *zerolog.Logger
}

func NewDispatcher(
	bot adapter.TelegramBotAdapter,
	deliveries repository.DeliveryLogRepository,
	pool *worker.Pool,
	messagesPerSecond int,
	logger *zerolog.Logger,
) *Dispatcher {
	if messagesPerSecond <= 0 {
		messagesPerSecond = 25
	}
	return &Dispatcher{
		bot:        bot,
		deliveries: deliveries,
		pool:       pool,
		perSecond:  messagesPerSecond,
		log:        logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, b *model.Broadcast, recipients []int64) DispatchStats {
	start := time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(d.perSecond))
	defer ticker.Stop()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats DispatchStats
	)

	for _, userID := range recipients {
		select {
		case <-ctx.Done():
			d.log.Warn().Str("broadcast_id", b.ID).Msg("fan-out interrupted")
			wg.Wait()
			return stats
		case <-ticker.C:
		}

		userID := userID
		wg.Add(1)
		err := d.pool.SubmitWait(ctx, func(taskCtx context.Context) error {
			defer wg.Done()
			result, sendErr := d.sendOne(taskCtx, b, userID)
			mu.Lock()
			switch result {
			case model.DeliverySent:
				stats.Sent++
			case model.DeliveryBlocked:
				stats.Blocked++
			case model.DeliveryRateLimited:
				stats.RateLimited++
			default:
				stats.Failed++
			}
			mu.Unlock()
			metrics.IncDelivery(string(result))
			if sendErr != nil {
				d.log.Debug().Err(sendErr).Int64("user_id", userID).
					Str("broadcast_id", b.ID).Str("result", string(result)).
					Msg("delivery not sent")
			}
			return nil
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			stats.Failed++
			mu.Unlock()
			d.log.Error().Err(err).Int64("user_id", userID).Str("broadcast_id", b.ID).
				Msg("failed to queue delivery")
		}
	}

	wg.Wait()
	metrics.ObserveFanoutDuration(time.Since(start).Seconds())
	d.log.Info().Str("broadcast_id", b.ID).Int("recipients", len(recipients)).
		Int("sent", stats.Sent).Int("blocked", stats.Blocked).
		Int("rate_limited", stats.RateLimited).Int("failed", stats.Failed).
		Dur("took", time.Since(start)).Msg("fan-out finished")
	return stats
}

func (d *Dispatcher) sendOne(ctx context.Context, b *model.Broadcast, userID int64) (model.DeliveryResult, error) {
	sendErr := d.bot.SendMessage(ctx, userID, b.Message)
	result := classifyDelivery(sendErr)

	rec := &model.DeliveryRecord{
		ID:          uuid.NewString(),
		BroadcastID: b.ID,
		UserID:      userID,
		Result:      result,
		SentAt:      time.Now(),
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := d.deliveries.Record(ctx, repository.NoTX, rec); err != nil {
		d.log.Error().Err(err).Str("broadcast_id", b.ID).Int64("user_id", userID).
			Msg("failed to record delivery")
	}
	return result, sendErr
}

// classifyDelivery maps a Bot API send error onto a delivery result by
// inspecting the error text, the only signal the platform gives us.
func classifyDelivery(err error) model.DeliveryResult {
	if err == nil {
		return model.DeliverySent
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blocked"),
		strings.Contains(msg, "deactivated"),
		strings.Contains(msg, "chat not found"),
		strings.Contains(msg, "forbidden"):
		return model.DeliveryBlocked
	case strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "retry after"):
		return model.DeliveryRateLimited
	default:
		return model.DeliveryFailed
	}
}
