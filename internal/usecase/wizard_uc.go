package usecase

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ScheduleChoice is the fan-out selected on the schedule step.
type ScheduleChoice string

const (
	ScheduleNow       ScheduleChoice = "now"
	ScheduleLater     ScheduleChoice = "later"
	ScheduleRecurring ScheduleChoice = "recurring"
)

// EditField names the detour taken from the confirmation step.
type EditField string

const (
	EditMessage  EditField = "message"
	EditAudience EditField = "audience"
	EditSchedule EditField = "schedule"
)

// WizardUseCase drives the broadcast creation wizard. Every method loads the
// (admin, chat) session, validates the input against the current step, and
// either advances the session or returns a validation error with the session
// untouched so the caller can re-prompt the same step.
type WizardUseCase interface {
	Start(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error)
	Cancel(ctx context.Context, adminID, chatID int64) error
	Current(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error)

	SubmitMessage(ctx context.Context, adminID, chatID int64, text string) (*model.WizardSession, error)
	SelectAudience(ctx context.Context, adminID, chatID int64, segment string) (*model.WizardSession, error)
	SelectSchedule(ctx context.Context, adminID, chatID int64, choice ScheduleChoice) (*model.WizardSession, error)
	SubmitDateTime(ctx context.Context, adminID, chatID int64, input string) (*model.WizardSession, error)
	SelectRecurring(ctx context.Context, adminID, chatID int64, cadence string) (*model.WizardSession, error)
	SubmitCron(ctx context.Context, adminID, chatID int64, expr string) (*model.WizardSession, error)
	Edit(ctx context.Context, adminID, chatID int64, field EditField) (*model.WizardSession, error)

	// Confirm persists the draft through the broadcast use case and clears
	// the session. The draft survives a persistence failure so the
	// administrator can retry.
	Confirm(ctx context.Context, adminID, chatID int64) (*ConfirmResult, error)
}

type wizardUC struct {
	sessions   repository.WizardSessionRepository
	segments   SegmentUseCase
	broadcasts BroadcastUseCase
	now        func() time.Time
	log        *zerolog.Logger
}

func NewWizardUseCase(
	sessions repository.WizardSessionRepository,
	segments SegmentUseCase,
	broadcasts BroadcastUseCase,
	logger *zerolog.Logger,
) WizardUseCase {
	return &wizardUC{
		sessions:   sessions,
		segments:   segments,
		broadcasts: broadcasts,
		now:        time.Now,
		log:        logger,
	}
}

func (uc *wizardUC) Start(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error) {
	// Any previous draft is discarded: a new wizard always starts clean.
	if err := uc.sessions.Clear(ctx, adminID, chatID); err != nil && !errors.Is(err, domain.ErrNoSession) {
		return nil, err
	}
	sess := &model.WizardSession{
		AdminID: adminID,
		ChatID:  chatID,
		Step:    model.StepWaitingForMessage,
	}
	if err := uc.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (uc *wizardUC) Cancel(ctx context.Context, adminID, chatID int64) error {
	err := uc.sessions.Clear(ctx, adminID, chatID)
	if errors.Is(err, domain.ErrNoSession) {
		return nil
	}
	return err
}

func (uc *wizardUC) Current(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error) {
	return uc.sessions.Get(ctx, adminID, chatID)
}

func (uc *wizardUC) SubmitMessage(ctx context.Context, adminID, chatID int64, text string) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepWaitingForMessage, model.StepEditingMessage)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return sess, domain.ErrEmptyMessage
	}
	sess.Draft.MessageText = text
	if sess.Step == model.StepEditingMessage {
		sess.Step = model.StepConfirmingBroadcast
	} else {
		sess.Step = model.StepSelectingAudience
	}
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) SelectAudience(ctx context.Context, adminID, chatID int64, segment string) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepSelectingAudience, model.StepEditingAudience)
	if err != nil {
		return nil, err
	}
	seg, err := model.ParseSegment(segment)
	if err != nil {
		return sess, err
	}
	// The audience is recomputed on every (re)selection; a segment with no
	// members never advances the wizard.
	count, err := uc.segments.Count(ctx, seg)
	if err != nil {
		return sess, err
	}
	if count == 0 {
		return sess, domain.ErrEmptyAudience
	}
	sess.Draft.Segment = seg
	sess.Draft.AudienceCount = count
	if sess.Step == model.StepEditingAudience {
		sess.Step = model.StepConfirmingBroadcast
	} else {
		sess.Step = model.StepSelectingSchedule
	}
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) SelectSchedule(ctx context.Context, adminID, chatID int64, choice ScheduleChoice) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepSelectingSchedule, model.StepEditingSchedule)
	if err != nil {
		return nil, err
	}
	editing := sess.Step == model.StepEditingSchedule
	switch choice {
	case ScheduleNow:
		sess.Draft.ScheduleType = model.ScheduleImmediate
		sess.Draft.ScheduledAt = nil
		sess.Draft.Cadence = ""
		sess.Draft.CronExpr = ""
		sess.Step = model.StepConfirmingBroadcast
	case ScheduleLater:
		if editing {
			sess.Step = model.StepEditingDateTime
		} else {
			sess.Step = model.StepWaitingForDateTime
		}
	case ScheduleRecurring:
		if editing {
			sess.Step = model.StepEditingRecurring
		} else {
			sess.Step = model.StepSelectingRecurring
		}
	default:
		return sess, domain.ErrInvalidArgument
	}
	return sess, uc.save(ctx, sess)
}

var datetimePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})\s+(\d{1,2}):(\d{2})$`)

// ParseScheduleInput validates a DD.MM.YYYY HH:MM string against the given
// wall clock and returns the instant it names. The instant must be a real
// calendar time strictly after now.
func ParseScheduleInput(input string, now time.Time) (time.Time, error) {
	m := datetimePattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return time.Time{}, domain.ErrBadDateTime
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	at := time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
	// time.Date normalizes out-of-range components (32.01 becomes 01.02);
	// reject anything that did not round-trip.
	if at.Day() != day || int(at.Month()) != month || at.Year() != year ||
		at.Hour() != hour || at.Minute() != minute {
		return time.Time{}, domain.ErrBadDateTime
	}
	if !at.After(now) {
		return time.Time{}, domain.ErrPastDateTime
	}
	return at, nil
}

func (uc *wizardUC) SubmitDateTime(ctx context.Context, adminID, chatID int64, input string) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepWaitingForDateTime, model.StepEditingDateTime)
	if err != nil {
		return nil, err
	}
	at, err := ParseScheduleInput(input, uc.now())
	if err != nil {
		return sess, err
	}
	sess.Draft.ScheduleType = model.ScheduleScheduled
	sess.Draft.ScheduledAt = &at
	sess.Draft.Cadence = ""
	sess.Draft.CronExpr = ""
	sess.Step = model.StepConfirmingBroadcast
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) SelectRecurring(ctx context.Context, adminID, chatID int64, cadence string) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepSelectingRecurring, model.StepEditingRecurring)
	if err != nil {
		return nil, err
	}
	editing := sess.Step == model.StepEditingRecurring
	switch model.RecurringType(cadence) {
	case model.RecurringDaily, model.RecurringWeekly, model.RecurringMonthly:
		cron, _ := model.RecurringType(cadence).CanonicalCron()
		sess.Draft.ScheduleType = model.ScheduleRecurring
		sess.Draft.Cadence = model.RecurringType(cadence)
		sess.Draft.CronExpr = cron
		sess.Draft.ScheduledAt = nil
		sess.Step = model.StepConfirmingBroadcast
	case model.RecurringCustom:
		if editing {
			sess.Step = model.StepEditingCron
		} else {
			sess.Step = model.StepWaitingForCron
		}
	default:
		return sess, domain.ErrInvalidArgument
	}
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) SubmitCron(ctx context.Context, adminID, chatID int64, expr string) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepWaitingForCron, model.StepEditingCron)
	if err != nil {
		return nil, err
	}
	expr = strings.TrimSpace(expr)
	if err := model.ValidateCronExpr(expr); err != nil {
		return sess, err
	}
	sess.Draft.ScheduleType = model.ScheduleRecurring
	sess.Draft.Cadence = model.RecurringCustom
	sess.Draft.CronExpr = expr
	sess.Draft.ScheduledAt = nil
	sess.Step = model.StepConfirmingBroadcast
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) Edit(ctx context.Context, adminID, chatID int64, field EditField) (*model.WizardSession, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepConfirmingBroadcast)
	if err != nil {
		return nil, err
	}
	switch field {
	case EditMessage:
		sess.Step = model.StepEditingMessage
	case EditAudience:
		sess.Step = model.StepEditingAudience
	case EditSchedule:
		sess.Step = model.StepEditingSchedule
	default:
		return sess, domain.ErrInvalidArgument
	}
	return sess, uc.save(ctx, sess)
}

func (uc *wizardUC) Confirm(ctx context.Context, adminID, chatID int64) (*ConfirmResult, error) {
	sess, err := uc.load(ctx, adminID, chatID, model.StepConfirmingBroadcast)
	if err != nil {
		return nil, err
	}
	res, err := uc.broadcasts.CreateFromDraft(ctx, adminID, chatID, sess.Draft)
	if err != nil {
		// Keep the draft so the administrator can retry or cancel explicitly.
		uc.log.Error().Err(err).Int64("admin_id", adminID).Msg("broadcast confirmation failed")
		return nil, err
	}
	if err := uc.sessions.Clear(ctx, adminID, chatID); err != nil && !errors.Is(err, domain.ErrNoSession) {
		uc.log.Warn().Err(err).Int64("admin_id", adminID).Msg("failed to clear wizard session after confirm")
	}
	return res, nil
}

// load fetches the session and checks the current step is one of allowed.
func (uc *wizardUC) load(ctx context.Context, adminID, chatID int64, allowed ...model.WizardStep) (*model.WizardSession, error) {
	sess, err := uc.sessions.Get(ctx, adminID, chatID)
	if err != nil {
		return nil, err
	}
	for _, step := range allowed {
		if sess.Step == step {
			return sess, nil
		}
	}
	return nil, domain.ErrWrongStep
}

func (uc *wizardUC) save(ctx context.Context, sess *model.WizardSession) error {
	sess.UpdatedAt = uc.now()
	if err := uc.sessions.Set(ctx, sess); err != nil {
		return err
	}
	metrics.IncWizardTransition(string(sess.Step))
	return nil
}
