package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/application"
	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/infra/metrics"
	red "telegram-agency-bot/internal/infra/redis"
	"telegram-agency-bot/internal/usecase"
)

const usersPageSize = 20

// RealTelegramBotAdapter drives tgbotapi and routes updates into the facade.
// It is also the outbound adapter.TelegramBotAdapter the dispatcher sends
// through.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// StartPolling consumes long-poll updates until ctx ends. Updates fan out
// to a fixed worker set so one slow handler does not stall the stream.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// HandleWebhookUpdate processes one update delivered over the webhook
// receiver instead of long polling.
func (r *RealTelegramBotAdapter) HandleWebhookUpdate(ctx context.Context, update tgbotapi.Update) error {
	return r.handleUpdate(ctx, update)
}

// ----- outbound port -----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	kb := buildKeyboard(rows)
	edit.ReplyMarkup = &kb
	_, err := r.bot.Send(edit)
	return err
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := r.bot.Request(cb)
	return err
}

// buildKeyboard maps port buttons onto tgbotapi markup. URL wins over
// callback data; an empty button falls back to its label as data.
func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kbRow = append(kbRow, kb)
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

// ----- inbound routing -----

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID
	text := messageText(update.Message)
	command := parseCommand(text)

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(from.ID, command), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendMessage(ctx, chatID, "Too many requests. Please slow down.")
		}
	}

	if command != "message" {
		metrics.IncTelegramCommand(command)
	}
	r.facade.Touch(ctx, from.ID, from.UserName)

	switch command {
	case "/start":
		greeting, err := r.facade.HandleStart(ctx, from.ID, from.UserName)
		if err != nil {
			return r.SendMessage(ctx, chatID, "Something went wrong. Please try again.")
		}
		if r.cfg.IsAdmin(from.ID) {
			return r.SendButtons(ctx, chatID, greeting, adminMenuKeyboard())
		}
		return r.SendMessage(ctx, chatID, greeting)

	case "/help":
		return r.SendMessage(ctx, chatID, r.helpText(from.ID))

	case "/courses":
		return r.sendCourseList(ctx, chatID)

	case "/mycourses":
		reply, err := r.facade.HandleMyCourses(ctx, from.ID)
		if err != nil {
			reply = "Failed to load your courses."
		}
		return r.SendMessage(ctx, chatID, reply)

	case "/admin":
		if !r.cfg.IsAdmin(from.ID) {
			return r.SendMessage(ctx, chatID, "This command is for administrators only.")
		}
		return r.SendButtons(ctx, chatID, "Admin panel:", adminMenuKeyboard())

	case "/broadcast":
		if !r.cfg.IsAdmin(from.ID) {
			return r.SendMessage(ctx, chatID, "This command is for administrators only.")
		}
		sess, err := r.facade.Wizard.Start(ctx, from.ID, chatID)
		if err != nil {
			return r.SendMessage(ctx, chatID, "Failed to start the broadcast wizard.")
		}
		return r.renderWizard(ctx, chatID, sess)

	case "/cancel":
		if !r.cfg.IsAdmin(from.ID) {
			return nil
		}
		if err := r.facade.Wizard.Cancel(ctx, from.ID, chatID); err != nil {
			return r.SendMessage(ctx, chatID, "Nothing to cancel.")
		}
		return r.SendMessage(ctx, chatID, "Broadcast cancelled.")

	case "/stats":
		if !r.cfg.IsAdmin(from.ID) {
			return r.SendMessage(ctx, chatID, "This command is for administrators only.")
		}
		reply, err := r.facade.HandleStats(ctx)
		if err != nil {
			reply = "Failed to load analytics."
		}
		return r.SendMessage(ctx, chatID, reply)

	case "/find":
		if !r.cfg.IsAdmin(from.ID) {
			return r.SendMessage(ctx, chatID, "This command is for administrators only.")
		}
		query := strings.Join(strings.Fields(text)[1:], " ")
		if query == "" {
			return r.SendMessage(ctx, chatID, "Usage: /find <telegram id or handle fragment>")
		}
		return r.sendUserSearch(ctx, chatID, query)

	default:
		// Empty text still goes to the wizard: a sticker or a bare photo
		// during a text step has to re-prompt, not vanish.
		if r.cfg.IsAdmin(from.ID) {
			return r.handleWizardText(ctx, from.ID, chatID, text)
		}
		return nil
	}
}

// messageText resolves a message's text, falling back to the media caption
// so a captioned photo counts as broadcast input.
func messageText(m *tgbotapi.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// parseCommand extracts the leading slash command, dropping a @botname
// suffix. Anything else, empty input included, is a plain message.
func parseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		return strings.SplitN(fields[0], "@", 2)[0]
	}
	return "message"
}

// handleWizardText routes free text into whichever wizard step is waiting
// for input. Text outside a session, or on a button step, is ignored.
func (r *RealTelegramBotAdapter) handleWizardText(ctx context.Context, adminID, chatID int64, text string) error {
	sess, err := r.facade.Wizard.Current(ctx, adminID, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return nil
		}
		return err
	}

	switch sess.Step {
	case model.StepWaitingForMessage, model.StepEditingMessage:
		sess, err = r.facade.Wizard.SubmitMessage(ctx, adminID, chatID, text)
	case model.StepWaitingForDateTime, model.StepEditingDateTime:
		sess, err = r.facade.Wizard.SubmitDateTime(ctx, adminID, chatID, text)
	case model.StepWaitingForCron, model.StepEditingCron:
		sess, err = r.facade.Wizard.SubmitCron(ctx, adminID, chatID, text)
	default:
		return nil
	}
	if err != nil {
		if msg := wizardErrorText(err); msg != "" {
			if sendErr := r.SendMessage(ctx, chatID, msg); sendErr != nil {
				return sendErr
			}
			return r.renderWizard(ctx, chatID, sess)
		}
		return err
	}
	return r.renderWizard(ctx, chatID, sess)
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	answered := false
	defer func() {
		if !answered {
			_ = r.AnswerCallback(ctx, query.ID, "", false)
		}
	}()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}
	from := query.From.ID

	action, err := ParseAction(query.Data)
	if err != nil {
		r.log.Debug().Str("data", query.Data).Msg("dropping unknown callback")
		return nil
	}

	if r.rateLimiter != nil {
		if allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(from, "callback"), 30, time.Minute); err == nil && !allowed {
			metrics.IncRateLimitTriggered()
			answered = true
			return r.AnswerCallback(ctx, query.ID, "Too many requests.", true)
		}
	}

	if adminOnly(action.Kind) && !r.cfg.IsAdmin(from) {
		answered = true
		return r.AnswerCallback(ctx, query.ID, "Administrators only.", true)
	}

	r.facade.Touch(ctx, from, query.From.UserName)

	switch action.Kind {
	case ActionMenu:
		if action.Arg != "courses" && !r.cfg.IsAdmin(from) {
			answered = true
			return r.AnswerCallback(ctx, query.ID, "Administrators only.", true)
		}
		switch action.Arg {
		case "main", "broadcasts":
			return r.SendButtons(ctx, chatID, "Admin panel:", adminMenuKeyboard())
		case "courses":
			return r.sendCourseList(ctx, chatID)
		case "stats":
			reply, err := r.facade.HandleStats(ctx)
			if err != nil {
				reply = "Failed to load analytics."
			}
			return r.SendMessage(ctx, chatID, reply)
		case "users":
			return r.sendUserList(ctx, chatID, 0)
		}
		return nil

	case ActionBroadcastNew:
		sess, err := r.facade.Wizard.Start(ctx, from, chatID)
		if err != nil {
			return r.SendMessage(ctx, chatID, "Failed to start the broadcast wizard.")
		}
		return r.renderWizard(ctx, chatID, sess)

	case ActionBroadcastList:
		return r.sendScheduledList(ctx, chatID)

	case ActionBroadcastHistory:
		reply, err := r.facade.HandleHistory(ctx, 10)
		if err != nil {
			reply = "Failed to load history."
		}
		return r.SendMessage(ctx, chatID, reply)

	case ActionAudience:
		return r.wizardStep(ctx, chatID, func() (*model.WizardSession, error) {
			return r.facade.Wizard.SelectAudience(ctx, from, chatID, action.Arg)
		})

	case ActionSchedule:
		return r.wizardStep(ctx, chatID, func() (*model.WizardSession, error) {
			return r.facade.Wizard.SelectSchedule(ctx, from, chatID, usecase.ScheduleChoice(action.Arg))
		})

	case ActionRecurring:
		return r.wizardStep(ctx, chatID, func() (*model.WizardSession, error) {
			return r.facade.Wizard.SelectRecurring(ctx, from, chatID, action.Arg)
		})

	case ActionEdit:
		return r.wizardStep(ctx, chatID, func() (*model.WizardSession, error) {
			return r.facade.Wizard.Edit(ctx, from, chatID, usecase.EditField(action.Arg))
		})

	case ActionConfirm:
		res, err := r.facade.Wizard.Confirm(ctx, from, chatID)
		if err != nil {
			if errors.Is(err, domain.ErrNoSession) || errors.Is(err, domain.ErrWrongStep) {
				return r.SendMessage(ctx, chatID, "No broadcast is waiting for confirmation. Use /broadcast to start one.")
			}
			return r.SendMessage(ctx, chatID, "Failed to save the broadcast. Tap Send to retry, or Cancel.")
		}
		return r.SendMessage(ctx, chatID, r.facade.ConfirmReply(res))

	case ActionCancel:
		if err := r.facade.Wizard.Cancel(ctx, from, chatID); err != nil && !errors.Is(err, domain.ErrNoSession) {
			return err
		}
		return r.SendMessage(ctx, chatID, "Broadcast cancelled.")

	case ActionDeleteBroadcastAsk:
		return r.SendButtons(ctx, chatID,
			"Delete this scheduled broadcast? This cannot be undone.",
			deleteConfirmKeyboard("del:one:"+action.Arg))

	case ActionDeleteRecurringAsk:
		return r.SendButtons(ctx, chatID,
			"Delete this recurring broadcast? Future runs will stop.",
			deleteConfirmKeyboard("del:rec:"+action.Arg))

	case ActionDeleteBroadcast:
		if err := r.facade.Broadcasts.DeleteScheduled(ctx, action.Arg); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotDeletable):
				answered = true
				if err := r.AnswerCallback(ctx, query.ID, "Already sending, cannot delete.", true); err != nil {
					return err
				}
			case errors.Is(err, domain.ErrNotFound):
				// already gone, just re-render
			default:
				return err
			}
		}
		return r.sendScheduledList(ctx, chatID)

	case ActionDeleteRecurring:
		if err := r.facade.Broadcasts.DeleteRecurring(ctx, action.Arg); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return r.sendScheduledList(ctx, chatID)

	case ActionCourse:
		return r.sendCourseDetail(ctx, chatID, from, action.Arg)

	case ActionCourseInvite:
		reply, err := r.facade.HandleInvite(ctx, from, action.Arg)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				reply = "You need to buy this course first."
			} else {
				reply = "Failed to create an access link. Please try again later."
			}
		}
		return r.SendMessage(ctx, chatID, reply)

	case ActionUserList:
		offset, _ := strconv.Atoi(action.Arg)
		if offset < 0 {
			offset = 0
		}
		return r.sendUserList(ctx, chatID, offset)

	case ActionUserDetail:
		tgID, err := strconv.ParseInt(action.Arg, 10, 64)
		if err != nil {
			return nil
		}
		return r.sendUserDetail(ctx, chatID, tgID)

	case ActionUserBlock, ActionUserUnblock:
		tgID, err := strconv.ParseInt(action.Arg, 10, 64)
		if err != nil {
			return nil
		}
		blocked := action.Kind == ActionUserBlock
		if err := r.facade.Users.MarkBlocked(ctx, tgID, blocked); err != nil {
			answered = true
			return r.AnswerCallback(ctx, query.ID, "Failed to update the user.", true)
		}
		return r.sendUserDetail(ctx, chatID, tgID)
	}
	return nil
}

// wizardStep runs one wizard transition and re-renders whatever step the
// session lands on, turning validation errors into re-prompts.
func (r *RealTelegramBotAdapter) wizardStep(ctx context.Context, chatID int64, fn func() (*model.WizardSession, error)) error {
	sess, err := fn()
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return r.SendMessage(ctx, chatID, "This wizard has expired. Use /broadcast to start over.")
		}
		if msg := wizardErrorText(err); msg != "" {
			if sendErr := r.SendMessage(ctx, chatID, msg); sendErr != nil {
				return sendErr
			}
			if sess != nil {
				return r.renderWizard(ctx, chatID, sess)
			}
			return nil
		}
		return err
	}
	return r.renderWizard(ctx, chatID, sess)
}

func (r *RealTelegramBotAdapter) renderWizard(ctx context.Context, chatID int64, sess *model.WizardSession) error {
	return r.SendButtons(ctx, chatID, r.facade.WizardPromptText(sess), wizardKeyboard(sess.Step))
}

// wizardErrorText maps validation sentinels onto re-prompt text. Unmapped
// errors bubble up to the worker log.
func wizardErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return "The message cannot be empty. Please send the broadcast text."
	case errors.Is(err, domain.ErrEmptyAudience):
		return "That segment has no recipients right now. Pick another audience."
	case errors.Is(err, domain.ErrUnknownSegment):
		return "Unknown audience. Use the buttons below."
	case errors.Is(err, domain.ErrBadDateTime):
		return "That date does not parse. Use DD.MM.YYYY HH:MM, for example 25.12.2026 18:30."
	case errors.Is(err, domain.ErrPastDateTime):
		return "That moment is already in the past. Pick a future date and time."
	case errors.Is(err, domain.ErrBadCron):
		return "A cron expression needs five fields, for example 0 12 * * 1."
	case errors.Is(err, domain.ErrWrongStep):
		return "That action does not fit the current step. Use the buttons below, or /cancel."
	}
	return ""
}

func (r *RealTelegramBotAdapter) sendScheduledList(ctx context.Context, chatID int64) error {
	items, err := r.facade.Broadcasts.ListScheduled(ctx)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Failed to load scheduled broadcasts.")
	}
	if len(items) == 0 {
		return r.SendButtons(ctx, chatID, "Nothing is scheduled.", [][]adapter.InlineButton{
			{{Text: "📣 New broadcast", Data: "bc:new"}},
			{{Text: "◀️ Menu", Data: "menu:main"}},
		})
	}
	var sb strings.Builder
	sb.WriteString("🗓 Scheduled broadcasts\n\n")
	for _, it := range items {
		sb.WriteString(r.facade.ScheduledLine(it))
		sb.WriteByte('\n')
	}
	return r.SendButtons(ctx, chatID, sb.String(), scheduledListKeyboard(items))
}

func (r *RealTelegramBotAdapter) sendCourseList(ctx context.Context, chatID int64) error {
	courses, err := r.facade.HandleCourseList(ctx)
	if err != nil || len(courses) == 0 {
		return r.SendMessage(ctx, chatID, "No courses are available right now.")
	}
	return r.SendButtons(ctx, chatID, "📚 Our courses (tap for details):", courseListKeyboard(courses))
}

func (r *RealTelegramBotAdapter) sendCourseDetail(ctx context.Context, chatID, tgID int64, courseID string) error {
	text, err := r.facade.HandleCourseDetail(ctx, courseID)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Course not found.")
	}
	c, err := r.facade.Courses.Find(ctx, courseID)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Course not found.")
	}
	hasAccess, _ := r.facade.Courses.HasAccess(ctx, tgID, courseID)
	return r.SendButtons(ctx, chatID, text, courseDetailKeyboard(c, hasAccess))
}

func (r *RealTelegramBotAdapter) sendUserList(ctx context.Context, chatID int64, offset int) error {
	reply, users, err := r.facade.HandleUserList(ctx, offset, usersPageSize)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Failed to load users.")
	}
	return r.SendButtons(ctx, chatID, reply, userListKeyboard(users, offset, usersPageSize))
}

func (r *RealTelegramBotAdapter) sendUserSearch(ctx context.Context, chatID int64, query string) error {
	reply, users, err := r.facade.HandleUserSearch(ctx, query)
	if err != nil {
		return r.SendMessage(ctx, chatID, "Search failed. Please try again.")
	}
	if len(users) == 0 {
		return r.SendMessage(ctx, chatID, reply)
	}
	// Search results are not a page of the full listing, so no pagination.
	return r.SendButtons(ctx, chatID, reply, userListKeyboard(users, 0, len(users)+1))
}

func (r *RealTelegramBotAdapter) sendUserDetail(ctx context.Context, chatID, tgID int64) error {
	text, u, err := r.facade.HandleUserDetail(ctx, tgID)
	if err != nil {
		return r.SendMessage(ctx, chatID, "User not found.")
	}
	return r.SendButtons(ctx, chatID, text, userDetailKeyboard(u))
}

func (r *RealTelegramBotAdapter) helpText(tgID int64) string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	sb.WriteString("/start — register and say hello\n")
	sb.WriteString("/courses — browse the course catalog\n")
	sb.WriteString("/mycourses — courses you have access to\n")
	if r.cfg.IsAdmin(tgID) {
		sb.WriteString("\nAdmin:\n")
		sb.WriteString("/admin — admin panel\n")
		sb.WriteString("/broadcast — start the broadcast wizard\n")
		sb.WriteString("/cancel — abort the current wizard\n")
		sb.WriteString("/stats — audience analytics\n")
		sb.WriteString("/find — search users by id or handle\n")
	}
	return sb.String()
}

// adminOnly reports whether an action is gated to configured admins.
func adminOnly(kind ActionKind) bool {
	switch kind {
	case ActionCourse, ActionCourseInvite:
		return false
	case ActionMenu:
		// menu:courses is user-reachable; the finer split happens in the
		// handler, which only exposes admin data behind admin menus.
		return false
	}
	return true
}
