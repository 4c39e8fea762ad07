package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/usecase"
)

// BotFacade composes usecases into the surface the Telegram adapter talks
// to. Formatting lives here so the adapter deals only in strings and
// keyboards.
type BotFacade struct {
	Users      usecase.UserUseCase
	Wizard     usecase.WizardUseCase
	Broadcasts usecase.BroadcastUseCase
	Courses    usecase.CourseUseCase
	Stats      usecase.StatsUseCase
}

func NewBotFacade(
	users usecase.UserUseCase,
	wizard usecase.WizardUseCase,
	broadcasts usecase.BroadcastUseCase,
	courses usecase.CourseUseCase,
	stats usecase.StatsUseCase,
) *BotFacade {
	return &BotFacade{
		Users:      users,
		Wizard:     wizard,
		Broadcasts: broadcasts,
		Courses:    courses,
		Stats:      stats,
	}
}

// HandleStart registers or refreshes the user and returns the greeting.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) (string, error) {
	u, err := b.Users.RegisterOrTouch(ctx, tgID, username)
	if err != nil {
		return "", fmt.Errorf("register user: %w", err)
	}
	name := u.Username
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello, %s! 👋\nUse /courses to browse our courses, or /help for the full command list.", name), nil
}

// Touch bumps activity for any inbound update so the inactive segment
// stays honest.
func (b *BotFacade) Touch(ctx context.Context, tgID int64, username string) {
	_, _ = b.Users.RegisterOrTouch(ctx, tgID, username)
}

func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	s, err := b.Stats.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("📈 Analytics\n\n")
	fmt.Fprintf(&sb, "Users: %d total\n", s.TotalUsers)
	fmt.Fprintf(&sb, "  new: %d today / %d this week / %d this month\n", s.NewToday, s.NewThisWeek, s.NewThisMonth)
	fmt.Fprintf(&sb, "  active this week: %d\n\n", s.ActiveWeek)
	fmt.Fprintf(&sb, "Courses: %d\n", s.TotalCourses)
	fmt.Fprintf(&sb, "Purchases: %d (%d buyers, %.1f%% conversion)\n", s.TotalPurchases, s.Buyers, s.ConversionPct)
	fmt.Fprintf(&sb, "Revenue: %s (avg %s)\n\n", formatMoney(s.RevenueMinor), formatMoney(s.AvgPurchaseMinor))
	fmt.Fprintf(&sb, "Est. interactions: %d/day, %d/week\n", s.EstDailyInteractions, s.EstWeeklyInteractions)
	return sb.String(), nil
}

// WizardPromptText is the text shown for a wizard step. Keyboards come from
// the adapter; the confirmation summary is regenerated from the draft on
// every render.
func (b *BotFacade) WizardPromptText(sess *model.WizardSession) string {
	switch sess.Step {
	case model.StepWaitingForMessage, model.StepEditingMessage:
		return "📝 Send the broadcast message text."
	case model.StepSelectingAudience, model.StepEditingAudience:
		return "👥 Who should receive it?"
	case model.StepSelectingSchedule, model.StepEditingSchedule:
		return "🗓 When should it go out?"
	case model.StepWaitingForDateTime, model.StepEditingDateTime:
		return "⏰ Send the date and time as DD.MM.YYYY HH:MM (for example 25.12.2026 18:30)."
	case model.StepSelectingRecurring, model.StepEditingRecurring:
		return "🔁 How often should it repeat?"
	case model.StepWaitingForCron, model.StepEditingCron:
		return "⚙️ Send a cron expression with five fields (for example 0 12 * * 1)."
	case model.StepConfirmingBroadcast:
		return b.WizardSummary(sess.Draft)
	default:
		return "Something went wrong. Use /broadcast to start over."
	}
}

// WizardSummary renders the confirmation card from the complete draft.
func (b *BotFacade) WizardSummary(d model.BroadcastDraft) string {
	var sb strings.Builder
	sb.WriteString("📋 Review the broadcast\n\n")
	fmt.Fprintf(&sb, "Message:\n%s\n\n", truncate(d.MessageText, 500))
	fmt.Fprintf(&sb, "Audience: %s (%d recipients)\n", d.Segment.DisplayName(), d.AudienceCount)
	switch d.ScheduleType {
	case model.ScheduleImmediate:
		sb.WriteString("Schedule: send now\n")
	case model.ScheduleScheduled:
		if d.ScheduledAt != nil {
			fmt.Fprintf(&sb, "Schedule: once at %s\n", d.ScheduledAt.Format("02.01.2006 15:04"))
		}
	case model.ScheduleRecurring:
		if d.Cadence == model.RecurringCustom {
			fmt.Fprintf(&sb, "Schedule: recurring, cron %q\n", d.CronExpr)
		} else {
			fmt.Fprintf(&sb, "Schedule: %s\n", d.Cadence.DisplayName())
		}
	}
	return sb.String()
}

// ConfirmReply is the message sent right after a successful confirmation.
func (b *BotFacade) ConfirmReply(res *usecase.ConfirmResult) string {
	switch res.ScheduleType {
	case model.ScheduleImmediate:
		return fmt.Sprintf("🚀 Sending to %d recipients. You will get a report when it finishes.", res.Recipients)
	case model.ScheduleScheduled:
		return fmt.Sprintf("✅ Scheduled for %s (%d recipients as of now).", res.ScheduledAt.Format("02.01.2006 15:04"), res.Recipients)
	case model.ScheduleRecurring:
		return fmt.Sprintf("✅ Recurring broadcast saved (cron %s).", res.CronExpr)
	default:
		return "✅ Broadcast saved."
	}
}

// ScheduledLine renders one row of the combined scheduled listing.
func (b *BotFacade) ScheduledLine(it usecase.ScheduledItem) string {
	if it.Broadcast != nil {
		return fmt.Sprintf("%d. 📅 %s — %s → %s",
			it.Ordinal,
			it.Broadcast.ScheduledAt.Format("02.01.2006 15:04"),
			truncate(it.Broadcast.Message, 40),
			it.Broadcast.Segment.DisplayName())
	}
	return fmt.Sprintf("%d. 🔁 %s — %s → %s",
		it.Ordinal,
		it.Recurring.Cadence.DisplayName(),
		truncate(it.Recurring.Message, 40),
		it.Recurring.Segment.DisplayName())
}

func (b *BotFacade) HandleHistory(ctx context.Context, limit int) (string, error) {
	hist, err := b.Broadcasts.History(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(hist) == 0 {
		return "No broadcasts have been sent yet.", nil
	}
	var sb strings.Builder
	sb.WriteString("🗂 Broadcast history\n\n")
	for i, b := range hist {
		mark := "✅"
		if b.Status == model.BroadcastFailed {
			mark = "❌"
		}
		when := b.CreatedAt
		if b.SentAt != nil {
			when = *b.SentAt
		}
		fmt.Fprintf(&sb, "%d. %s %s — %s\n", i+1, mark, when.Format("02.01.2006 15:04"), truncate(b.Message, 40))
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleCourseList(ctx context.Context) ([]*model.Course, error) {
	return b.Courses.ListActive(ctx)
}

// HandleCourseDetail formats one course card.
func (b *BotFacade) HandleCourseDetail(ctx context.Context, courseID string) (string, error) {
	c, err := b.Courses.Find(ctx, courseID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 %s\n\n", c.Title)
	if c.Description != "" {
		sb.WriteString(c.Description + "\n\n")
	}
	fmt.Fprintf(&sb, "Price: %s\n", formatMoney(c.PriceMinor))
	return sb.String(), nil
}

// HandleMyCourses lists the courses the user currently has access to.
func (b *BotFacade) HandleMyCourses(ctx context.Context, tgID int64) (string, error) {
	purchases, err := b.Courses.PurchasesOf(ctx, tgID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	n := 0
	for _, p := range purchases {
		ok, err := b.Courses.HasAccess(ctx, tgID, p.CourseID)
		if err != nil || !ok {
			continue
		}
		c, err := b.Courses.Find(ctx, p.CourseID)
		if err != nil {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s — /courses to open\n", n, c.Title)
	}
	if n == 0 {
		return "You have no courses yet. Use /courses to browse the catalog.", nil
	}
	return "🎓 Your courses\n\n" + sb.String(), nil
}

func (b *BotFacade) HandleInvite(ctx context.Context, tgID int64, courseID string) (string, error) {
	link, err := b.Courses.InviteLink(ctx, tgID, courseID)
	if err != nil {
		return "", err
	}
	return "🔑 Your personal access link (valid for a limited time):\n" + link, nil
}

// HandleUserList returns the rendered page and the users on it so the
// adapter can attach per-user buttons.
func (b *BotFacade) HandleUserList(ctx context.Context, offset, limit int) (string, []*model.User, error) {
	users, err := b.Users.List(ctx, offset, limit)
	if err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return "No users yet.", nil, nil
	}
	var sb strings.Builder
	sb.WriteString("👥 Users (tap one for details)\n\n")
	for i, u := range users {
		fmt.Fprintf(&sb, "%d. %s\n", offset+i+1, UserLine(u))
	}
	return sb.String(), users, nil
}

// HandleUserSearch matches users by exact telegram id or handle fragment.
func (b *BotFacade) HandleUserSearch(ctx context.Context, query string) (string, []*model.User, error) {
	users, err := b.Users.Search(ctx, query)
	if err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return fmt.Sprintf("No users match %q.", query), nil, nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Users matching %q\n\n", query)
	for i, u := range users {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, UserLine(u))
	}
	return sb.String(), users, nil
}

// HandleUserDetail renders one user's admin card.
func (b *BotFacade) HandleUserDetail(ctx context.Context, tgID int64) (string, *model.User, error) {
	u, err := b.Users.Find(ctx, tgID)
	if err != nil {
		return "", nil, err
	}
	purchases, err := b.Courses.PurchasesOf(ctx, tgID)
	if err != nil {
		return "", nil, err
	}
	return UserCard(u, len(purchases)), u, nil
}

// UserLine is one row of a user listing.
func UserLine(u *model.User) string {
	name := u.Username
	if name == "" {
		name = fmt.Sprintf("id %d", u.TelegramID)
	}
	flag := ""
	if u.IsBlocked {
		flag = " 🚫"
	}
	return fmt.Sprintf("%s%s — joined %s", name, flag, u.JoinedAt.Format("02.01.2006"))
}

// UserCard is the detail view behind a listing row.
func UserCard(u *model.User, purchases int) string {
	var sb strings.Builder
	name := u.Username
	if name == "" {
		name = "(no handle)"
	}
	fmt.Fprintf(&sb, "👤 %s\n\n", name)
	fmt.Fprintf(&sb, "Telegram ID: %d\n", u.TelegramID)
	fmt.Fprintf(&sb, "Joined: %s\n", u.JoinedAt.Format("02.01.2006"))
	fmt.Fprintf(&sb, "Last activity: %s\n", u.LastActivityAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&sb, "Purchases: %d\n", purchases)
	if u.IsBlocked {
		sb.WriteString("Status: 🚫 blocked\n")
	} else {
		sb.WriteString("Status: active\n")
	}
	return sb.String()
}

func formatMoney(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// SyncCatalogLoop refreshes the local course catalog until ctx ends.
func (b *BotFacade) SyncCatalogLoop(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = b.Courses.SyncCatalog(ctx)
		}
	}
}
