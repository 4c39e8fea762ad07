package application

import (
	"strings"
	"testing"
	"time"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/usecase"
)

func TestWizardSummaryShowsEverySelection(t *testing.T) {
	at := time.Date(2026, 12, 25, 18, 30, 0, 0, time.Local)
	f := &BotFacade{}

	got := f.WizardSummary(model.BroadcastDraft{
		MessageText:   "Big sale tomorrow!",
		Segment:       model.SegmentBuyers,
		AudienceCount: 42,
		ScheduleType:  model.ScheduleScheduled,
		ScheduledAt:   &at,
	})

	for _, want := range []string{"Big sale tomorrow!", "Course buyers", "42", "25.12.2026 18:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestWizardSummaryRecurringShowsCadence(t *testing.T) {
	f := &BotFacade{}

	got := f.WizardSummary(model.BroadcastDraft{
		MessageText:  "weekly digest",
		Segment:      model.SegmentAll,
		ScheduleType: model.ScheduleRecurring,
		Cadence:      model.RecurringWeekly,
	})
	if !strings.Contains(got, "Weekly on Monday") {
		t.Errorf("summary missing cadence:\n%s", got)
	}

	got = f.WizardSummary(model.BroadcastDraft{
		MessageText:  "custom digest",
		Segment:      model.SegmentAll,
		ScheduleType: model.ScheduleRecurring,
		Cadence:      model.RecurringCustom,
		CronExpr:     "0 9 * * 5",
	})
	if !strings.Contains(got, "0 9 * * 5") {
		t.Errorf("summary missing cron:\n%s", got)
	}
}

func TestWizardSummaryTruncatesLongMessages(t *testing.T) {
	f := &BotFacade{}
	long := strings.Repeat("x", 600)

	got := f.WizardSummary(model.BroadcastDraft{
		MessageText:  long,
		Segment:      model.SegmentAll,
		ScheduleType: model.ScheduleImmediate,
	})
	if strings.Contains(got, long) {
		t.Error("long message should be truncated in the summary")
	}
	if !strings.Contains(got, "…") {
		t.Error("truncated message should carry an ellipsis")
	}
}

func TestScheduledLineFormats(t *testing.T) {
	f := &BotFacade{}
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	b, err := model.NewBroadcast("", 1, "summer promo", model.SegmentAll, &at)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := model.NewRecurringBroadcast("", 1, "weekly digest", model.SegmentBuyers, model.RecurringWeekly, "")
	if err != nil {
		t.Fatal(err)
	}

	one := f.ScheduledLine(usecase.ScheduledItem{Ordinal: 1, Broadcast: b})
	if !strings.HasPrefix(one, "1.") || !strings.Contains(one, "01.06.2026 12:00") || !strings.Contains(one, "summer promo") {
		t.Errorf("one-shot line = %q", one)
	}

	rec := f.ScheduledLine(usecase.ScheduledItem{Ordinal: 2, Recurring: rb})
	if !strings.HasPrefix(rec, "2.") || !strings.Contains(rec, "Weekly on Monday") || !strings.Contains(rec, "Course buyers") {
		t.Errorf("recurring line = %q", rec)
	}
}

func TestConfirmReplyPerScheduleType(t *testing.T) {
	f := &BotFacade{}
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)

	got := f.ConfirmReply(&usecase.ConfirmResult{ScheduleType: model.ScheduleImmediate, Recipients: 7})
	if !strings.Contains(got, "7 recipients") {
		t.Errorf("immediate reply = %q", got)
	}

	got = f.ConfirmReply(&usecase.ConfirmResult{ScheduleType: model.ScheduleScheduled, Recipients: 3, ScheduledAt: &at})
	if !strings.Contains(got, "01.06.2026 12:00") {
		t.Errorf("scheduled reply = %q", got)
	}

	got = f.ConfirmReply(&usecase.ConfirmResult{ScheduleType: model.ScheduleRecurring, CronExpr: "0 12 * * 1"})
	if !strings.Contains(got, "0 12 * * 1") {
		t.Errorf("recurring reply = %q", got)
	}
}

func TestUserLineFlagsBlockedUsers(t *testing.T) {
	joined := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	got := UserLine(&model.User{TelegramID: 42, Username: "alice", JoinedAt: joined})
	for _, want := range []string{"alice", "14.02.2026"} {
		if !strings.Contains(got, want) {
			t.Errorf("line missing %q: %s", want, got)
		}
	}
	if strings.Contains(got, "🚫") {
		t.Errorf("unblocked user flagged: %s", got)
	}

	got = UserLine(&model.User{TelegramID: 43, JoinedAt: joined, IsBlocked: true})
	if !strings.Contains(got, "🚫") || !strings.Contains(got, "id 43") {
		t.Errorf("blocked handle-less user line = %s", got)
	}
}

func TestUserCardShowsStatusAndPurchases(t *testing.T) {
	u := &model.User{
		TelegramID:     42,
		Username:       "alice",
		JoinedAt:       time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		LastActivityAt: time.Date(2026, 8, 1, 9, 15, 0, 0, time.UTC),
	}

	got := UserCard(u, 3)
	for _, want := range []string{"alice", "42", "14.02.2026", "01.08.2026 09:15", "Purchases: 3", "active"} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q:\n%s", want, got)
		}
	}

	u.IsBlocked = true
	if !strings.Contains(UserCard(u, 3), "blocked") {
		t.Error("blocked status not shown")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := formatMoney(490000); got != "4900.00" {
		t.Errorf("formatMoney(490000) = %q", got)
	}
	if got := formatMoney(0); got != "0.00" {
		t.Errorf("formatMoney(0) = %q", got)
	}
}
