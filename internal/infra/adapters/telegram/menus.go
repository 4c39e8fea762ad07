package telegram

import (
	"fmt"

	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/usecase"
)

// Keyboard builders. Every callback value here must round-trip through
// ParseAction; action_test.go keeps the two in sync.

func adminMenuKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "📣 New broadcast", Data: "bc:new"}},
		{{Text: "🗓 Scheduled", Data: "bc:list"}, {Text: "🗂 History", Data: "bc:history"}},
		{{Text: "👥 Users", Data: "users:0"}, {Text: "📈 Stats", Data: "menu:stats"}},
		{{Text: "📚 Courses", Data: "menu:courses"}},
	}
}

func audienceKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "👥 All users", Data: "aud:all"}},
		{{Text: "💳 Course buyers", Data: "aud:buyers"}},
		{{Text: "😴 Inactive users", Data: "aud:inactive"}},
		{{Text: "✖️ Cancel", Data: "confirm:cancel"}},
	}
}

func scheduleKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "🚀 Send now", Data: "sched:now"}},
		{{Text: "📅 Pick date & time", Data: "sched:later"}},
		{{Text: "🔁 Recurring", Data: "sched:recurring"}},
		{{Text: "✖️ Cancel", Data: "confirm:cancel"}},
	}
}

func recurringKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "Daily at 12:00", Data: "rec:daily"}},
		{{Text: "Weekly on Monday", Data: "rec:weekly"}},
		{{Text: "Monthly on the 1st", Data: "rec:monthly"}},
		{{Text: "⚙️ Custom cron", Data: "rec:custom"}},
		{{Text: "✖️ Cancel", Data: "confirm:cancel"}},
	}
}

func confirmKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "✅ Send", Data: "confirm:send"}},
		{
			{Text: "✏️ Message", Data: "edit:message"},
			{Text: "👥 Audience", Data: "edit:audience"},
			{Text: "🗓 Schedule", Data: "edit:schedule"},
		},
		{{Text: "✖️ Cancel", Data: "confirm:cancel"}},
	}
}

func cancelKeyboard() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "✖️ Cancel", Data: "confirm:cancel"}},
	}
}

// wizardKeyboard picks the keyboard matching a wizard step. Text-input
// steps only get a cancel escape hatch.
func wizardKeyboard(step model.WizardStep) [][]adapter.InlineButton {
	switch step {
	case model.StepSelectingAudience, model.StepEditingAudience:
		return audienceKeyboard()
	case model.StepSelectingSchedule, model.StepEditingSchedule:
		return scheduleKeyboard()
	case model.StepSelectingRecurring, model.StepEditingRecurring:
		return recurringKeyboard()
	case model.StepConfirmingBroadcast:
		return confirmKeyboard()
	default:
		return cancelKeyboard()
	}
}

// scheduledListKeyboard renders one delete button per listed item, keyed by
// storage ID so the list can be re-rendered without ordinal drift. The
// buttons only ask; deletion happens after the confirmation keyboard.
func scheduledListKeyboard(items []usecase.ScheduledItem) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(items)+1)
	for _, it := range items {
		if it.Broadcast != nil {
			rows = append(rows, []adapter.InlineButton{
				{Text: fmt.Sprintf("🗑 Delete #%d", it.Ordinal), Data: "del:ask:one:" + it.Broadcast.ID},
			})
		} else {
			rows = append(rows, []adapter.InlineButton{
				{Text: fmt.Sprintf("🗑 Delete #%d", it.Ordinal), Data: "del:ask:rec:" + it.Recurring.ID},
			})
		}
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Menu", Data: "menu:main"}})
	return rows
}

func deleteConfirmKeyboard(confirmData string) [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "🗑 Yes, delete", Data: confirmData}},
		{{Text: "◀️ Back to list", Data: "bc:list"}},
	}
}

func courseListKeyboard(courses []*model.Course) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []adapter.InlineButton{{Text: c.Title, Data: "course:" + c.ID}})
	}
	return rows
}

func courseDetailKeyboard(c *model.Course, hasAccess bool) [][]adapter.InlineButton {
	var rows [][]adapter.InlineButton
	if hasAccess {
		rows = append(rows, []adapter.InlineButton{{Text: "🔑 Get access link", Data: "course:invite:" + c.ID}})
	} else if c.AccessLink != "" {
		rows = append(rows, []adapter.InlineButton{{Text: "🛒 Buy course", URL: c.AccessLink}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Courses", Data: "menu:courses"}})
	return rows
}

// userListKeyboard links every listed user to their card, plus pagination.
func userListKeyboard(users []*model.User, offset, pageSize int) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(users)+2)
	for _, u := range users {
		label := u.Username
		if label == "" {
			label = fmt.Sprintf("id %d", u.TelegramID)
		}
		if u.IsBlocked {
			label += " 🚫"
		}
		rows = append(rows, []adapter.InlineButton{
			{Text: label, Data: fmt.Sprintf("user:%d", u.TelegramID)},
		})
	}
	var nav []adapter.InlineButton
	if offset > 0 {
		prev := offset - pageSize
		if prev < 0 {
			prev = 0
		}
		nav = append(nav, adapter.InlineButton{Text: "◀️ Prev", Data: fmt.Sprintf("users:%d", prev)})
	}
	if len(users) == pageSize {
		nav = append(nav, adapter.InlineButton{Text: "Next ▶️", Data: fmt.Sprintf("users:%d", offset+pageSize)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []adapter.InlineButton{{Text: "◀️ Menu", Data: "menu:main"}})
	return rows
}

// userDetailKeyboard toggles the block flag and returns to the listing.
func userDetailKeyboard(u *model.User) [][]adapter.InlineButton {
	toggle := adapter.InlineButton{Text: "🚫 Block", Data: fmt.Sprintf("user:block:%d", u.TelegramID)}
	if u.IsBlocked {
		toggle = adapter.InlineButton{Text: "✅ Unblock", Data: fmt.Sprintf("user:unblock:%d", u.TelegramID)}
	}
	return [][]adapter.InlineButton{
		{toggle},
		{{Text: "◀️ Users", Data: "users:0"}},
	}
}
