package telegram

import (
	"strings"

	"telegram-agency-bot/internal/domain"
)

// ActionKind tags a parsed callback action. Callback data is parsed exactly
// once, at the update boundary; handlers switch on the kind instead of
// re-splitting strings.
type ActionKind int

const (
	ActionUnknown ActionKind = iota

	ActionMenu // Arg: main | broadcasts | users | courses | stats

	ActionBroadcastNew
	ActionBroadcastList
	ActionBroadcastHistory

	ActionAudience  // Arg: segment key
	ActionSchedule  // Arg: now | later | recurring
	ActionRecurring // Arg: daily | weekly | monthly | custom
	ActionEdit      // Arg: message | audience | schedule
	ActionConfirm
	ActionCancel

	ActionDeleteBroadcastAsk // Arg: broadcast id
	ActionDeleteRecurringAsk // Arg: recurring id
	ActionDeleteBroadcast    // Arg: broadcast id
	ActionDeleteRecurring    // Arg: recurring id

	ActionCourse       // Arg: course id
	ActionCourseInvite // Arg: course id
	ActionUserList     // Arg: page offset
	ActionUserDetail   // Arg: telegram id
	ActionUserBlock    // Arg: telegram id
	ActionUserUnblock  // Arg: telegram id
)

// Action is one parsed inline-button press.
type Action struct {
	Kind ActionKind
	Arg  string
}

// ParseAction maps raw callback data onto a typed action. Unknown data
// returns domain.ErrInvalidArgument; the caller acknowledges the callback
// and drops it.
func ParseAction(data string) (Action, error) {
	data = strings.TrimSpace(data)
	prefix, arg := data, ""
	if i := strings.Index(data, ":"); i >= 0 {
		prefix, arg = data[:i], data[i+1:]
	}

	switch prefix {
	case "menu":
		switch arg {
		case "main", "broadcasts", "users", "courses", "stats":
			return Action{Kind: ActionMenu, Arg: arg}, nil
		}
	case "bc":
		switch arg {
		case "new":
			return Action{Kind: ActionBroadcastNew}, nil
		case "list":
			return Action{Kind: ActionBroadcastList}, nil
		case "history":
			return Action{Kind: ActionBroadcastHistory}, nil
		}
	case "aud":
		if arg != "" {
			return Action{Kind: ActionAudience, Arg: arg}, nil
		}
	case "sched":
		switch arg {
		case "now", "later", "recurring":
			return Action{Kind: ActionSchedule, Arg: arg}, nil
		}
	case "rec":
		switch arg {
		case "daily", "weekly", "monthly", "custom":
			return Action{Kind: ActionRecurring, Arg: arg}, nil
		}
	case "edit":
		switch arg {
		case "message", "audience", "schedule":
			return Action{Kind: ActionEdit, Arg: arg}, nil
		}
	case "confirm":
		switch arg {
		case "send":
			return Action{Kind: ActionConfirm}, nil
		case "cancel":
			return Action{Kind: ActionCancel}, nil
		}
	case "del":
		// del:one:<id> and del:rec:<id> delete; the ask: variants only
		// show the confirmation prompt.
		rest := arg
		confirmed := true
		if strings.HasPrefix(rest, "ask:") {
			rest = strings.TrimPrefix(rest, "ask:")
			confirmed = false
		}
		if i := strings.Index(rest, ":"); i >= 0 {
			kind, id := rest[:i], rest[i+1:]
			if id != "" {
				switch {
				case kind == "one" && confirmed:
					return Action{Kind: ActionDeleteBroadcast, Arg: id}, nil
				case kind == "one":
					return Action{Kind: ActionDeleteBroadcastAsk, Arg: id}, nil
				case kind == "rec" && confirmed:
					return Action{Kind: ActionDeleteRecurring, Arg: id}, nil
				case kind == "rec":
					return Action{Kind: ActionDeleteRecurringAsk, Arg: id}, nil
				}
			}
		}
	case "course":
		if strings.HasPrefix(arg, "invite:") {
			if id := strings.TrimPrefix(arg, "invite:"); id != "" {
				return Action{Kind: ActionCourseInvite, Arg: id}, nil
			}
		} else if arg != "" {
			return Action{Kind: ActionCourse, Arg: arg}, nil
		}
	case "user":
		switch {
		case strings.HasPrefix(arg, "block:"):
			if id := strings.TrimPrefix(arg, "block:"); id != "" {
				return Action{Kind: ActionUserBlock, Arg: id}, nil
			}
		case strings.HasPrefix(arg, "unblock:"):
			if id := strings.TrimPrefix(arg, "unblock:"); id != "" {
				return Action{Kind: ActionUserUnblock, Arg: id}, nil
			}
		case arg != "":
			return Action{Kind: ActionUserDetail, Arg: arg}, nil
		}
	case "users":
		return Action{Kind: ActionUserList, Arg: arg}, nil
	}
	return Action{}, domain.ErrInvalidArgument
}
