package model

import "time"

// WizardStep is a state of the broadcast creation wizard.
type WizardStep string

const (
	StepWaitingForMessage   WizardStep = "waiting_for_message"
	StepSelectingAudience   WizardStep = "selecting_audience"
	StepSelectingSchedule   WizardStep = "selecting_schedule"
	StepWaitingForDateTime  WizardStep = "waiting_for_datetime"
	StepSelectingRecurring  WizardStep = "selecting_recurring"
	StepWaitingForCron      WizardStep = "waiting_for_cron"
	StepConfirmingBroadcast WizardStep = "confirming_broadcast"
	StepEditingMessage      WizardStep = "editing_message"
	StepEditingAudience     WizardStep = "editing_audience"
	StepEditingSchedule     WizardStep = "editing_schedule"
	StepEditingDateTime     WizardStep = "editing_datetime"
	StepEditingRecurring    WizardStep = "editing_recurring"
	StepEditingCron         WizardStep = "editing_cron"
)

// Editing reports whether the step is an edit detour that returns straight
// to confirmation.
func (s WizardStep) Editing() bool {
	switch s {
	case StepEditingMessage, StepEditingAudience, StepEditingSchedule,
		StepEditingDateTime, StepEditingRecurring, StepEditingCron:
		return true
	}
	return false
}

// BroadcastDraft is the working state collected while an administrator walks
// the wizard. It lives only inside one wizard session and is discarded on
// cancel, confirmation, or session expiry.
type BroadcastDraft struct {
	MessageText string `json:"message_text"`

	Segment       Segment `json:"segment,omitempty"`
	AudienceCount int     `json:"audience_count,omitempty"`

	ScheduleType ScheduleType  `json:"schedule_type,omitempty"`
	ScheduledAt  *time.Time    `json:"scheduled_at,omitempty"`
	Cadence      RecurringType `json:"cadence,omitempty"`
	CronExpr     string        `json:"cron_expr,omitempty"`
}

// WizardSession is one administrator's in-progress wizard, keyed by
// (admin id, chat id). A second concurrent session for the same key
// overwrites the first; last write wins.
type WizardSession struct {
	AdminID   int64          `json:"admin_id"`
	ChatID    int64          `json:"chat_id"`
	Step      WizardStep     `json:"step"`
	Draft     BroadcastDraft `json:"draft"`
	UpdatedAt time.Time      `json:"updated_at"`
}
