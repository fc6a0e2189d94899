package models

import "time"

// SchedulingPhase is the view-model state of a scheduling session.
type SchedulingPhase string

const (
	PhaseIdle       SchedulingPhase = "idle"
	PhaseLoading    SchedulingPhase = "loading"
	PhaseReady      SchedulingPhase = "ready"
	PhaseSubmitting SchedulingPhase = "submitting"
	PhaseSubmitted  SchedulingPhase = "submitted"
	PhaseFailed     SchedulingPhase = "failed"
)

// FailureStage tells which asynchronous step a failed session stopped at.
type FailureStage string

const (
	StageLoad   FailureStage = "load"
	StageSubmit FailureStage = "submit"
)

type Failure struct {
	Stage   FailureStage `json:"stage"`
	Message string       `json:"message"`
}

// SchedulingState is an immutable snapshot of one scheduling session.
type SchedulingState struct {
	SessionID          string          `json:"sessionId"`
	Phase              SchedulingPhase `json:"phase"`
	CustomerName       string          `json:"customerName"`
	Address            string          `json:"address"`
	Slots              []TimeSlot      `json:"slots"`
	SelectedSlotID     string          `json:"selectedSlotId,omitempty"`
	SubmittingSlotID   string          `json:"submittingSlotId,omitempty"`
	SubmissionInFlight bool            `json:"submissionInFlight"`
	Submissions        int             `json:"submissions"` // successful submissions in this session
	Failure            *Failure        `json:"failure,omitempty"`
	Version            uint64          `json:"version"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// SlotsLoaded reports whether recommendations have been received.
func (s SchedulingState) SlotsLoaded() bool {
	return len(s.Slots) > 0
}

// CanSubmit mirrors the schedule button: enabled with a selection and nothing in flight.
func (s SchedulingState) CanSubmit() bool {
	return s.SlotsLoaded() && s.SelectedSlotID != "" && !s.SubmissionInFlight
}

// Slot looks up a slot of the current batch by id.
func (s SchedulingState) Slot(id string) (TimeSlot, bool) {
	for _, slot := range s.Slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// Clone returns a copy that shares no mutable memory with s.
func (s SchedulingState) Clone() SchedulingState {
	s.Slots = CloneSlots(s.Slots)
	if s.Failure != nil {
		f := *s.Failure
		s.Failure = &f
	}
	return s
}

// SlotViews decorates the slots for display.
func (s SchedulingState) SlotViews() []SlotView {
	views := make([]SlotView, 0, len(s.Slots))
	for _, slot := range s.Slots {
		views = append(views, SlotView{
			TimeSlot:     slot.Clone(),
			Tier:         ProbabilityTier(slot.Probability),
			Badge:        slot.Badge(),
			SuccessLabel: slot.SuccessLabel(),
			Selected:     slot.ID == s.SelectedSlotID,
		})
	}
	return views
}

// ScheduleRequest is handed to a Submitter when a session submits.
type ScheduleRequest struct {
	SessionID    string   `json:"sessionId"`
	OwnerID      string   `json:"ownerId,omitempty"`
	CustomerName string   `json:"customerName"`
	Address      string   `json:"address"`
	Slot         TimeSlot `json:"slot"`
}

// ScheduleConfirmation is returned by a Submitter on success.
type ScheduleConfirmation struct {
	ConfirmationID string    `json:"confirmationId"`
	SessionID      string    `json:"sessionId"`
	OwnerID        string    `json:"ownerId,omitempty"`
	CustomerName   string    `json:"customerName,omitempty"`
	Address        string    `json:"address,omitempty"`
	Slot           TimeSlot  `json:"slot"`
	Message        string    `json:"message"`
	ScheduledAt    time.Time `json:"scheduledAt"`
}
