package scheduling

import (
	"time"

	"sparkathon/models"
)

// The functions below are the view-model's transitions. Each takes a snapshot
// and returns the next one; a rejected transition returns the input unchanged
// together with an error. Inputs are never mutated.

var now = time.Now

// Policy tunes the submission workflow.
type Policy struct {
	// LockAfterSuccess rejects further submissions once one has succeeded.
	LockAfterSuccess bool
}

// NewState returns the initial snapshot for a freshly mounted view.
func NewState(sessionID string) models.SchedulingState {
	return models.SchedulingState{
		SessionID: sessionID,
		Phase:     models.PhaseIdle,
		UpdatedAt: now(),
	}
}

func touch(s models.SchedulingState) models.SchedulingState {
	s.Version++
	s.UpdatedAt = now()
	return s
}

// BeginLoading starts a recommendation fetch: idle, or a failed load, to loading.
func BeginLoading(s models.SchedulingState) (models.SchedulingState, error) {
	switch {
	case s.Phase == models.PhaseIdle:
	case s.Phase == models.PhaseFailed && s.Failure != nil && s.Failure.Stage == models.StageLoad:
	default:
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = models.PhaseLoading
	next.Failure = nil
	return touch(next), nil
}

// SlotsLoaded stores a resolved batch: loading to ready, with no selection.
func SlotsLoaded(s models.SchedulingState, slots []models.TimeSlot) (models.SchedulingState, error) {
	if s.Phase != models.PhaseLoading {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = models.PhaseReady
	next.Slots = models.CloneSlots(slots)
	next.SelectedSlotID = ""
	return touch(next), nil
}

// LoadFailed records a failed fetch: loading to failed(load).
func LoadFailed(s models.SchedulingState, err error) (models.SchedulingState, error) {
	if s.Phase != models.PhaseLoading {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = models.PhaseFailed
	next.Failure = &models.Failure{Stage: models.StageLoad, Message: errMessage(err)}
	return touch(next), nil
}

// SelectSlot replaces the selection. Selecting the current selection again
// returns s unchanged. After a submission outcome the session returns to
// ready; while a submission is in flight the phase is kept.
func SelectSlot(s models.SchedulingState, id string) (models.SchedulingState, error) {
	if !s.SlotsLoaded() {
		return s, ErrSlotsNotLoaded
	}
	if _, ok := s.Slot(id); !ok {
		return s, ErrUnknownSlot
	}
	if s.SelectedSlotID == id && s.Phase != models.PhaseSubmitted && s.Phase != models.PhaseFailed {
		return s, nil
	}
	next := s.Clone()
	next.SelectedSlotID = id
	if next.Phase == models.PhaseSubmitted || next.Phase == models.PhaseFailed {
		next.Phase = models.PhaseReady
		next.Failure = nil
	}
	return touch(next), nil
}

// UpdateDetails stores the free-text delivery fields.
func UpdateDetails(s models.SchedulingState, customerName, address string) models.SchedulingState {
	if s.CustomerName == customerName && s.Address == address {
		return s
	}
	next := s.Clone()
	next.CustomerName = customerName
	next.Address = address
	return touch(next)
}

// Submit starts a submission of the selected slot.
func Submit(s models.SchedulingState, p Policy) (models.SchedulingState, error) {
	if s.SubmissionInFlight {
		return s, ErrSubmissionInFlight
	}
	if s.SelectedSlotID == "" {
		return s, ErrNoSlotSelected
	}
	if p.LockAfterSuccess && s.Submissions > 0 {
		return s, ErrAlreadyScheduled
	}
	if _, ok := s.Slot(s.SelectedSlotID); !ok {
		return s, ErrUnknownSlot
	}
	next := s.Clone()
	next.Phase = models.PhaseSubmitting
	next.SubmissionInFlight = true
	next.SubmittingSlotID = s.SelectedSlotID
	next.Failure = nil
	return touch(next), nil
}

// SubmissionSucceeded completes the in-flight submission.
func SubmissionSucceeded(s models.SchedulingState) (models.SchedulingState, error) {
	if s.Phase != models.PhaseSubmitting || !s.SubmissionInFlight {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = models.PhaseSubmitted
	next.SubmissionInFlight = false
	next.SubmittingSlotID = ""
	next.Submissions++
	return touch(next), nil
}

// SubmissionFailed ends the in-flight submission with an error. The selection
// is kept so Submit can retry.
func SubmissionFailed(s models.SchedulingState, err error) (models.SchedulingState, error) {
	if s.Phase != models.PhaseSubmitting || !s.SubmissionInFlight {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = models.PhaseFailed
	next.SubmissionInFlight = false
	next.SubmittingSlotID = ""
	next.Failure = &models.Failure{Stage: models.StageSubmit, Message: errMessage(err)}
	return touch(next), nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
