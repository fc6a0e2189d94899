package scheduling

import "errors"

var (
	ErrInvalidTransition  = errors.New("transition not allowed in current phase")
	ErrSlotsNotLoaded     = errors.New("delivery windows are not loaded yet")
	ErrUnknownSlot        = errors.New("delivery window is not part of the current recommendations")
	ErrNoSlotSelected     = errors.New("no delivery window selected")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrAlreadyScheduled   = errors.New("delivery already scheduled in this session")
	ErrSessionClosed      = errors.New("scheduling session is closed")
	ErrSessionNotFound    = errors.New("scheduling session not found")
)
