package models

import "time"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// User-facing notification texts.
const (
	MsgSelectWindow       = "Please select a delivery window"
	MsgScheduledOK        = "Delivery scheduled successfully! You'll receive SMS/email confirmation."
	MsgRecommendationFail = "We couldn't load delivery windows. Please try again."
	MsgSchedulingFail     = "We couldn't schedule your delivery. Please try again."
	MsgAlreadyScheduled   = "This delivery has already been scheduled."
)

// Notification is a transient message shown once to the user (a toast).
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// ConfirmationPayload is the queued job carrying a confirmation push.
type ConfirmationPayload struct {
	UserID         string `json:"userId"`
	ConfirmationID string `json:"confirmationId"`
	SlotID         string `json:"slotId"`
	Window         string `json:"window"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}
