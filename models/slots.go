package models

import "fmt"

// TimeSlot is one recommended delivery window. Values are immutable once
// produced; use Clone before handing one to another owner.
type TimeSlot struct {
	ID          string   `json:"id"`              // unique within one recommendation batch
	Date        string   `json:"date"`            // display string, e.g. "Today"
	Time        string   `json:"time"`            // display string, e.g. "2:00 PM - 4:00 PM"
	Probability int      `json:"probability"`     // success estimate, 0..100
	Reason      string   `json:"reason"`          // human-readable justification
	Price       *float64 `json:"price,omitempty"` // express surcharge, set iff Premium
	Premium     bool     `json:"premium"`
}

// Probability tiers used to colour the success badge.
const (
	TierHigh = "high"
	TierGood = "good"
	TierFair = "fair"
	TierLow  = "low"
)

// ProbabilityTier buckets a success probability for display.
func ProbabilityTier(probability int) string {
	switch {
	case probability >= 90:
		return TierHigh
	case probability >= 80:
		return TierGood
	case probability >= 70:
		return TierFair
	default:
		return TierLow
	}
}

// Clone returns a deep copy of the slot.
func (s TimeSlot) Clone() TimeSlot {
	if s.Price != nil {
		p := *s.Price
		s.Price = &p
	}
	return s
}

// Badge returns the express surcharge label for premium slots.
func (s TimeSlot) Badge() string {
	if !s.Premium || s.Price == nil {
		return ""
	}
	return fmt.Sprintf("Express +$%.2f", *s.Price)
}

func (s TimeSlot) SuccessLabel() string {
	return fmt.Sprintf("%d%% Success Rate", s.Probability)
}

// CloneSlots deep-copies a slot batch. A nil batch stays nil.
func CloneSlots(slots []TimeSlot) []TimeSlot {
	if slots == nil {
		return nil
	}
	out := make([]TimeSlot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}

// SlotView is the JSON shape rendered by the scheduling endpoints.
type SlotView struct {
	TimeSlot
	Tier         string `json:"tier"`
	Badge        string `json:"badge,omitempty"`
	SuccessLabel string `json:"successLabel"`
	Selected     bool   `json:"selected"`
}

// RecommendationRequest carries what is known about the delivery when
// recommendations are requested.
type RecommendationRequest struct {
	SessionID    string `json:"sessionId"`
	CustomerName string `json:"customerName,omitempty"`
	Address      string `json:"address,omitempty"`
}
