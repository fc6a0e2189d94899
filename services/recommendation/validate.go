package recommendation

import (
	"errors"
	"fmt"

	"sparkathon/models"
)

var (
	ErrEmptyBatch  = errors.New("recommendation batch is empty")
	ErrInvalidSlot = errors.New("invalid recommendation slot")
)

// Validate checks a batch before it is shown: non-empty, unique non-empty ids,
// probabilities within 0..100, and a surcharge exactly on premium slots.
func Validate(slots []models.TimeSlot) error {
	if len(slots) == 0 {
		return ErrEmptyBatch
	}
	seen := make(map[string]struct{}, len(slots))
	for i, s := range slots {
		if s.ID == "" {
			return fmt.Errorf("%w: slot %d has no id", ErrInvalidSlot, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidSlot, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Probability < 0 || s.Probability > 100 {
			return fmt.Errorf("%w: slot %q probability %d out of range", ErrInvalidSlot, s.ID, s.Probability)
		}
		if s.Premium != (s.Price != nil) {
			return fmt.Errorf("%w: slot %q premium flag does not match surcharge", ErrInvalidSlot, s.ID)
		}
		if s.Price != nil && *s.Price < 0 {
			return fmt.Errorf("%w: slot %q has a negative surcharge", ErrInvalidSlot, s.ID)
		}
	}
	return nil
}
