package scheduling

import (
	"context"
	"time"

	"sparkathon/models"

	"github.com/google/uuid"
)

// DefaultSubmissionDelay emulates the booking backend's response time.
const DefaultSubmissionDelay = 2 * time.Second

// SimulatedSubmitter accepts every request after Delay.
type SimulatedSubmitter struct {
	Delay time.Duration
}

func NewSimulatedSubmitter(delay time.Duration) *SimulatedSubmitter {
	return &SimulatedSubmitter{Delay: delay}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, req models.ScheduleRequest) (*models.ScheduleConfirmation, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.ScheduleConfirmation{
		ConfirmationID: uuid.New().String(),
		SessionID:      req.SessionID,
		OwnerID:        req.OwnerID,
		CustomerName:   req.CustomerName,
		Address:        req.Address,
		Slot:           req.Slot.Clone(),
		Message:        models.MsgScheduledOK,
		ScheduledAt:    time.Now(),
	}, nil
}
