package recommendation

import (
	"context"
	"time"

	"sparkathon/models"
)

// DefaultDelay emulates the time the recommender takes to respond.
const DefaultDelay = time.Second

func price(v float64) *float64 { return &v }

var defaultSlots = []models.TimeSlot{
	{
		ID:          "1",
		Time:        "2:00 PM - 4:00 PM",
		Date:        "Today",
		Probability: 94,
		Reason:      "High success rate based on your delivery history",
	},
	{
		ID:          "2",
		Time:        "10:00 AM - 12:00 PM",
		Date:        "Tomorrow",
		Probability: 89,
		Reason:      "Optimal window for your neighborhood",
	},
	{
		ID:          "3",
		Time:        "6:00 PM - 8:00 PM",
		Date:        "Today",
		Probability: 76,
		Reason:      "Alternative evening slot",
		Price:       price(4.99),
		Premium:     true,
	},
	{
		ID:          "4",
		Time:        "9:00 AM - 11:00 AM",
		Date:        "Tomorrow",
		Probability: 72,
		Reason:      "Early morning availability",
	},
}

// DefaultSlots returns a fresh copy of the fixed recommendation batch.
func DefaultSlots() []models.TimeSlot {
	return models.CloneSlots(defaultSlots)
}

// StaticSource resolves with the fixed batch after Delay.
type StaticSource struct {
	Delay time.Duration
}

func NewStaticSource(delay time.Duration) *StaticSource {
	return &StaticSource{Delay: delay}
}

func (s *StaticSource) FetchRecommendations(ctx context.Context, _ models.RecommendationRequest) ([]models.TimeSlot, error) {
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
	return DefaultSlots(), nil
}
