package recommendation

import (
	"context"

	"sparkathon/models"
)

// Source supplies a ranked batch of delivery windows. Each call resolves
// exactly once with a complete batch or an error; returned slots are owned by
// the caller. Batch order is display order.
type Source interface {
	FetchRecommendations(ctx context.Context, req models.RecommendationRequest) ([]models.TimeSlot, error)
}
