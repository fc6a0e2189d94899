package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"sparkathon/models"

	"github.com/stretchr/testify/require"
)

func TestStaticSourceReturnsFixedBatch(t *testing.T) {
	src := NewStaticSource(0)

	slots, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.NoError(t, err)
	require.Len(t, slots, 4)

	ids := []string{}
	probs := []int{}
	for _, s := range slots {
		ids = append(ids, s.ID)
		probs = append(probs, s.Probability)
	}
	require.Equal(t, []string{"1", "2", "3", "4"}, ids)
	require.Equal(t, []int{94, 89, 76, 72}, probs)
	require.True(t, slots[2].Premium)
	require.NotNil(t, slots[2].Price)
	require.InDelta(t, 4.99, *slots[2].Price, 0.0001)
	require.NoError(t, Validate(slots))
}

func TestStaticSourceReturnsFreshCopies(t *testing.T) {
	src := NewStaticSource(0)
	first, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.NoError(t, err)

	first[0].Reason = "mutated"
	*first[2].Price = 100

	second, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.NoError(t, err)
	require.Equal(t, "High success rate based on your delivery history", second[0].Reason)
	require.InDelta(t, 4.99, *second[2].Price, 0.0001)
}

func TestStaticSourceHonoursCancellation(t *testing.T) {
	src := NewStaticSource(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slots, err := src.FetchRecommendations(ctx, models.RecommendationRequest{})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, slots)
}

func TestValidate(t *testing.T) {
	p := 2.5
	tests := []struct {
		name  string
		slots []models.TimeSlot
		want  error
	}{
		{"empty", nil, ErrEmptyBatch},
		{"missing id", []models.TimeSlot{{Probability: 10}}, ErrInvalidSlot},
		{"duplicate", []models.TimeSlot{{ID: "a"}, {ID: "a"}}, ErrInvalidSlot},
		{"range", []models.TimeSlot{{ID: "a", Probability: 101}}, ErrInvalidSlot},
		{"premium without price", []models.TimeSlot{{ID: "a", Premium: true}}, ErrInvalidSlot},
		{"price without premium", []models.TimeSlot{{ID: "a", Price: &p}}, ErrInvalidSlot},
		{"ok", []models.TimeSlot{{ID: "a", Price: &p, Premium: true}, {ID: "b"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.slots)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestGeminiSourceParsesReply(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n[" +
		`{"id":"a","date":"Today","time":"1:00 PM - 3:00 PM","probability":91,"reason":"Usually home"},` +
		`{"id":"b","date":"Today","time":"7:00 PM - 9:00 PM","probability":70,"reason":"Evening","price":5.5}` +
		"]\n```"}
	src := NewGeminiSource(gen)

	slots, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{
		CustomerName: "Ada",
		Address:      "1 Main St",
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.Equal(t, "a", slots[0].ID)
	require.False(t, slots[0].Premium)
	require.True(t, slots[1].Premium)
	require.Equal(t, "Express +$5.50", slots[1].Badge())
	require.Contains(t, gen.prompt, "Customer: Ada")
	require.Contains(t, gen.prompt, "Delivery address: 1 Main St")
}

func TestGeminiSourceRejectsBadReplies(t *testing.T) {
	src := NewGeminiSource(&fakeGenerator{reply: "not json"})
	_, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.Error(t, err)

	src = NewGeminiSource(&fakeGenerator{reply: "[]"})
	_, err = src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.ErrorIs(t, err, ErrEmptyBatch)

	boom := errors.New("quota")
	src = NewGeminiSource(&fakeGenerator{err: boom})
	_, err = src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.ErrorIs(t, err, boom)
}

func TestGeminiSourceTruncatesToMaxSlots(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"id":"1"},{"id":"2"},{"id":"3"}]`}
	src := &GeminiSource{Generator: gen, MaxSlots: 2}

	slots, err := src.FetchRecommendations(context.Background(), models.RecommendationRequest{})
	require.NoError(t, err)
	require.Len(t, slots, 2)
}
