package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sparkathon/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ContentGenerator turns a prompt into model text.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GeminiSource asks a language model for ranked delivery windows.
type GeminiSource struct {
	Generator ContentGenerator
	MaxSlots  int
}

func NewGeminiSource(gen ContentGenerator) *GeminiSource {
	return &GeminiSource{Generator: gen, MaxSlots: 4}
}

func (s *GeminiSource) FetchRecommendations(ctx context.Context, req models.RecommendationRequest) ([]models.TimeSlot, error) {
	text, err := s.Generator.GenerateContent(ctx, s.prompt(req))
	if err != nil {
		return nil, err
	}
	slots, err := parseSlots(text)
	if err != nil {
		return nil, err
	}
	if s.MaxSlots > 0 && len(slots) > s.MaxSlots {
		slots = slots[:s.MaxSlots]
	}
	if err := Validate(slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *GeminiSource) prompt(req models.RecommendationRequest) string {
	n := s.MaxSlots
	if n <= 0 {
		n = 4
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You recommend home delivery windows. Suggest up to %d windows for today or tomorrow, ", n)
	sb.WriteString("ordered from best to worst.\n")
	if req.CustomerName != "" {
		fmt.Fprintf(&sb, "Customer: %s\n", req.CustomerName)
	}
	if req.Address != "" {
		fmt.Fprintf(&sb, "Delivery address: %s\n", req.Address)
	}
	sb.WriteString(`Reply with a JSON array only. Each element has: "id" (string, unique), "date" ("Today" or "Tomorrow"), `)
	sb.WriteString(`"time" (e.g. "2:00 PM - 4:00 PM"), "probability" (integer 0-100, chance the customer is home), `)
	sb.WriteString(`"reason" (one short sentence), and "price" (number, only for express evening windows).`)
	return sb.String()
}

type geminiSlot struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Probability int      `json:"probability"`
	Reason      string   `json:"reason"`
	Price       *float64 `json:"price"`
}

// parseSlots decodes the model's JSON reply, tolerating a markdown code fence.
func parseSlots(text string) ([]models.TimeSlot, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []geminiSlot
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}

	slots := make([]models.TimeSlot, 0, len(raw))
	for _, r := range raw {
		slot := models.TimeSlot{
			ID:          r.ID,
			Date:        r.Date,
			Time:        r.Time,
			Probability: r.Probability,
			Reason:      r.Reason,
		}
		if r.Price != nil && *r.Price > 0 {
			slot.Price = price(*r.Price)
			slot.Premium = true
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
