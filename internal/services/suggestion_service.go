package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Suggestion struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

const suggestionCount = 3

const suggestionPrompt = `Based on the following information, suggest %d real or realistic-sounding charities, NGOs, or soup kitchens.
- City: %s
- Type of surplus food: %s

The suggestions should be for places that would likely accept a donation of this type of food.
Respond ONLY with valid JSON in this shape, with no extra text or markdown:
{"suggestions": [{"name": "Name of Charity", "contact": "+91-XXXXXXXXXX"}]}`

type SuggestionService struct {
	generator TextGenerator
	logger    *slog.Logger
}

func NewSuggestionService(generator TextGenerator, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{generator: generator, logger: logger}
}

func (s *SuggestionService) Suggest(ctx context.Context, location, foodType string) ([]Suggestion, error) {
	location = strings.TrimSpace(location)
	foodType = strings.TrimSpace(foodType)
	if location == "" || foodType == "" {
		return nil, newError(ErrValidation, "Location and food type are required.")
	}
	if s.generator == nil {
		return nil, newError(ErrUpstream, "AI suggestions are not configured")
	}

	text, err := s.generator.GenerateText(ctx, fmt.Sprintf(suggestionPrompt, suggestionCount, location, foodType))
	if err != nil {
		s.logger.Error("suggestion generation failed", "error", err)
		return nil, suggestionFailed()
	}

	var body struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &body); err != nil {
		s.logger.Error("suggestion response is not JSON", "error", err)
		return nil, suggestionFailed()
	}

	suggestions := body.Suggestions[:0]
	for _, sg := range body.Suggestions {
		if strings.TrimSpace(sg.Name) != "" {
			suggestions = append(suggestions, sg)
		}
	}
	if len(suggestions) == 0 {
		s.logger.Error("suggestion response had no entries")
		return nil, suggestionFailed()
	}
	if len(suggestions) > suggestionCount {
		suggestions = suggestions[:suggestionCount]
	}
	return suggestions, nil
}

func suggestionFailed() error {
	return newError(ErrUpstream, "Failed to get AI suggestions. Please try again.")
}

// stripCodeFence removes a surrounding ``` or ```json fence if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
