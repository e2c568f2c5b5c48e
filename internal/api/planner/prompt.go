package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	generativeAI "github.com/FACorreiaa/go-poi-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const promptDescriptionRunes = 220

const systemPrompt = `You are a local travel planner. You assemble plans ONLY from the candidate places provided.

Choose one of two response modes:
1. SEARCH: the user is looking for a kind of place. Return exactly one section with 2-3 options.
2. DAY PLAN: the user describes a day or several activities. Return 4-8 sections ordered by time.
   Each activity section has one primary option and up to 2 reserveIds.
   If the user mentions a fixed commitment (a meeting, a flight, a concert), add it as its own section
   with its timeRange and with empty "options" and empty "reserveIds".

Rules:
- Use only the "id" values of the candidates. Never invent places, addresses, prices or amenities.
- Never repeat an id anywhere in the plan.
- "why" is one or two sentences in Russian that only restate facts present in the candidate data.
- "budget" is a short price hint such as "$$" or "Бесплатно".
- "timeRange" uses the form "HH:MM–HH:MM" for day plans and may be empty for search.
- Section titles are short and in Russian, each with a single emoji.

Respond with JSON only, in this exact shape:
{"title": "...", "sections": [{"title": "...", "emoji": "...", "timeRange": "...", "options": [{"id": "...", "why": "...", "budget": "..."}], "reserveIds": ["..."]}]}`

type promptCandidate struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Description string    `json:"description,omitempty"`
	PriceTier   int       `json:"priceTier"`
	Address     string    `json:"address,omitempty"`
}

func buildPrompt(intent string, interests []string, candidates []types.ScoredPlace, city string) (string, error) {
	list := make([]promptCandidate, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, promptCandidate{
			ID:          c.ID,
			Title:       c.Title,
			Category:    c.Category,
			Tags:        c.Tags,
			Rating:      c.Rating,
			Description: generativeAI.Truncate(c.Description, promptDescriptionRunes),
			PriceTier:   c.PriceTier,
			Address:     c.Address,
		})
	}
	candidatesJSON, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "City: %s\n", city)
	if len(interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(interests, ", "))
	}
	fmt.Fprintf(&b, "Request: %s\n\n", strings.TrimSpace(intent))
	fmt.Fprintf(&b, "Candidates:\n%s\n", candidatesJSON)
	return b.String(), nil
}
