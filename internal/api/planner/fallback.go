package planner

import (
	"fmt"
	"strings"

	generativeAI "github.com/FACorreiaa/go-poi-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const (
	maxFallbackSections   = 6
	fallbackOptionsCap    = 2
	fallbackReservesCap   = 2
	flatFallbackThreshold = 3
	whyDescriptionRunes   = 200
)

type sectionStyle struct {
	Title string
	Emoji string
}

var (
	flatSection    = sectionStyle{Title: "Рекомендации", Emoji: "✨"}
	genericSection = sectionStyle{Title: "Ещё интересное", Emoji: "📍"}
)

// CategorySections maps catalog categories to fallback section headings.
var CategorySections = map[string]sectionStyle{
	"cafe":         {"Кофе и завтрак", "☕"},
	"coffee":       {"Кофе и завтрак", "☕"},
	"bakery":       {"Кофе и завтрак", "☕"},
	"restaurant":   {"Обед и ужин", "🍽️"},
	"food":         {"Обед и ужин", "🍽️"},
	"museum":       {"Культура", "🏛️"},
	"gallery":      {"Культура", "🏛️"},
	"theater":      {"Культура", "🏛️"},
	"monument":     {"История", "🏰"},
	"history":      {"История", "🏰"},
	"architecture": {"История", "🏰"},
	"park":         {"Прогулка на природе", "🌳"},
	"nature":       {"Прогулка на природе", "🌳"},
	"garden":       {"Прогулка на природе", "🌳"},
	"lake":         {"Прогулка на природе", "🌳"},
	"viewpoint":    {"Виды", "🏔️"},
	"mountains":    {"Виды", "🏔️"},
	"bar":          {"Вечер", "🌙"},
	"club":         {"Вечер", "🌙"},
	"nightlife":    {"Вечер", "🌙"},
	"market":       {"Покупки", "🛍️"},
	"mall":         {"Покупки", "🛍️"},
	"shopping":     {"Покупки", "🛍️"},
	"spa":          {"Отдых", "🧖"},
	"wellness":     {"Отдых", "🧖"},
}

func styleFor(category string) sectionStyle {
	if st, ok := CategorySections[strings.ToLower(strings.TrimSpace(category))]; ok {
		return st
	}
	return genericSection
}

// BuildFallback assembles sections from ranked candidates without any model
// call. It returns at least one section whenever candidates is non-empty.
func BuildFallback(candidates []types.ScoredPlace) []types.PlanSection {
	if len(candidates) == 0 {
		return nil
	}

	if len(candidates) <= flatFallbackThreshold {
		section := types.PlanSection{Title: flatSection.Title, Emoji: flatSection.Emoji}
		for _, c := range candidates {
			section.Options = append(section.Options, fallbackOption(c))
		}
		return []types.PlanSection{section}
	}

	var sections []types.PlanSection
	byTitle := make(map[string]int)
	for _, c := range candidates {
		st := styleFor(c.Category)
		idx, ok := byTitle[st.Title]
		if !ok {
			if len(sections) == maxFallbackSections {
				continue
			}
			sections = append(sections, types.PlanSection{Title: st.Title, Emoji: st.Emoji})
			idx = len(sections) - 1
			byTitle[st.Title] = idx
		}

		section := &sections[idx]
		switch {
		case len(section.Options) < fallbackOptionsCap:
			section.Options = append(section.Options, fallbackOption(c))
		case len(section.Reserves) < fallbackReservesCap:
			section.Reserves = append(section.Reserves, fallbackOption(c))
		}
	}
	return sections
}

func fallbackOption(c types.ScoredPlace) types.PlanOption {
	return types.PlanOption{
		Stop:            types.NewStop(c.CatalogPlace),
		Why:             catalogWhy(c.CatalogPlace, c.DistanceKm),
		Budget:          budgetHint(c.PriceTier),
		ConfidenceScore: 1.0,
		Confidence:      types.ConfidenceVerified,
	}
}

// catalogWhy builds a justification from catalog fields only.
func catalogWhy(p types.CatalogPlace, distanceKm *float64) string {
	why := strings.TrimSpace(generativeAI.Truncate(p.Description, whyDescriptionRunes))
	if why == "" {
		why = p.Title
		if p.Category != "" {
			why = fmt.Sprintf("%s (%s)", p.Title, p.Category)
		}
	}
	if p.Rating > 0 {
		why = fmt.Sprintf("%s. Рейтинг %.1f", strings.TrimRight(why, ". "), p.Rating)
	}
	if distanceKm != nil {
		why = fmt.Sprintf("%s, %.1f км от вас", why, *distanceKm)
	}
	return why
}

func budgetHint(priceTier int) string {
	switch {
	case priceTier <= 0:
		return "Бесплатно"
	case priceTier > 5:
		return strings.Repeat("$", 5)
	default:
		return strings.Repeat("$", priceTier)
	}
}
