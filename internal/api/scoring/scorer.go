// Package scoring ranks catalog places against a request. Everything here is
// pure and deterministic.
package scoring

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const (
	interestTagPoints      = 3
	interestCategoryPoints = 2
	keywordTagPoints       = 4
	keywordCategoryPoints  = 3
	titleWordPoints        = 5
	categoryWordPoints     = 3
	minWordRunes           = 3
)

// Score ranks places by relevance, highest first. Equal scores are ordered by
// ascending distance from the user, places without a distance last; full ties
// keep input order.
func Score(catalog []types.CatalogPlace, interests []string, intent string, userLocation *types.Coordinate) []types.ScoredPlace {
	interestTags, interestNames := expandInterests(interests)
	words := intentWords(intent)
	keywordTags := extractKeywordTags(words)

	scored := make([]types.ScoredPlace, 0, len(catalog))
	for _, p := range catalog {
		sp := types.ScoredPlace{CatalogPlace: p}
		sp.Score = interestScore(p, interestTags, interestNames) +
			intentScore(p, keywordTags, words) +
			ratingScore(p.Rating)
		if userLocation != nil && p.Location != nil {
			d := Distance(*userLocation, *p.Location)
			sp.DistanceKm = &d
			sp.Score += distanceScore(d)
		}
		scored = append(scored, sp)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			return *a.DistanceKm < *b.DistanceKm
		case a.DistanceKm != nil:
			return true
		default:
			return false
		}
	})
	return scored
}

func expandInterests(interests []string) (tags, names map[string]struct{}) {
	tags = make(map[string]struct{})
	names = make(map[string]struct{})
	for _, in := range interests {
		key := strings.ToLower(strings.TrimSpace(in))
		if key == "" {
			continue
		}
		names[key] = struct{}{}
		for _, t := range InterestTags[key] {
			tags[t] = struct{}{}
		}
	}
	return tags, names
}

func interestScore(p types.CatalogPlace, interestTags, interestNames map[string]struct{}) float64 {
	if len(interestNames) == 0 {
		return 0
	}
	var score float64
	for _, tag := range p.Tags {
		if _, ok := interestTags[strings.ToLower(tag)]; ok {
			score += interestTagPoints
		}
	}
	category := strings.ToLower(p.Category)
	_, byName := interestNames[category]
	_, byTag := interestTags[category]
	if category != "" && (byName || byTag) {
		score += interestCategoryPoints
	}
	return score
}

func intentScore(p types.CatalogPlace, keywordTags []string, words []string) float64 {
	var score float64
	category := strings.ToLower(p.Category)

	if len(keywordTags) > 0 {
		for _, tag := range p.Tags {
			if matchesAny(strings.ToLower(tag), keywordTags) {
				score += keywordTagPoints
			}
		}
		if matchesAny(category, keywordTags) {
			score += keywordCategoryPoints
		}
	}

	title := strings.ToLower(p.Title)
	for _, w := range words {
		if utf8.RuneCountInString(w) < minWordRunes {
			continue
		}
		if strings.Contains(title, w) {
			score += titleWordPoints
		}
		if category != "" && strings.Contains(category, w) {
			score += categoryWordPoints
		}
	}
	return score
}

// matchesAny reports a substring match in either direction.
func matchesAny(s string, candidates []string) bool {
	if s == "" {
		return false
	}
	for _, c := range candidates {
		if strings.Contains(s, c) || strings.Contains(c, s) {
			return true
		}
	}
	return false
}

func ratingScore(rating float64) float64 {
	var score float64
	if rating >= 4.7 {
		score += 2
	}
	if rating >= 4.5 {
		score++
	}
	return score
}

func distanceScore(km float64) float64 {
	switch {
	case km < 1:
		return 5
	case km < 3:
		return 3
	case km < 5:
		return 1
	default:
		return 0
	}
}

func intentWords(intent string) []string {
	return strings.FieldsFunc(strings.ToLower(intent), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// extractKeywordTags returns the tags implied by intent words, deduplicated,
// in table order.
func extractKeywordTags(words []string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, kw := range KeywordTags {
		if !anyHasPrefix(words, kw.Keyword) {
			continue
		}
		for _, t := range kw.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

func anyHasPrefix(words []string, prefix string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}
