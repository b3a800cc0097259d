package template

import (
	"sort"
	"strings"
)

const maxSuggestions = 3

type scoredField struct {
	name  string
	score int
}

// closestFields ranks known field names against an unresolved expression by
// exact, prefix, substring and character-overlap matches. Developer
// experience only; never consulted on the happy path.
func closestFields(expression string, known []string) []string {
	needle := strings.ToLower(expression)
	scored := make([]scoredField, 0, len(known))

	for _, name := range known {
		score := scoreField(needle, strings.ToLower(name))
		if score > 0 {
			scored = append(scored, scoredField{name: name, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}

		return scored[i].name < scored[j].name
	})

	if len(scored) > maxSuggestions {
		scored = scored[:maxSuggestions]
	}

	names := make([]string, len(scored))
	for i, field := range scored {
		names[i] = field.name
	}

	return names
}

func scoreField(needle, candidate string) int {
	if candidate == needle {
		return 100
	}

	if strings.HasPrefix(candidate, needle) || strings.HasPrefix(needle, candidate) {
		return 80
	}

	if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
		return 60
	}

	overlap := charOverlap(needle, candidate)
	if overlap < 50 {
		return 0
	}

	return overlap / 2
}

// charOverlap returns the percentage of needle characters present in the
// candidate.
func charOverlap(needle, candidate string) int {
	if len(needle) == 0 {
		return 0
	}

	present := make(map[rune]bool)
	for _, r := range candidate {
		present[r] = true
	}

	matched := 0
	total := 0

	for _, r := range needle {
		total++

		if present[r] {
			matched++
		}
	}

	return matched * 100 / total
}
