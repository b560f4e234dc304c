package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"tailor/internal/types"
)

var (
	nonWord      = regexp.MustCompile(`\W+`)
	leadingScore = regexp.MustCompile(`^\d{1,3}`)
)

// ParseScore parses a model-produced score reply. Only leading digits
// count; anything unparseable or out of the 0-100 range keeps the
// fallback score.
func ParseScore(raw string, fallback int) int {
	m := leadingScore.FindString(strings.TrimSpace(raw))
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > 100 {
		return fallback
	}
	return n
}

// ScoreKeywords computes the deterministic ATS score for a candidate text
// against a job description. The keyword universe is every distinct
// lowercased token of the job description longer than three characters,
// in first-seen order. A keyword matches when it occurs as a substring
// of the lowercased candidate.
func ScoreKeywords(jobDescription, candidate string) types.KeywordMatch {
	var universe []string
	seen := make(map[string]struct{})
	for _, word := range nonWord.Split(strings.ToLower(jobDescription), -1) {
		if len(word) <= 3 {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		universe = append(universe, word)
	}

	if len(universe) == 0 {
		return types.KeywordMatch{}
	}

	candidateLower := strings.ToLower(candidate)
	var matched []string
	for _, keyword := range universe {
		if strings.Contains(candidateLower, keyword) {
			matched = append(matched, keyword)
		}
	}

	score := int(math.Round(float64(len(matched)) / float64(len(universe)) * 100))
	if score > 100 {
		score = 100
	}

	return types.KeywordMatch{
		Score:    score,
		Matched:  matched,
		Universe: universe,
	}
}
