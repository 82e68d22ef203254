package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ichor-news/backend/internal/models"
)

// Length is the number of answers every quiz submission must carry. The
// classifier and the request validator agree on this value.
const Length = 5

var tokenScores = map[string]int{
	"yes":               1,
	"y":                 1,
	"agree":             1,
	"strongly agree":    1,
	"true":              1,
	"no":                -1,
	"n":                 -1,
	"disagree":          -1,
	"strongly disagree": -1,
	"false":             -1,
}

// Normalize converts the mixed client encoding (yes/no-style tokens or
// already-signed integers) into canonical signed scores. Clients send answers
// as a JSON array, so numbers arrive as float64 and must be whole.
func Normalize(raw []any) ([]int, error) {
	scores := make([]int, 0, len(raw))
	for i, answer := range raw {
		switch v := answer.(type) {
		case string:
			score, ok := tokenScores[strings.ToLower(strings.TrimSpace(v))]
			if !ok {
				return nil, fmt.Errorf("answer %d: unrecognized token %q", i+1, v)
			}
			scores = append(scores, score)
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("answer %d: score must be a whole number", i+1)
			}
			scores = append(scores, int(v))
		case int:
			scores = append(scores, v)
		case json.Number:
			n, err := strconv.Atoi(v.String())
			if err != nil {
				return nil, fmt.Errorf("answer %d: score must be a whole number", i+1)
			}
			scores = append(scores, n)
		default:
			return nil, fmt.Errorf("answer %d: expected string or integer", i+1)
		}
	}
	return scores, nil
}

// Classify sums the signed scores and maps the total onto a bias label.
// Totals strictly below -3 lean left, strictly above 3 lean right, and
// everything in between is center. Empty input is a caller error, never a
// silent center.
func Classify(scores []int) (models.Bias, error) {
	if len(scores) == 0 {
		return models.BiasUnknown, fmt.Errorf("no answers to classify")
	}

	total := 0
	for _, s := range scores {
		total += s
	}

	switch {
	case total < -3:
		return models.BiasLeft, nil
	case total > 3:
		return models.BiasRight, nil
	default:
		return models.BiasCenter, nil
	}
}
