package models

// Bias summarizes a user's stated political leaning as derived from the
// onboarding quiz.
type Bias string

const (
	BiasLeft    Bias = "left"
	BiasCenter  Bias = "center"
	BiasRight   Bias = "right"
	BiasUnknown Bias = "unknown"
)

// ParseBias maps a stored string back onto a known label. Anything
// unrecognized collapses to BiasUnknown.
func ParseBias(raw string) Bias {
	switch Bias(raw) {
	case BiasLeft, BiasCenter, BiasRight:
		return Bias(raw)
	default:
		return BiasUnknown
	}
}

// Article is a single raw result from the news provider. Articles are
// request-scoped and never persisted.
type Article struct {
	Title       string
	Description string
	Thumbnail   string
}

// Summary is a personalized rendering of an Article produced by Petrichor.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Preference is the per-user personalization record. Either field may be
// empty; an all-empty record is equivalent to no record at all.
type Preference struct {
	Bias  Bias   `json:"bias,omitempty"`
	Style string `json:"style,omitempty"`
}

// GuestUser is the anonymous sentinel used when a request carries no username.
const GuestUser = "guest"
