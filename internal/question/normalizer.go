package question

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Entity kinds extracted by the normalizer.
const (
	EntityTimeRange = "time_range"
	EntityTopN      = "top_n"
	EntityMetric    = "metric"
	EntityDimension = "dimension"
)

// Question is the normalized form of a raw user question. Immutable once
// built by Normalizer.Normalize.
type Question struct {
	Raw         string
	Normalized  string
	Entities    map[string]string
	SubmittedAt time.Time
}

// InvalidInputError signals a question that cannot enter the pipeline.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

var (
	rePunct      = regexp.MustCompile(`[?!.,;:"']+`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reTopN       = regexp.MustCompile(`\b(?:top|best|highest|largest|first)\s+(\d+)\b`)
	reLastN      = regexp.MustCompile(`\b(?:last|past|previous)\s+(\d+)\s+(day|week|month|quarter|year)s?\b`)
	reNamedRange = regexp.MustCompile(`\b(last month|this month|last week|this week|last year|this year|last quarter|this quarter|yesterday|today)\b`)
)

// metricTerms maps question vocabulary to canonical metric names, checked in
// order so multi-word phrases win over their substrings.
var metricTerms = []struct{ phrase, metric string }{
	{"average order value", "avg_order_value"},
	{"order value", "avg_order_value"},
	{"transaction count", "transaction_count"},
	{"transactions", "transaction_count"},
	{"revenue", "revenue"},
	{"sales", "revenue"},
	{"quantity", "quantity"},
	{"units sold", "quantity"},
	{"discount", "discount"},
	{"orders", "transaction_count"},
}

var dimensionTerms = []struct{ phrase, dim string }{
	{"by category", "product_category"},
	{"by product", "product_name"},
	{"by store", "store_name"},
	{"by region", "store_region"},
	{"by month", "month"},
	{"by day", "day"},
	{"per store", "store_name"},
	{"per category", "product_category"},
}

// Normalizer canonicalizes raw question text and extracts entities.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	maxLength int
	now       func() time.Time
}

func NewNormalizer(maxLength int) *Normalizer {
	if maxLength <= 0 {
		maxLength = 500
	}
	return &Normalizer{maxLength: maxLength, now: time.Now}
}

// Normalize validates and canonicalizes raw question text. It trims
// surrounding whitespace, lowercases, strips punctuation for matching, and
// extracts recognized entities. Returns InvalidInputError for empty or
// oversized input.
func (n *Normalizer) Normalize(raw string) (*Question, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &InvalidInputError{Reason: "question is empty"}
	}
	if len(trimmed) > n.maxLength {
		return nil, &InvalidInputError{
			Reason: fmt.Sprintf("question exceeds %d characters", n.maxLength),
		}
	}

	normalized := strings.ToLower(trimmed)
	normalized = rePunct.ReplaceAllString(normalized, " ")
	normalized = reSpaces.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	return &Question{
		Raw:         trimmed,
		Normalized:  normalized,
		Entities:    extractEntities(normalized),
		SubmittedAt: n.now(),
	}, nil
}

func extractEntities(text string) map[string]string {
	entities := make(map[string]string)

	if m := reNamedRange.FindString(text); m != "" {
		entities[EntityTimeRange] = m
	} else if m := reLastN.FindStringSubmatch(text); m != nil {
		entities[EntityTimeRange] = "last " + m[1] + " " + m[2] + "s"
	}

	if m := reTopN.FindStringSubmatch(text); m != nil {
		entities[EntityTopN] = m[1]
	}

	for _, mt := range metricTerms {
		if strings.Contains(text, mt.phrase) {
			entities[EntityMetric] = mt.metric
			break
		}
	}

	for _, dt := range dimensionTerms {
		if strings.Contains(text, dt.phrase) {
			entities[EntityDimension] = dt.dim
			break
		}
	}

	return entities
}

// synonymRewrites nudges question phrasing toward the warehouse vocabulary
// before the text reaches the AI generator.
var synonymRewrites = []struct{ old, new string }{
	{"best selling", "highest sales"},
	{"worst performing", "lowest sales"},
	{"top performing", "highest revenue"},
	{"how much did we make", "what was total revenue"},
}

// Preprocess rewrites common phrasings into terms the SQL generator's prompt
// vocabulary covers. Applied only on the AI path; template matching uses the
// untouched normalized text so matches stay deterministic.
func Preprocess(normalized string) string {
	out := normalized
	for _, r := range synonymRewrites {
		out = strings.ReplaceAll(out, r.old, r.new)
	}
	switch {
	case strings.Contains(out, "compare") || strings.Contains(out, " vs "):
		out = "show comparison data: " + out
	case strings.Contains(out, "trend") || strings.Contains(out, "over time"):
		out = "show time series data: " + out
	}
	return out
}
