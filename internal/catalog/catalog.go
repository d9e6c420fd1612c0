// Package catalog holds the pre-authored SQL templates that answer common
// retail questions without invoking the AI generator. Templates are loaded
// once at startup and immutable afterwards; matching is deterministic, with
// declaration order as the priority order.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// PlaceholderKind constrains what entity values a placeholder accepts.
type PlaceholderKind int

const (
	KindString PlaceholderKind = iota
	KindInt
)

// Template is one parameterized SQL fragment keyed to a question pattern.
//
// Triggers is a list of groups; a group is satisfied when any one of its
// phrases appears in the normalized text, and every group must be satisfied
// for the template to match. Requires lists entity kinds that must be present
// in the entity map; every placeholder in SQL must appear in either Requires
// or Defaults.
type Template struct {
	ID       string
	Triggers [][]string
	Requires []string
	Defaults map[string]string
	Kinds    map[string]PlaceholderKind
	SQL      string
}

var rePlaceholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Catalog is an ordered, validated set of templates.
type Catalog struct {
	templates []Template
}

// New validates templates and fixes their priority order. It fails when a
// placeholder has no corresponding required entity or default, so a broken
// template is caught at startup rather than at match time.
func New(templates ...Template) (*Catalog, error) {
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog: template with empty id")
		}
		bound := make(map[string]bool)
		for _, r := range t.Requires {
			bound[r] = true
		}
		for d := range t.Defaults {
			bound[d] = true
		}
		for _, m := range rePlaceholder.FindAllStringSubmatch(t.SQL, -1) {
			if !bound[m[1]] {
				return nil, fmt.Errorf("catalog: template %q: placeholder {%s} has no required entity or default", t.ID, m[1])
			}
		}
	}
	return &Catalog{templates: templates}, nil
}

// Match is the result of a successful template match.
type Match struct {
	TemplateID string
	SQL        string
}

// Lookup tries each template in declaration order and returns the first one
// whose triggers and required entities are all satisfied, with placeholders
// substituted. ok=false means no template fits; that is not an error, it
// just sends the pipeline to the AI path.
func (c *Catalog) Lookup(normalized string, entities map[string]string) (Match, bool) {
	for _, t := range c.templates {
		sql, ok := c.instantiate(t, normalized, entities)
		if ok {
			return Match{TemplateID: t.ID, SQL: sql}, true
		}
	}
	return Match{}, false
}

func (c *Catalog) instantiate(t Template, normalized string, entities map[string]string) (string, bool) {
	for _, group := range t.Triggers {
		if !anyContained(normalized, group) {
			return "", false
		}
	}
	values := make(map[string]string, len(t.Requires)+len(t.Defaults))
	for k, v := range t.Defaults {
		values[k] = v
	}
	for _, kind := range t.Requires {
		if _, present := entities[kind]; !present {
			return "", false
		}
	}
	// An extracted entity always wins over a template default, so "top 3
	// stores" yields LIMIT 3 even though the template defaults to 5.
	for _, m := range rePlaceholder.FindAllStringSubmatch(t.SQL, -1) {
		if v, present := entities[m[1]]; present {
			values[m[1]] = v
		}
	}

	// Time ranges substitute as SQL date predicates, everything else as the
	// raw entity value. Numeric placeholders reject non-numeric values.
	sql := t.SQL
	okSub := true
	sql = rePlaceholder.ReplaceAllStringFunc(sql, func(ph string) string {
		name := ph[1 : len(ph)-1]
		v := values[name]
		if t.Kinds[name] == KindInt && !isAllDigits(v) {
			okSub = false
			return ph
		}
		if name == "time_filter" || name == "time_range" {
			pred, known := timePredicate(v)
			if !known {
				okSub = false
				return ph
			}
			return pred
		}
		return v
	})
	if !okSub {
		return "", false
	}
	return strings.TrimSpace(sql), true
}

func anyContained(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// timePredicate maps a recognized time-range entity value to a sale_date
// predicate. Unknown values make the template fail to match rather than
// produce SQL with a guessed filter.
func timePredicate(value string) (string, bool) {
	switch value {
	case "last month":
		return "sale_date >= DATE_TRUNC('month', CURRENT_DATE - INTERVAL '1 month') AND sale_date < DATE_TRUNC('month', CURRENT_DATE)", true
	case "this month":
		return "sale_date >= DATE_TRUNC('month', CURRENT_DATE)", true
	case "last week":
		return "sale_date >= DATE_TRUNC('week', CURRENT_DATE - INTERVAL '1 week') AND sale_date < DATE_TRUNC('week', CURRENT_DATE)", true
	case "this week":
		return "sale_date >= DATE_TRUNC('week', CURRENT_DATE)", true
	case "last year":
		return "EXTRACT(year FROM sale_date) = EXTRACT(year FROM CURRENT_DATE) - 1", true
	case "this year":
		return "EXTRACT(year FROM sale_date) = EXTRACT(year FROM CURRENT_DATE)", true
	case "last quarter":
		return "sale_date >= DATE_TRUNC('quarter', CURRENT_DATE - INTERVAL '3 months') AND sale_date < DATE_TRUNC('quarter', CURRENT_DATE)", true
	case "this quarter":
		return "sale_date >= DATE_TRUNC('quarter', CURRENT_DATE)", true
	case "yesterday":
		return "sale_date = CURRENT_DATE - INTERVAL '1 day'", true
	case "today":
		return "sale_date = CURRENT_DATE", true
	}
	return "", false
}
