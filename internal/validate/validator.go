// Package validate is the safety gate between SQL generation and execution.
// Validation is purely lexical: nothing here talks to the warehouse.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError rejects SQL that must never reach the executor.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "sql validation failed: " + e.Reason
}

// UnknownSchemaObjectError rejects SQL referencing a table or column absent
// from the schema catalog.
type UnknownSchemaObjectError struct {
	Object string
}

func (e *UnknownSchemaObjectError) Error() string {
	return "unknown schema object: " + e.Object
}

// dangerousPatterns catch injection shapes that survive the SELECT-prefix
// check, e.g. stacked statements behind a semicolon.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\s+`),
	regexp.MustCompile(`(?i);\s*DELETE\s+`),
	regexp.MustCompile(`(?i);\s*INSERT\s+`),
	regexp.MustCompile(`(?i);\s*UPDATE\s+`),
	regexp.MustCompile(`(?i);\s*ALTER\s+`),
	regexp.MustCompile(`(?i);\s*CREATE\s+`),
	regexp.MustCompile(`(?i);\s*TRUNCATE\s+`),
	regexp.MustCompile(`(?i);\s*EXEC(?:UTE)?\b`),
	regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+DUMPFILE\b`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\s*\(`),
	regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`),
	regexp.MustCompile(`(?i)\bSLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bWAITFOR\s+DELAY\b`),
	regexp.MustCompile(`'.*--`),
	regexp.MustCompile(`;\s*--`),
}

var (
	reLimit     = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)
	reFromJoin  = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_.]*)(?:\s+(?:AS\s+)?([A-Za-z_][A-Za-z0-9_]*))?`)
	reQualified = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\b`)
)

// reservedAliases are keywords the FROM/JOIN regex could mistake for table
// aliases.
var reservedAliases = map[string]bool{
	"on": true, "where": true, "inner": true, "left": true, "right": true,
	"full": true, "outer": true, "cross": true, "join": true, "group": true,
	"order": true, "limit": true, "having": true, "as": true, "using": true,
}

// Validator enforces the SELECT-only boundary, caps row limits, and, when a
// schema catalog is supplied, rejects references to unknown tables and
// columns.
type Validator struct {
	maxRows int
	schema  map[string][]string // table -> columns; nil disables schema checks
}

func NewValidator(maxRows int) *Validator {
	if maxRows <= 0 {
		maxRows = 100
	}
	return &Validator{maxRows: maxRows}
}

// WithSchema returns a copy of the validator that also checks referenced
// tables and qualified columns against the catalog. Table and column names
// are compared case-insensitively.
func (v *Validator) WithSchema(schema map[string][]string) *Validator {
	folded := make(map[string][]string, len(schema))
	for table, cols := range schema {
		lc := make([]string, len(cols))
		for i, c := range cols {
			lc[i] = strings.ToLower(c)
		}
		folded[strings.ToLower(table)] = lc
	}
	return &Validator{maxRows: v.maxRows, schema: folded}
}

// Validate returns the SQL that may be executed, or an error. The returned
// SQL always carries a LIMIT clause no larger than the configured cap; a
// missing clause is injected, an oversized one is rewritten down. The input
// is never executed here.
func (v *Validator) Validate(sql string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if trimmed == "" {
		return "", &ValidationError{Reason: "SQL is empty"}
	}

	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return "", &ValidationError{Reason: "only SELECT statements are allowed"}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(trimmed) {
			return "", &ValidationError{Reason: "disallowed SQL pattern: " + pattern.String()}
		}
	}

	if v.schema != nil {
		if err := v.checkSchemaObjects(trimmed); err != nil {
			return "", err
		}
	}

	return v.enforceLimit(trimmed), nil
}

// enforceLimit injects LIMIT maxRows when absent and rewrites any LIMIT
// above the cap. A caller- or model-supplied limit never raises the cap.
func (v *Validator) enforceLimit(sql string) string {
	m := reLimit.FindStringSubmatchIndex(sql)
	if m == nil {
		return sql + fmt.Sprintf(" LIMIT %d", v.maxRows)
	}
	n, err := strconv.Atoi(sql[m[2]:m[3]])
	if err != nil || n > v.maxRows {
		return sql[:m[0]] + fmt.Sprintf("LIMIT %d", v.maxRows) + sql[m[1]:]
	}
	return sql
}

func (v *Validator) checkSchemaObjects(sql string) error {
	// aliases maps alias (or bare table name) -> table name.
	aliases := make(map[string]string)
	for _, m := range reFromJoin.FindAllStringSubmatch(sql, -1) {
		table := strings.ToLower(m[1])
		// Strip any dataset/schema qualifier.
		if i := strings.LastIndex(table, "."); i != -1 {
			table = table[i+1:]
		}
		if _, known := v.schema[table]; !known {
			return &UnknownSchemaObjectError{Object: table}
		}
		aliases[table] = table
		if alias := strings.ToLower(m[2]); alias != "" && !reservedAliases[alias] {
			aliases[alias] = table
		}
	}

	// Only qualified references (alias.column) are checked: unqualified
	// identifiers can be output aliases or function names, and rejecting
	// those lexically would refuse valid SQL.
	for _, m := range reQualified.FindAllStringSubmatch(sql, -1) {
		qualifier := strings.ToLower(m[1])
		column := strings.ToLower(m[2])
		table, ok := aliases[qualifier]
		if !ok {
			continue
		}
		if !contains(v.schema[table], column) {
			return &UnknownSchemaObjectError{Object: table + "." + column}
		}
	}
	return nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
