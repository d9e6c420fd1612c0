package sqlgen

import (
	"regexp"
	"strings"
)

// ExtractSQL pulls a SQL statement out of model output, trying strategies in
// order:
//  1. ```sql ... ``` code block
//  2. generic ``` ... ``` block whose content starts with SELECT
//  3. multi-line SELECT statement ending at LIMIT, semicolon, or end of text
//  4. single-line SELECT as a last resort
//
// Returns "" when nothing SQL-shaped is present.
var (
	reSelectBlock = regexp.MustCompile(`(?is)(SELECT\s+.+?FROM\s+.+?(?:LIMIT\s+\d+|;\s*$|\z))`)
	reSingleSQL   = regexp.MustCompile(`(?i)(SELECT\s+\S.+?\bFROM\b\s+\S+)`)
	reLineComment = regexp.MustCompile(`--[^\n]*`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

func ExtractSQL(text string) string {
	lower := strings.ToLower(text)
	if idx := strings.Index(lower, "```sql"); idx != -1 {
		body := text[idx+len("```sql"):]
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		}
		if end := strings.Index(body, "```"); end != -1 {
			if sql := cleanSQL(body[:end]); sql != "" {
				return sql
			}
		}
	}

	// Generic fenced blocks: odd-indexed segments are block contents.
	parts := strings.Split(text, "```")
	for i := 1; i < len(parts); i += 2 {
		candidate := strings.TrimSpace(parts[i])
		// Drop a language tag line like "sql\nSELECT ..."
		if nl := strings.Index(candidate, "\n"); nl != -1 {
			first := strings.ToUpper(strings.TrimSpace(candidate[:nl]))
			if !strings.HasPrefix(first, "SELECT") {
				candidate = strings.TrimSpace(candidate[nl:])
			}
		}
		if strings.HasPrefix(strings.ToUpper(candidate), "SELECT") {
			return cleanSQL(candidate)
		}
	}

	if m := reSelectBlock.FindString(text); m != "" {
		if sql := cleanSQL(m); strings.Contains(strings.ToUpper(sql), " FROM ") {
			return sql
		}
	}

	if m := reSingleSQL.FindString(text); m != "" {
		return cleanSQL(m)
	}

	return ""
}

// cleanSQL strips comments, collapses whitespace, and drops a trailing
// semicolon so downstream validation sees one canonical form.
func cleanSQL(sql string) string {
	sql = reLineComment.ReplaceAllString(sql, "")
	sql = reBlockComment.ReplaceAllString(sql, "")
	sql = strings.Join(strings.Fields(sql), " ")
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	return strings.TrimSpace(sql)
}
