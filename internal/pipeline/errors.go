package pipeline

import (
	"errors"
	"strings"

	"github.com/sageql/sageql/internal/question"
	"github.com/sageql/sageql/internal/sqlgen"
	"github.com/sageql/sageql/internal/validate"
	"github.com/sageql/sageql/internal/warehouse"
)

// ErrNoStrategy terminates a request after every resolution strategy has
// been exhausted.
var ErrNoStrategy = errors.New("no resolution strategy available")

// ErrorType maps a pipeline error to its wire-level error_type string.
func ErrorType(err error) string {
	var (
		invalidInput *question.InvalidInputError
		genTimeout   *sqlgen.TimeoutError
		genErr       *sqlgen.GenerationError
		valErr       *validate.ValidationError
		schemaErr    *validate.UnknownSchemaObjectError
		connErr      *warehouse.ConnectionError
		execErr      *warehouse.ExecutionError
		dbTimeout    *warehouse.TimeoutError
	)
	switch {
	case errors.Is(err, ErrNoStrategy):
		return "NoStrategyAvailable"
	case errors.As(err, &invalidInput):
		return "InvalidInputError"
	case errors.As(err, &genTimeout):
		return "AIGenerationTimeout"
	case errors.As(err, &genErr):
		return "AIGenerationError"
	case errors.As(err, &schemaErr):
		return "UnknownSchemaObjectError"
	case errors.As(err, &valErr):
		return "ValidationError"
	case errors.As(err, &connErr):
		return "DatabaseConnectionError"
	case errors.As(err, &dbTimeout):
		return "DatabaseTimeoutError"
	case errors.As(err, &execErr):
		return "DatabaseExecutionError"
	default:
		return "InternalError"
	}
}

// Suggestions builds up to three actionable hints for a failed question,
// keyed on the error class and the question's own wording.
func Suggestions(questionText string, err error) []string {
	var out []string
	errType := ErrorType(err)
	lower := strings.ToLower(questionText)

	switch errType {
	case "InvalidInputError":
		out = append(out,
			"Ask a question about the retail data, e.g. 'What was total revenue last month?'",
			"Keep the question under the configured length limit",
		)
	case "AIGenerationTimeout", "DatabaseTimeoutError":
		out = append(out,
			"Try asking a simpler question",
			"Be more specific about the time period",
			"Ask for fewer results (top 10 instead of all)",
		)
	case "NoStrategyAvailable":
		out = append(out,
			"Try rephrasing your question more specifically",
			"Use terms like: revenue, sales, stores, products, categories",
			"Example: 'Show me the top 5 stores by revenue'",
		)
	case "ValidationError", "AIGenerationError":
		out = append(out,
			"Try rephrasing your question more clearly",
			"Use simpler language",
			"Example: 'What was the total revenue last month?'",
		)
	case "UnknownSchemaObjectError":
		out = append(out,
			"The question may reference data that is not in the warehouse",
			"Available data: sales, stores, products, dates",
			"Try rephrasing using different terms",
		)
	case "DatabaseConnectionError":
		out = append(out,
			"The warehouse is busy or unreachable, try again shortly",
			"Reduce concurrent requests",
		)
	}

	if len(out) == 0 {
		out = append(out,
			"Try rephrasing your question more specifically",
			"Use terms like: revenue, sales, stores, products, categories",
		)
	}
	if !strings.Contains(lower, "last") && !strings.Contains(lower, "this") &&
		(errType == "AIGenerationTimeout" || errType == "NoStrategyAvailable") {
		out = append(out, "Specify a time range such as 'last month'")
	}

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
