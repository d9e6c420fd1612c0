package handler

import (
	"net/http"
	"time"

	"github.com/sageql/sageql/internal/models"
)

// ExamplesHandler serves canned example questions grouped by topic so a
// new analyst can see what phrasing the resolver understands.
type ExamplesHandler struct{}

func NewExamplesHandler() *ExamplesHandler {
	return &ExamplesHandler{}
}

var exampleCategories = map[string][]string{
	"revenue": {
		"What was total revenue last month?",
		"Show me revenue by category",
		"What is our all-time revenue?",
	},
	"stores": {
		"Show me the top 5 stores by revenue",
		"How many stores do we have?",
		"Which store sold the most last week?",
	},
	"products": {
		"What are the top 10 products by sales?",
		"How many products are in the catalog?",
		"Show me sales by product category",
	},
	"trends": {
		"Compare revenue this month versus last month",
		"What was the average sale amount yesterday?",
		"How many transactions happened today?",
	},
}

var exampleTips = []string{
	"Mention a time period (last month, yesterday, this year) for filtered results",
	"Use 'top N' to limit rankings, e.g. 'top 5 stores'",
	"Simple, direct questions resolve fastest",
}

// Examples handles GET /api/v1/query/examples
func (h *ExamplesHandler) Examples(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, models.ExamplesResponse{
		Categories: exampleCategories,
		Tips:       exampleTips,
		Timestamp:  time.Now().UTC(),
	})
}
