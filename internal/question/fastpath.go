package question

import "strings"

// fastAnswer pairs trigger phrases with a canned answer. The first entry
// whose trigger appears in the normalized text wins.
type fastAnswer struct {
	triggers []string
	answer   string
}

var defaultFastAnswers = []fastAnswer{
	{
		// "what s sql" is the normalized form of "what's sql": the
		// normalizer replaces apostrophes with spaces.
		triggers: []string{"what is sql", "what s sql", "define sql"},
		answer: "SQL (Structured Query Language) is a programming language designed for " +
			"managing and querying relational databases. It allows you to retrieve, insert, " +
			"update, and delete data from database tables.",
	},
	{
		triggers: []string{"how does sql work", "how sql works"},
		answer: "SQL works by letting you write declarative statements that describe what " +
			"data you want rather than how to get it. The database engine interprets these " +
			"statements and executes them against the database tables.",
	},
	{
		triggers: []string{"what is a database", "what is database", "define database"},
		answer: "A database is an organized collection of structured information stored " +
			"electronically. It is managed by a Database Management System (DBMS) that lets " +
			"you store, retrieve, and manipulate data efficiently.",
	},
	{
		triggers: []string{"what can i ask", "what questions", "what can you do", "help me", "help"},
		answer: "You can ask questions about your retail data, such as:\n" +
			"- Sales analysis: \"What was the total revenue last month?\"\n" +
			"- Product insights: \"Which product category has the highest sales?\"\n" +
			"- Store performance: \"Show me the top 5 stores by revenue\"\n" +
			"- Time-based queries: \"How do weekend sales compare to weekday sales?\"\n" +
			"Questions are converted into SQL queries and executed against the warehouse.",
	},
	{
		triggers: []string{"hello", "hi there", "good morning", "good afternoon"},
		answer: "Hello! Ask me a question about your retail data and I will translate it " +
			"into SQL and fetch the results.",
	},
}

// FastPath answers generic non-data questions without touching the model or
// the warehouse. A miss is not an error; it tells the pipeline to continue.
type FastPath struct {
	answers []fastAnswer
}

func NewFastPath() *FastPath {
	return &FastPath{answers: defaultFastAnswers}
}

// Match returns the canned answer for the normalized text, or ok=false when
// no trigger applies.
func (f *FastPath) Match(normalized string) (answer string, ok bool) {
	for _, fa := range f.answers {
		for _, trig := range fa.triggers {
			// Exact match for single-word triggers so "help" doesn't fire
			// inside "how much revenue did helper products make".
			if !strings.Contains(trig, " ") {
				if normalized == trig {
					return fa.answer, true
				}
				continue
			}
			if strings.Contains(normalized, trig) {
				return fa.answer, true
			}
		}
	}
	return "", false
}
