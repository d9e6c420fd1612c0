package pipeline

import "github.com/sageql/sageql/internal/question"

// Strategy is the resolution path chosen for a question. It is chosen once
// and never changes after execution starts.
type Strategy string

const (
	StrategyFast     Strategy = "FAST"
	StrategyTemplate Strategy = "TEMPLATE"
	StrategyAI       Strategy = "AI"
)

// QueryPlan is the pipeline's working record for one request, discarded
// once the response is built.
type QueryPlan struct {
	Strategy   Strategy
	SQL        string
	TemplateID string
	Complexity question.Complexity
}

// state names the steps of the resolution machine. Progression is linear;
// stateFailed is reachable from any step.
type state int

const (
	stateStart state = iota
	stateFastChecked
	stateStrategySelected
	stateSQLObtained
	stateValidated
	stateExecuted
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "START"
	case stateFastChecked:
		return "FAST_CHECKED"
	case stateStrategySelected:
		return "STRATEGY_SELECTED"
	case stateSQLObtained:
		return "SQL_OBTAINED"
	case stateValidated:
		return "VALIDATED"
	case stateExecuted:
		return "EXECUTED"
	case stateDone:
		return "DONE"
	default:
		return "FAILED"
	}
}
