package deadline

import (
	"errors"
	"time"
)

// Stage names, reported with every resolution.
const (
	StageLiteral    = "literal"
	StageWeekday    = "weekday"
	StageRules      = "rules"
	StagePhrase     = "phrase"
	StageAI         = "ai"
	StageLastResort = "last_resort"
)

// ErrNoMatch is returned by strict resolution when no rule recognizes the text.
var ErrNoMatch = errors.New("deadline: no rule matched")

// Result is the tagged outcome of one stage: resolved with an instant, or no match.
type Result struct {
	At       time.Time
	Stage    string
	Rule     string
	Resolved bool
}

// Resolved tags an instant with the stage that produced it.
func Resolved(stage string, at time.Time) Result {
	return Result{At: at, Stage: stage, Resolved: true}
}

// NoMatch is the empty outcome of a stage.
func NoMatch(stage string) Result {
	return Result{Stage: stage}
}
