// Package verifier asks a language model whether a submission solves its challenge.
package verifier

import (
	"context"
)

// Request describes the challenge and the code submitted for it.
type Request struct {
	Title       string
	Description string
	Difficulty  string
	Code        string
	Language    string
}

// Result is the verdict on a submission. Scores are 0..100.
type Result struct {
	SolvesChallenge   bool
	CorrectnessScore  int
	LogicScore        int
	CompletenessScore int
	OverallScore      int
	Feedback          string
	Issues            []string
	Strengths         []string
}

type Verifier interface {
	Verify(ctx context.Context, req Request) Result
}

// Basic is used when no model is configured or the model call fails. It never
// accepts a solution, leaving the decision to a trainer.
type Basic struct{}

func (Basic) Verify(context.Context, Request) Result {
	return BasicResult()
}

func BasicResult() Result {
	return Result{
		SolvesChallenge:   false,
		CorrectnessScore:  30,
		LogicScore:        30,
		CompletenessScore: 30,
		OverallScore:      30,
		Feedback:          "AI verification unavailable. Manual review required.",
		Issues:            []string{"Could not verify solution automatically - manual review needed"},
		Strengths:         []string{"Code syntax appears valid"},
	}
}
