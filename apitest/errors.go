package apitest

import (
	"github.com/Laisky/errors/v2"
)

// ErrNoTarget is returned when a prompt names no URL to test.
var ErrNoTarget = errors.New("no target URL found in prompt")

// PlanGenerationError is fatal to a run: no plan could be built from the prompt.
type PlanGenerationError struct {
	Prompt string
	Err    error
}

func (e *PlanGenerationError) Error() string {
	return "plan generation failed: " + e.Err.Error()
}

func (e *PlanGenerationError) Unwrap() error { return e.Err }
