package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps is the default maximum number of steps per pipeline.
// Every terminal replays the whole chain, so an unbounded chain makes every
// evaluation unbounded too.
const DefaultMaxSteps = 1000

// StepsExceededError is returned when a pipeline declares more steps than
// the engine allows (see WithMaxSteps). Nothing is evaluated or memoized.
type StepsExceededError struct {
	Pipeline string // The pipeline that exceeded the limit
	Steps    int    // Number of declared steps
	Limit    int    // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("pipeline %s exceeded max steps: %d steps > %d limit",
		e.Pipeline, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

func checkSteps(pipeline string, steps, limit int) error {
	if limit > 0 && steps > limit {
		return &StepsExceededError{Pipeline: pipeline, Steps: steps, Limit: limit}
	}
	return nil
}
