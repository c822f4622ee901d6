package automaton

import (
	"errors"
	"fmt"
)

var (
	ErrNoStartState  = errors.New("automaton has no start state")
	ErrNoFinalState  = errors.New("automaton has no final state")
	ErrForeignState  = errors.New("state belongs to another builder")
	ErrInvalidBounds = errors.New("invalid quantifier bounds")
)

type CompilationError struct {
	Expression string
	Cause      error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile predicate '%s': %v", e.Expression, e.Cause)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

type EvaluationError struct {
	Expression string
	Cause      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate predicate '%s': %v", e.Expression, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
