package model

import (
	"errors"
	"strings"
)

// Transition is one edge of the recommended order workflow.
type Transition struct {
	From OrderStatus
	To   OrderStatus
}

// validTransitions is the tightened workflow. It is only enforced when
// strict transitions are enabled; by default any status may be set.
var validTransitions = []Transition{
	{From: StatusPending, To: StatusConfirmed},
	{From: StatusPending, To: StatusCancelled},
	{From: StatusConfirmed, To: StatusShipped},
	{From: StatusConfirmed, To: StatusCancelled},
	{From: StatusShipped, To: StatusDelivered},
	{From: StatusShipped, To: StatusCancelled},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ErrInvalidTransition is wrapped by CanTransition failures.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidTransitionsFrom returns the statuses reachable from s in one step.
func ValidTransitionsFrom(s OrderStatus) []OrderStatus {
	var nexts []OrderStatus
	for _, t := range validTransitions {
		if t.From == s {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(ValidTransitionsFrom(s)) == 0
}

// CanTransition checks from → to against the workflow. Re-applying the
// current status is always allowed.
func CanTransition(from, to OrderStatus) error {
	if from == to || transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return &TransitionError{From: from, To: to}
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	nexts := ValidTransitionsFrom(e.From)
	allowed := "none (terminal state)"
	if len(nexts) > 0 {
		parts := make([]string, len(nexts))
		for i, s := range nexts {
			parts[i] = string(s)
		}
		allowed = strings.Join(parts, ", ")
	}
	return "cannot move order from " + string(e.From) + " to " + string(e.To) + "; allowed: " + allowed
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
