// Package undo keeps a bounded LIFO of reversible mutation records.
package undo

import "github.com/promptdeck/promptdeck/internal/domain"

// Capacity is the maximum number of retained undo actions.
const Capacity = 10

// Stack is a bounded LIFO of undo actions. Pushing past capacity silently
// evicts the oldest entry, so the most recent history always survives.
//
// Not safe for concurrent use; there is only one mutation path.
type Stack struct {
	actions []domain.UndoAction
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{actions: make([]domain.UndoAction, 0, Capacity)}
}

// Push appends an action, evicting the oldest entry when over capacity.
func (s *Stack) Push(action domain.UndoAction) {
	s.actions = append(s.actions, action)
	if len(s.actions) > Capacity {
		s.actions = s.actions[1:]
	}
}

// Pop removes and returns the most recent action. The second return is false
// when the stack is empty.
func (s *Stack) Pop() (domain.UndoAction, bool) {
	if len(s.actions) == 0 {
		return nil, false
	}
	action := s.actions[len(s.actions)-1]
	s.actions = s.actions[:len(s.actions)-1]
	return action, true
}

// Len returns the number of retained actions. The UI uses this to enable or
// disable its undo affordance; there is no peek.
func (s *Stack) Len() int {
	return len(s.actions)
}
