// Package plugin implements the host stack-exchange boundary.
//
// A host pushes arguments onto a shared Stack and invokes a named function
// from a Registry. Each function pops its inputs and pushes its outputs on
// the same stack. The exported process functions pop one executable name and
// push one integer code: 0 for success, 1 for failure.
package plugin

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrStackEmpty is returned when a function pops more values than were pushed.
	ErrStackEmpty = errors.New("stack is empty")
	// ErrNotInteger is returned when PopInt finds a non-numeric value.
	ErrNotInteger = errors.New("stack value is not an integer")
)

// Stack is a LIFO of string values shared between host and plugin.
type Stack struct {
	items []string
}

// NewStack creates a stack with values pushed in order, so the last value
// is on top.
func NewStack(values ...string) *Stack {
	s := &Stack{}
	for _, v := range values {
		s.Push(v)
	}
	return s
}

// Push places v on top of the stack.
func (s *Stack) Push(v string) {
	s.items = append(s.items, v)
}

// PushInt pushes the decimal form of n.
func (s *Stack) PushInt(n int) {
	s.Push(strconv.Itoa(n))
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (string, error) {
	if len(s.items) == 0 {
		return "", ErrStackEmpty
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, nil
}

// PopInt pops the top value and parses it as an integer.
func (s *Stack) PopInt() (int, error) {
	v, err := s.Pop()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, v)
	}
	return n, nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return len(s.items)
}
