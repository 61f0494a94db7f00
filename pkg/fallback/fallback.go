// Package fallback is the single "try, swallow, substitute a default" helper
// used wherever a collaborator failure must not abort the caller.
package fallback

import (
	"fmt"
)

// Result outcome of a call with fallback
type Result[T any] struct {
	Value T
	// Err the swallowed failure, nil when the op succeeded
	Err error
}

// Failed check if the default was substituted
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Call run op and substitute def on error or panic
func Call[T any](op func() (T, error), def T) (r Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			r = Result[T]{Value: def, Err: fmt.Errorf("recovered: %v", p)}
		}
	}()

	v, err := op()
	if err != nil {
		return Result[T]{Value: def, Err: err}
	}

	return Result[T]{Value: v}
}

// Do run op for its side effect only
func Do(op func() error) error {
	return Call(func() (struct{}, error) {
		return struct{}{}, op()
	}, struct{}{}).Err
}
