package amber

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned by setters that reject a value.
var ErrInvalidParameter = errors.New("amber: invalid parameter")

// ParameterError describes which parameter was rejected and why.
type ParameterError struct {
	Name   string
	Value  interface{}
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("amber: invalid %s (%v): %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func invalid(name string, value interface{}, reason string) error {
	return &ParameterError{Name: name, Value: value, Reason: reason}
}
