package topology

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownComponent   = errors.New("unknown component")
	ErrDuplicateName      = errors.New("duplicate component name")
	ErrNotALink           = errors.New("component is not a link")
	ErrInvalidProbability = errors.New("probability outside [0, 1]")
	ErrEmptyName          = errors.New("component name is required")
)

// Error wraps a graph construction or lookup failure with the offending name.
type Error struct {
	Kind error
	Name string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.Name)
	}
	return fmt.Sprintf("%s: %q: %s", e.Kind.Error(), e.Name, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func unknown(name string) error {
	return &Error{Kind: ErrUnknownComponent, Name: name}
}

func invalidProbability(name, field string, v float64) error {
	return &Error{Kind: ErrInvalidProbability, Name: name, Msg: fmt.Sprintf("%s=%g", field, v)}
}
