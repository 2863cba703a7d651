package raceflow

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrAlreadyActive     = errors.New("race flow already active")
	ErrInvalidConfig     = errors.New("invalid race flow config")
)

// MissingDependencyError is returned by Activate when a required
// collaborator was not supplied.
type MissingDependencyError struct {
	Dependency string
	Requester  string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s: no %s found for %s", ErrMissingDependency, e.Dependency, e.Requester)
}

func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}
