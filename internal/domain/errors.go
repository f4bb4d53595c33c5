package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRoomUnavailable = errors.New("room not available")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError carries field-level messages for input that failed a check.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failed call to the persistence collaborator.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
