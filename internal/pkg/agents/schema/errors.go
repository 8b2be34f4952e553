package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingHistory is returned when an action asks for prior messages of a
// kind that were never produced. It means the state machine routed to an
// action whose precondition does not hold.
var ErrMissingHistory = errors.New("missing history")

// MissingHistory wraps ErrMissingHistory with the query that came up empty.
func MissingHistory(role string, kind ActionKind) error {
	return fmt.Errorf("%w: role=%q kind=%s", ErrMissingHistory, role, kind)
}

// CorruptStateError reports a persisted log or checkpoint that exists but
// cannot be parsed.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt persisted state %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// InvalidRoleNameError reports a role name that cannot key a memory file.
type InvalidRoleNameError struct {
	Name   string
	Reason string
}

func (e *InvalidRoleNameError) Error() string {
	return fmt.Sprintf("invalid role name %q: %s", e.Name, e.Reason)
}

// ValidateRoleName rejects names that are empty, would leave the memory
// directory, or contain the "_" that separates name from profile on disk.
func ValidateRoleName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidRoleNameError{Name: name, Reason: "empty"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidRoleNameError{Name: name, Reason: "contains a path separator"}
	case strings.Contains(name, ".."):
		return &InvalidRoleNameError{Name: name, Reason: `contains ".."`}
	case strings.Contains(name, "_"):
		return &InvalidRoleNameError{Name: name, Reason: `contains "_"`}
	}
	return nil
}

// UnknownActionKindError reports a checkpoint naming an action kind that the
// current role cannot run.
type UnknownActionKindError struct {
	Role string
	Kind ActionKind
}

func (e *UnknownActionKindError) Error() string {
	return fmt.Sprintf("role %q has no action %q", e.Role, e.Kind)
}

// ExternalCallError wraps a failure of the generation, prompt or rendering
// collaborators.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("external call %s: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalCallError, passing nil through.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalCallError{Op: op, Err: err}
}
