// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCommandType is returned when a member value cannot be wrapped
// as a command. During scanning this condition is swallowed and the member is
// simply not exposed.
var ErrUnsupportedCommandType = errors.New("unsupported command type")

// ErrInterrupted is returned by the interactive loop when the user interrupts
// it. The shell runner reports it as an abort and exits with failure status.
var ErrInterrupted = errors.New("interrupted")

// ErrNotSettable is returned when an accessor command receives a value but
// the bound target cannot be written to, the getter-only case.
var ErrNotSettable = errors.New("attribute is not settable")

// DuplicateCommandError reports an attempt to insert a second command under a
// name that already exists in a namespace. It is fatal at construction time.
type DuplicateCommandError struct {
	// Name is the colliding command name.
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already defined in namespace", e.Name)
}

// NestedNamespaceError reports nested namespaces that were declared but could
// not be resolved against the scanned object, even after re-checking the live
// instance.
type NestedNamespaceError struct {
	// Names lists every unresolved nested namespace name.
	Names []string
}

func (e *NestedNamespaceError) Error() string {
	return fmt.Sprintf("declared nested namespaces could not be found on object: %s",
		strings.Join(e.Names, ", "))
}

// BindError reports argument values that do not satisfy a command's declared
// signature: wrong arity, an unknown keyword, or an unconvertible value. It is
// a user-facing usage error, distinct from errors returned by the command
// itself.
type BindError struct {
	// Command is the dashed command name.
	Command string
	// Reason describes the mismatch.
	Reason string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}
