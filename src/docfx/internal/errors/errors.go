// Package errors defines the typed failure modes of the workspace loader.
package errors

import (
	stderr "errors"
	"fmt"
)

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

// InvalidArgumentError reports a missing or blank required argument.
// It is always detected before any I/O is performed.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

// Error is an implementation of the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// IsInvalidArgument reports whether an InvalidArgumentError is part of the error chain.
func IsInvalidArgument(e error) bool {
	var ia *InvalidArgumentError
	return stderr.As(e, &ia)
}

// InvalidConfigurationError reports that the evaluation environment cannot be
// provisioned, for example because the toolchain base directory cannot be
// determined. It is fatal to the whole load operation.
type InvalidConfigurationError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// IsInvalidConfiguration reports whether an InvalidConfigurationError is part of the error chain.
func IsInvalidConfiguration(e error) bool {
	var ic *InvalidConfigurationError
	return stderr.As(e, &ic)
}

// ResourceDisposedError reports an operation attempted against a resource
// whose owning evaluation session has been torn down.
type ResourceDisposedError struct {
	Resource string
}

// Error is an implementation of the error interface.
func (e *ResourceDisposedError) Error() string {
	return fmt.Sprintf("%s has been disposed", e.Resource)
}

// IsResourceDisposed reports whether a ResourceDisposedError is part of the error chain.
func IsResourceDisposed(e error) bool {
	var rd *ResourceDisposedError
	return stderr.As(e, &rd)
}

// PreconditionViolationError reports a documented programmer error, such as
// creating a second cached clone of an already-cloned project.
type PreconditionViolationError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (e *PreconditionViolationError) Error() string {
	return fmt.Sprintf("precondition violated: %s", e.Reason)
}

// IsPreconditionViolation reports whether a PreconditionViolationError is part of the error chain.
func IsPreconditionViolation(e error) bool {
	var pv *PreconditionViolationError
	return stderr.As(e, &pv)
}
