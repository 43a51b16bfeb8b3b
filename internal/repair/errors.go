package repair

import (
	"errors"
	"fmt"
)

const (
	actualRootMissingMessageConstant          = "actual miniconda root does not exist"
	actualRootUnresolvedTemplateConstant      = "%s: unable to derive it from interpreter %q: %v"
	actualRootMissingTemplateConstant         = "%s: %s"
	linkCreationFailedTemplateConstant        = "unable to create junction %s -> %s: %s"
	linkCreationUnknownFailureMessageConstant = "unknown failure"
	executorMissingMessageConstant            = "command executor not configured"
	fileSystemMissingMessageConstant          = "filesystem not configured"
)

// ErrActualRootMissing indicates there is no installation to alias to.
var ErrActualRootMissing = errors.New(actualRootMissingMessageConstant)

// ErrExecutorNotConfigured indicates the command executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// MissingActualRootError reports that the actual root is absent or could not be derived from the interpreter.
type MissingActualRootError struct {
	Path        string
	Interpreter string
	Cause       error
}

func (failure MissingActualRootError) Error() string {
	if len(failure.Path) == 0 {
		return fmt.Sprintf(actualRootUnresolvedTemplateConstant, actualRootMissingMessageConstant, failure.Interpreter, failure.Cause)
	}
	return fmt.Sprintf(actualRootMissingTemplateConstant, actualRootMissingMessageConstant, failure.Path)
}

// Is matches ErrActualRootMissing.
func (failure MissingActualRootError) Is(target error) bool {
	return target == ErrActualRootMissing
}

// Unwrap exposes the interpreter lookup failure, when there was one.
func (failure MissingActualRootError) Unwrap() error {
	return failure.Cause
}

// LinkCreationError reports that the operating system rejected the junction.
type LinkCreationError struct {
	BrokenRoot string
	ActualRoot string
	Details    string
	Cause      error
}

func (failure LinkCreationError) Error() string {
	details := failure.Details
	if len(details) == 0 && failure.Cause != nil {
		details = failure.Cause.Error()
	}
	if len(details) == 0 {
		details = linkCreationUnknownFailureMessageConstant
	}
	return fmt.Sprintf(linkCreationFailedTemplateConstant, failure.BrokenRoot, failure.ActualRoot, details)
}

// Unwrap exposes the underlying command failure.
func (failure LinkCreationError) Unwrap() error {
	return failure.Cause
}
