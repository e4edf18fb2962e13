// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown      ErrorType = iota
	ErrorTypeTransient              // Busy or interrupted filesystem calls
	ErrorTypePermanent              // Permissions, read-only filesystems
	ErrorTypeInvalidInput           // Bad paths
	ErrorTypeNotFound               // Missing files or directories
	ErrorTypeNoSpace                // Disk or quota full
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypePermanent:
		return "Permanent"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	case ErrorTypeNotFound:
		return "NotFound"
	case ErrorTypeNoSpace:
		return "NoSpace"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes a filesystem error. Busy, interrupted and
// would-block conditions are transient; everything else is not retried.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case isTransient(err):
		return &ClassifiedError{Original: err, Type: ErrorTypeTransient, Retryable: true}
	case errors.Is(err, fs.ErrNotExist):
		return &ClassifiedError{Original: err, Type: ErrorTypeNotFound}
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent}
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return &ClassifiedError{Original: err, Type: ErrorTypeNoSpace}
	case errors.Is(err, syscall.EISDIR), errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, fs.ErrInvalid):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown}
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETXTBSY)
}

// IsRetryable reports whether an error should be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).IsRetryable()
}
