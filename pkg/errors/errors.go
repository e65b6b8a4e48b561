package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

// Failures are classified by the layer that raised them: configuration,
// connectivity, query execution, constraint rejection, RLS policy denial,
// migration, timeout, or a dependency that never answered.
const (
	CodeConfig     Code = "CONFIG_ERROR"
	CodeConnection Code = "CONNECTION_ERROR"
	CodeQuery      Code = "QUERY_ERROR"
	CodeConstraint Code = "CONSTRAINT_VIOLATION"
	CodePolicy     Code = "POLICY_DENIED"
	CodeMigration  Code = "MIGRATION_ERROR"
	CodeTimeout    Code = "TIMEOUT"
	CodeDependency Code = "DEPENDENCY_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

type Metadata struct {
	ExitCode      int
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeConfig: {
		ExitCode:      2,
		Retryable:     false,
		PublicMessage: "invalid or missing configuration",
	},
	CodeConnection: {
		ExitCode:      1,
		Retryable:     true,
		PublicMessage: "could not reach the datasource",
	},
	CodeQuery: {
		ExitCode:      1,
		Retryable:     false,
		PublicMessage: "query failed",
	},
	CodeConstraint: {
		ExitCode:      1,
		Retryable:     false,
		PublicMessage: "constraint violation",
	},
	CodePolicy: {
		ExitCode:      1,
		Retryable:     false,
		PublicMessage: "row level security denied the operation",
	},
	CodeMigration: {
		ExitCode:      1,
		Retryable:     false,
		PublicMessage: "migration failed",
	},
	CodeTimeout: {
		ExitCode:      1,
		Retryable:     true,
		PublicMessage: "operation timed out",
	},
	CodeDependency: {
		ExitCode:      1,
		Retryable:     true,
		PublicMessage: "dependency unavailable",
	},
	CodeInternal: {
		ExitCode:      1,
		Retryable:     false,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsRetryable reports whether the classified error is worth another attempt.
func IsRetryable(err error) bool {
	return MetadataFor(Classify(err)).Retryable
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
