// Package wserrors implements the workspace server's typed error taxonomy.
// Errors the facade raises itself are one of the eight kinds declared here;
// callers type-switch or use errors.As to recover structured detail instead
// of parsing messages. An error returned by a delegated capability function,
// and a recovered panic, reach the caller as a plain error of no kind.
package wserrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which of the eight error categories an error belongs to.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindNoProject                Kind = "no_project"
	KindSourceFileNotSupported   Kind = "source_file_not_supported"
	KindFileIgnored              Kind = "file_ignored"
	KindInvalidConfiguration     Kind = "invalid_configuration"
	KindFormatWithErrorsDisabled Kind = "format_with_errors_disabled"
	KindInvalidPattern           Kind = "invalid_pattern"
	KindIO                       Kind = "io"
)

// NotFoundError is returned when a path has no open document.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.Path) }
func (e *NotFoundError) Kind() Kind    { return KindNotFound }

// NoProjectError is returned when a ProjectKey does not resolve to an open
// project.
type NoProjectError struct {
	Key fmt.Stringer
}

func (e *NoProjectError) Error() string { return fmt.Sprintf("no project: %s", e.Key) }
func (e *NoProjectError) Kind() Kind    { return KindNoProject }

// SourceFileNotSupportedError is returned when no capability table is
// registered for a file's language.
type SourceFileNotSupportedError struct {
	Language  string
	Path      string
	Extension string
}

func (e *SourceFileNotSupportedError) Error() string {
	return fmt.Sprintf("source file not supported: %s (path=%s, ext=%s)", e.Language, e.Path, e.Extension)
}
func (e *SourceFileNotSupportedError) Kind() Kind { return KindSourceFileNotSupported }

// FileIgnoredError is returned when an operation targets a document that
// was too large to parse.
type FileIgnoredError struct {
	Path string
}

func (e *FileIgnoredError) Error() string { return fmt.Sprintf("file ignored: %s", e.Path) }
func (e *FileIgnoredError) Kind() Kind    { return KindFileIgnored }

// InvalidConfigurationError is returned when a root config or manifest
// document fails to parse or fails validation.
type InvalidConfigurationError struct {
	Message string
	Cause   error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}
func (e *InvalidConfigurationError) Kind() Kind  { return KindInvalidConfiguration }
func (e *InvalidConfigurationError) Unwrap() error { return e.Cause }

// FormatWithErrorsDisabledError is returned when formatting is requested for
// a document with parse errors and the project's settings disallow it.
type FormatWithErrorsDisabledError struct {
	Path string
}

func (e *FormatWithErrorsDisabledError) Error() string {
	return fmt.Sprintf("format with errors disabled: %s", e.Path)
}
func (e *FormatWithErrorsDisabledError) Kind() Kind { return KindFormatWithErrorsDisabled }

// InvalidPatternError is returned when a pattern id does not resolve, or
// when a pattern fails to compile.
type InvalidPatternError struct {
	Pattern string
	Cause   error
}

func (e *InvalidPatternError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Cause)
	}
	return fmt.Sprintf("invalid pattern %q", e.Pattern)
}
func (e *InvalidPatternError) Kind() Kind    { return KindInvalidPattern }
func (e *InvalidPatternError) Unwrap() error { return e.Cause }

// IOError wraps a filesystem failure with a stack trace captured at the
// point it crossed into the workspace server.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error on %s: %v", e.Path, e.Cause) }
func (e *IOError) Kind() Kind    { return KindIO }
func (e *IOError) Unwrap() error { return e.Cause }

// WrapIO constructs an IOError, attaching a stack trace to the cause.
func WrapIO(path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &IOError{Path: path, Cause: errors.WithStack(cause)}
}

// KindOf extracts the Kind of an error produced by this package, or "" if
// err is nil or foreign.
func KindOf(err error) Kind {
	type kinder interface{ Kind() Kind }
	if k, ok := err.(kinder); ok {
		return k.Kind()
	}
	return ""
}
