// Package errors holds the sentinel errors shared across reqfile together with
// the closed failure taxonomy of a fetch: every failure of the fetch operation is
// an *Error carrying exactly one Kind, so callers can map kinds to their own error
// representation without inspecting transport or filesystem error types.
package errors

import (
	"errors"
	"fmt"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigVersion     = fmt.Errorf("unsupported config version")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrInvalidFormat     = fmt.Errorf("invalid output format")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")

	// Sink errors.
	ErrInvalidDestination = fmt.Errorf("invalid destination")
	ErrNoObjectStore      = fmt.Errorf("no object store configured")
)

// Fetch failure kinds. An *Error matches the sentinel of its kind under errors.Is.
var (
	ErrInvalidHeaderName  = fmt.Errorf("invalid header name")
	ErrInvalidHeaderValue = fmt.Errorf("invalid header value")
	ErrNetwork            = fmt.Errorf("network error")
	ErrPersistence        = fmt.Errorf("persistence error")
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	KindInvalidHeaderName
	KindInvalidHeaderValue
	KindNetwork
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindInvalidHeaderName:
		return "InvalidHeaderName"
	case KindInvalidHeaderValue:
		return "InvalidHeaderValue"
	case KindNetwork:
		return "NetworkError"
	case KindPersistence:
		return "PersistenceError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidHeaderName:
		return ErrInvalidHeaderName
	case KindInvalidHeaderValue:
		return ErrInvalidHeaderValue
	case KindNetwork:
		return ErrNetwork
	case KindPersistence:
		return ErrPersistence
	default:
		return nil
	}
}

// Error is a fetch failure. Key is set for header failures, Path for persistence
// failures; Err is the underlying parser, transport or filesystem error.
type Error struct {
	Kind Kind
	Key  string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidHeaderName, KindInvalidHeaderValue:
		msg = fmt.Sprintf("%s %q", e.Kind.sentinel(), e.Key)
	case KindPersistence:
		msg = fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Path)
	case KindNetwork:
		msg = ErrNetwork.Error()
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// InvalidHeaderName reports a header key that is not a valid field-name.
func InvalidHeaderName(key string, err error) error {
	return &Error{Kind: KindInvalidHeaderName, Key: key, Err: err}
}

// InvalidHeaderValue reports a header value that is not a valid field-value.
func InvalidHeaderValue(key string, err error) error {
	return &Error{Kind: KindInvalidHeaderValue, Key: key, Err: err}
}

// Network reports a transport failure.
func Network(err error) error {
	return &Error{Kind: KindNetwork, Err: err}
}

// Persistence reports a failure writing to path.
func Persistence(path string, err error) error {
	return &Error{Kind: KindPersistence, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidFormat, format)
}

// ErrConfigVersionWithDetails is a helper to create a wrapped error with the unsupported version and constraint.
func ErrConfigVersionWithDetails(version, constraint string) error {
	return fmt.Errorf("%w: %s does not satisfy %s", ErrConfigVersion, version, constraint)
}
