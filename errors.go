package pantry

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedType indicates a value kind that cannot be archived (chan, func, ...).
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotPointer indicates a Load target that is not a non-nil pointer.
	ErrNotPointer = errors.New("load target must be a non-nil pointer")

	// ErrMalformed indicates input that the format backend could not parse.
	ErrMalformed = errors.New("malformed input")

	// ErrMissingField indicates a named member absent from the input.
	ErrMissingField = errors.New("missing field")

	// ErrSizeMismatch indicates a stored sequence whose length differs from a fixed array.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrOverflow indicates a stored number that does not fit the destination type.
	ErrOverflow = errors.New("value overflows destination")

	// ErrUnsupportedVersion indicates a stored class version newer than the type's version.
	ErrUnsupportedVersion = errors.New("unsupported class version")

	// ErrUnregisteredClass indicates a dynamic type with no class ID in the registry.
	ErrUnregisteredClass = errors.New("unregistered class")

	// ErrUnknownClass indicates a stored class ID absent from the registry.
	ErrUnknownClass = errors.New("unknown class")

	// ErrDuplicateClass indicates a class ID already registered for another type.
	ErrDuplicateClass = errors.New("duplicate class")

	// ErrClassMismatch indicates a registered type that does not fit the destination.
	ErrClassMismatch = errors.New("class does not implement destination type")

	// ErrInvalidPointer indicates a stored pointer id out of sequence.
	ErrInvalidPointer = errors.New("invalid pointer id")

	// ErrPointerType indicates a back-reference to an object of another type.
	ErrPointerType = errors.New("pointer type mismatch")

	// ErrMissingConstructor indicates a construct-data type with no registered constructor.
	ErrMissingConstructor = errors.New("missing constructor")

	// ErrConstruct indicates a registered constructor returned an error.
	ErrConstruct = errors.New("construction failed")

	// ErrMissingLoader indicates a type with a save hook but no load hook.
	ErrMissingLoader = errors.New("missing loader")

	// ErrMissingSaver indicates a type with a load hook but no save hook.
	ErrMissingSaver = errors.New("missing saver")

	// ErrInvalidName indicates a member name the format cannot represent.
	ErrInvalidName = errors.New("invalid name")

	// ErrHook indicates a hook method returned an error of its own.
	ErrHook = errors.New("hook failed")

	// ErrIO indicates the underlying stream failed.
	ErrIO = errors.New("stream error")

	// ErrClosed indicates use of an archive after Close.
	ErrClosed = errors.New("archive closed")
)

// ArchiveError represents an error while saving or loading a value.
// It wraps a sentinel error with the path of the value that failed.
type ArchiveError struct {
	Err   error  // Underlying sentinel error (ErrUnknownClass, etc.)
	Path  string // Dotted path of the failing value, e.g. "value0.shape.radius"
	Op    string // Operation that failed (save, load)
	Cause error  // Original error, if any
}

func (e *ArchiveError) Error() string {
	msg := e.Err.Error()
	switch {
	case e.Cause == nil:
	case errors.Is(e.Cause, e.Err):
		msg = e.Cause.Error()
	default:
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *ArchiveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// FormatError represents input a format backend could not parse.
type FormatError struct {
	ContentType string // Format that failed
	Cause       error  // Original error from the parser
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformed.Error(), e.ContentType, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrMalformed.Error(), e.ContentType)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformed
}

// ConfigError represents a registry configuration error.
type ConfigError struct {
	Err     error  // Underlying sentinel error (ErrDuplicateClass, etc.)
	ClassID string // Class ID involved
	Type    string // Go type involved
}

func (e *ConfigError) Error() string {
	if e.ClassID != "" && e.Type != "" {
		return fmt.Sprintf("%s %q (type %s)", e.Err.Error(), e.ClassID, e.Type)
	}
	if e.ClassID != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.ClassID)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s (type %s)", e.Err.Error(), e.Type)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewFormatError creates a FormatError for a backend parse failure.
// Format packages use it so that callers can match ErrMalformed.
func NewFormatError(contentType string, cause error) error {
	return &FormatError{
		ContentType: contentType,
		Cause:       cause,
	}
}

// MissingField returns the error reported by self-describing readers for an absent member.
func MissingField(name string) error {
	return fmt.Errorf("%w %q", ErrMissingField, name)
}

// newArchiveError creates an ArchiveError for a failed value.
func newArchiveError(sentinel error, op, path string, cause error) error {
	return &ArchiveError{
		Err:   sentinel,
		Path:  path,
		Op:    op,
		Cause: cause,
	}
}

// newConfigError creates a ConfigError for registry problems.
func newConfigError(sentinel error, classID, typeName string) error {
	return &ConfigError{
		Err:     sentinel,
		ClassID: classID,
		Type:    typeName,
	}
}
