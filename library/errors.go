package library

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the catalog and its persistence backends.
var (
	ErrResourceNotFound       = errors.New("resource not found")
	ErrImportFailure          = errors.New("import failed")
	ErrExportFailure          = errors.New("export failed")
	ErrDuplicateEntity        = errors.New("duplicate entity")
	ErrUnknownEntityType      = errors.New("unknown entity type")
	ErrMalformedRecord        = errors.New("malformed record")
	ErrUnsupportedBackendKind = errors.New("unsupported backend kind")
	ErrInvalidEntity          = errors.New("invalid entity")
)

// ResourceNotFoundError reports a storage resource that does not exist.
type ResourceNotFoundError struct {
	Resource string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %s not found", e.Resource)
}

func (e *ResourceNotFoundError) Is(target error) bool { return target == ErrResourceNotFound }

// ImportError is returned when a catalog cannot be read from storage. Err
// keeps the underlying I/O or decode fault.
type ImportError struct {
	Resource string
	Reason   string
	Err      error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import from %s failed: %s", e.Resource, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error        { return e.Err }
func (e *ImportError) Is(target error) bool { return target == ErrImportFailure }

// ExportError is returned when a catalog cannot be written to storage.
type ExportError struct {
	Resource string
	Err      error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export to %s failed: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("export to %s failed", e.Resource)
}

func (e *ExportError) Unwrap() error        { return e.Err }
func (e *ExportError) Is(target error) bool { return target == ErrExportFailure }

// DuplicateError reports a uniqueness violation on add.
type DuplicateError struct {
	Entity string // "publication" or "user"
	Key    string
}

func (e *DuplicateError) Error() string {
	switch e.Entity {
	case "user":
		return fmt.Sprintf("user with national identifier %s already exists", e.Key)
	default:
		return fmt.Sprintf("%s titled %q already exists", e.Entity, e.Key)
	}
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateEntity }

// UnknownTypeError reports an unrecognized publication discriminator.
type UnknownTypeError struct {
	Token string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown publication type %q", e.Token)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownEntityType }

// MalformedRecordError reports a record that could not be decoded.
type MalformedRecordError struct {
	Record string
	Field  string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed record %q: field %s: %v", e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed record %q: %v", e.Record, e.Err)
}

func (e *MalformedRecordError) Unwrap() error        { return e.Err }
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// UnsupportedBackendError reports a selector token that names no backend.
type UnsupportedBackendError struct {
	Token string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported backend kind %q (supported: %s)", e.Token, kindList())
}

func (e *UnsupportedBackendError) Is(target error) bool { return target == ErrUnsupportedBackendKind }

// ValidationError reports an entity rejected before it reached the catalog.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Entity, e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidEntity }

// IsNotFound reports whether err is a missing storage resource.
func IsNotFound(err error) bool { return errors.Is(err, ErrResourceNotFound) }

// IsImportFailure reports whether err is an import fault.
func IsImportFailure(err error) bool { return errors.Is(err, ErrImportFailure) }

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateEntity) }
