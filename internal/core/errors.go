package core

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal input causes. They abort an import before any row is processed.
var (
	ErrUnreadableFile = errors.New("unreadable file")
	ErrNoDataSheet    = errors.New("no data sheet found")
	ErrNoDataRows     = errors.New("no data rows found")
)

var (
	ErrUnknownProductType  = errors.New("unknown product type")
	ErrProductTypeMismatch = errors.New("record product type does not match batch")
	ErrVendorMismatch      = errors.New("record belongs to a different vendor")
	ErrMissingVendor       = errors.New("vendor id is required")
	ErrInvalidTransition   = errors.New("invalid batch state transition")
	ErrBatchNotFound       = errors.New("import batch not found")
	ErrBatchExpired        = errors.New("import batch expired")
)

// FatalInputError reports an upload that cannot be imported at all.
type FatalInputError struct {
	Err    error  // one of ErrUnreadableFile, ErrNoDataSheet, ErrNoDataRows
	Detail string // optional context, e.g. the parser's message
}

func (e *FatalInputError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *FatalInputError) Unwrap() error {
	return e.Err
}

// NewFatalInputError wraps cause with optional detail.
func NewFatalInputError(cause error, detail string) *FatalInputError {
	return &FatalInputError{Err: cause, Detail: detail}
}

// StoreConflictError reports SKUs the store rejected as duplicates of
// existing catalog entries. Updates applied before the conflict stay
// applied.
type StoreConflictError struct {
	SKUs []string
	Err  error
}

func (e *StoreConflictError) Error() string {
	if len(e.SKUs) == 0 {
		return "duplicate SKU already exists in catalog"
	}
	return "duplicate SKU already exists in catalog: " + strings.Join(e.SKUs, ", ")
}

func (e *StoreConflictError) Unwrap() error {
	return e.Err
}
