package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Vendors can quote the code to support staff for faster
// diagnosis.
//
// Known sentinel and typed errors are matched first with errors.Is and
// errors.As. Everything else falls through to substring patterns.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unknown product type: The selected category is not supported
//	         Action: Choose jewellery, gemstone or diamond
//	IMP002 - Batch not found: The import preview no longer exists
//	         Action: Upload the file again
//	IMP003 - Batch expired: The preview expired before it was confirmed
//	         Action: Upload the file again and confirm within the time limit
//	IMP004 - Invalid state: The batch was already confirmed or cancelled
//	         Action: Refresh to see the batch's current state
//	IMP005 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	IMP006 - Category mismatch: A record does not belong to the batch category
//	IMP007 - Vendor mismatch: A record belongs to a different vendor
//	IMP008 - Missing vendor: No vendor was given for the import
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Duplicate SKU: A SKU in the file already exists in the catalog
//	         Action: Remove or rename the conflicting SKUs and import again
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Unique constraint   Patterns: "duplicate key", "violates unique"
//	DB002 - Connection refused  Patterns: "connection refused"
//	DB003 - Connection reset    Patterns: "connection reset"
//	DB004 - Timeout             Patterns: "timeout"
//	DB005 - Deadlock            Patterns: "deadlock"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large    Patterns: "file too large", "request body too large"
//	FILE002 - Unreadable file   ErrUnreadableFile
//	FILE003 - No data sheet     ErrNoDataSheet
//	FILE004 - No file           Patterns: "no file provided"
//	FILE005 - No data rows      ErrNoDataRows
//	FILE006 - Unsupported type  Patterns: "unsupported file type"
//
// # Exchange Rate Errors (FX001-FX099)
//
//	FX001 - Rate unavailable    Patterns: "exchange rate"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled  context.Canceled
//	REQ002 - Request timeout    context.DeadlineExceeded
//	RATE001 - Rate limited      Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check application
// logs for the original technical error when vendors report ERR000.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorSentinel maps a sentinel error (matched with errors.Is) to a message.
type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{ErrUnknownProductType, UserMessage{
		Message: "The selected product category is not supported",
		Action:  "Choose jewellery, gemstone or diamond",
		Code:    "IMP001",
	}},
	{ErrBatchNotFound, UserMessage{
		Message: "Import preview not found",
		Action:  "Upload the file again",
		Code:    "IMP002",
	}},
	{ErrBatchExpired, UserMessage{
		Message: "The import preview expired before it was confirmed",
		Action:  "Upload the file again and confirm within the time limit",
		Code:    "IMP003",
	}},
	{ErrInvalidTransition, UserMessage{
		Message: "This import was already confirmed or cancelled",
		Action:  "Refresh to see the import's current state",
		Code:    "IMP004",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP005",
	}},
	{ErrProductTypeMismatch, UserMessage{
		Message: "A product does not belong to the selected category",
		Action:  "Upload each category separately",
		Code:    "IMP006",
	}},
	{ErrVendorMismatch, UserMessage{
		Message: "A product belongs to a different vendor",
		Action:  "Upload the file again from your own account",
		Code:    "IMP007",
	}},
	{ErrMissingVendor, UserMessage{
		Message: "No vendor was given for this import",
		Action:  "Sign in again and retry",
		Code:    "IMP008",
	}},
	{ErrUnreadableFile, UserMessage{
		Message: "The file could not be read",
		Action:  "Save it as .xlsx or UTF-8 .csv and upload again",
		Code:    "FILE002",
	}},
	{ErrNoDataSheet, UserMessage{
		Message: "The workbook has no sheet with data",
		Action:  "Put the product table on the first sheet",
		Code:    "FILE003",
	}},
	{ErrNoDataRows, UserMessage{
		Message: "The file has a header but no product rows",
		Action:  "Add at least one product row below the header",
		Code:    "FILE005",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "REQ002",
	}},
}

var conflictMessage = UserMessage{
	Message: "Duplicate SKU already exists in catalog",
	Action:  "Remove or rename the conflicting SKUs and import again",
	Code:    "CAT001",
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Errors (DB001-DB005)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Remove or rename the conflicting SKUs and import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Remove or rename the conflicting SKUs and import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an .xlsx or .csv file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx, .xlsm or .csv file",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Exchange Rate (FX001)
	// =========================================================================
	{
		pattern: "exchange rate",
		msg: UserMessage{
			Message: "Currency conversion is temporarily unavailable",
			Action:  "USD prices will be filled in later; you can continue",
			Code:    "FX001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001) and generic timeouts (DB004)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("confirm: %w", ErrBatchExpired))
//	// msg.Code == "IMP003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var conflict *StoreConflictError
	if errors.As(err, &conflict) {
		msg := conflictMessage
		if len(conflict.SKUs) > 0 {
			msg.Message = fmt.Sprintf("%s: %s", msg.Message, strings.Join(conflict.SKUs, ", "))
		}
		return msg
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
