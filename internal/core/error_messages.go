// Package core provides the business logic behind the country table.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Data Errors (DATA001-DATA099)
//
// Errors related to the dataset load:
//
//	DATA001 - Data pending: The country data is still loading
//	          Action: Please wait a moment and refresh
//	          Patterns: "data is still loading"
//
//	DATA002 - Data unavailable: Error loading data!!!
//	          Action: Reload the application to try again
//	          Patterns: "data unavailable"
//
// # View Errors (VIEW001-VIEW099)
//
// Errors related to stateful table views:
//
//	VIEW001 - View not found: The table view does not exist or has expired
//	          Action: Create a new view
//	          Patterns: "view not found"
//
//	VIEW002 - Too many views: The server is holding too many open views
//	          Action: Close unused views or try again later
//	          Patterns: "too many views"
//
// # Control Errors (COL001, PAGE001)
//
// Errors related to invalid table controls:
//
//	COL001 - Unknown column: The column does not exist
//	         Action: Use one of: name, capital, region, population, languages
//	         Patterns: "unknown column"
//
//	PAGE001 - Invalid page size: Page size must be at least 1
//	          Action: Choose one of the offered page sizes
//	          Patterns: "invalid page size"
//
// # Request Errors (REQ001-REQ099)
//
// Errors related to the request itself:
//
//	REQ001 - Invalid request: The request body could not be read
//	         Action: Send a JSON object with the documented fields
//	         Patterns: "invalid request body"
//
//	REQ002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ003 - Request timeout: Request timed out
//	         Action: Please try again later
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
// Errors related to request throttling:
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Data errors come first because a failed
// load wraps the underlying fetch error, which may itself mention a
// cancelled or expired context.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Data Errors (DATA001-DATA002)
	// These errors occur before the dataset load has succeeded.
	// =========================================================================
	{
		pattern: "data is still loading",
		msg: UserMessage{
			Message: "The country data is still loading",
			Action:  "Please wait a moment and refresh",
			Code:    "DATA001",
		},
	},
	{
		pattern: "data unavailable",
		msg: UserMessage{
			Message: "Error loading data!!!",
			Action:  "Reload the application to try again",
			Code:    "DATA002",
		},
	},

	// =========================================================================
	// View Errors (VIEW001-VIEW002)
	// These errors occur when addressing stateful views.
	// =========================================================================
	{
		pattern: "view not found",
		msg: UserMessage{
			Message: "The table view does not exist or has expired",
			Action:  "Create a new view",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "too many views",
		msg: UserMessage{
			Message: "The server is holding too many open views",
			Action:  "Close unused views or try again later",
			Code:    "VIEW002",
		},
	},

	// =========================================================================
	// Control Errors (COL001, PAGE001)
	// These errors occur when a table control names something invalid.
	// =========================================================================
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The column does not exist",
			Action:  "Use one of: name, capital, region, population, languages",
			Code:    "COL001",
		},
	},
	{
		pattern: "invalid page size",
		msg: UserMessage{
			Message: "Page size must be at least 1",
			Action:  "Choose one of the offered page sizes",
			Code:    "PAGE001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON object with the documented fields",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// These errors occur when request limits are exceeded.
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("view %s: %w", id, ErrViewNotFound)
//	msg := MapError(err)
//	// msg.Code == "VIEW001"
//	// msg.Message == "The table view does not exist or has expired"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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
//
// Example output: "Page size must be at least 1 (Code: PAGE001). Choose one of the offered page sizes"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
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

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(err)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "The column does not exist"
//	fmt.Println(ue.User.Code)         // Show "COL001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
