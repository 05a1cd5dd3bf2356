// Package errors provides standardized error handling for the follow-up pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeChannelNotConfigured   ErrorCode = "CHANNEL_NOT_CONFIGURED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDataIntegrity   ErrorCode = "DATA_INTEGRITY_ERROR"
	ErrCodeSettingsInvalid ErrorCode = "SETTINGS_INVALID"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeInvoiceFetchFailed       ErrorCode = "INVOICE_FETCH_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeLogAppendFailed          ErrorCode = "LOG_APPEND_FAILED"
	ErrCodeInvoiceUpdateFailed      ErrorCode = "INVOICE_UPDATE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewChannelNotConfiguredError creates a non-retryable channel configuration error.
// A channel without credentials is skipped, never fatal.
func NewChannelNotConfiguredError(channel, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelNotConfigured,
		Message:   fmt.Sprintf("Channel '%s' is not configured", channel),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDataIntegrityError creates a non-retryable error for invoices with
// missing client or account records.
func NewDataIntegrityError(invoiceID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataIntegrity,
		Message:   "Invoice references missing client or account data",
		Details:   fmt.Sprintf("invoiceId: %s, %s", invoiceID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSettingsInvalidError creates a non-retryable owner settings validation error.
func NewSettingsInvalidError(ownerID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSettingsInvalid,
		Message:   "Owner settings failed validation",
		Details:   fmt.Sprintf("ownerId: %s, %s", ownerID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvoiceFetchFailedError creates a retryable error for a failed candidate fetch.
// This is the only error that aborts an entire processor run.
func NewInvoiceFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvoiceFetchFailed,
		Message:   "Failed to fetch overdue invoices",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogAppendFailedError creates a retryable error for a failed follow-up log insert.
func NewLogAppendFailedError(invoiceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogAppendFailed,
		Message:   "Failed to append follow-up log entry",
		Details:   fmt.Sprintf("invoiceId: %s, error: %s", invoiceID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvoiceUpdateFailedError creates a retryable error for a failed invoice mutation.
func NewInvoiceUpdateFailedError(invoiceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvoiceUpdateFailed,
		Message:   "Failed to update invoice after send",
		Details:   fmt.Sprintf("invoiceId: %s, error: %s", invoiceID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeInvoiceFetchFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeLogAppendFailed,
		ErrCodeInvoiceUpdateFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	default:
		return 0 // Business/data errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CHANNEL") || strings.Contains(codeStr, "NOTIFICATION"):
		return "DELIVERY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "LOG") ||
		strings.Contains(codeStr, "UPDATE"):
		return "STORAGE"
	case strings.Contains(codeStr, "INTEGRITY") || strings.Contains(codeStr, "SETTINGS"):
		return "DATA"
	default:
		return "OTHER"
	}
}
