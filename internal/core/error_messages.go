package core

// error_messages.go maps technical errors to operator-facing messages.
//
// # Error Codes Reference
//
// Codes are grouped by the stage that produced the error:
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Another run is in progress
//	         Action: Wait for the current run to finish and retry
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - Run cancelled: The run was cancelled before it finished
//	         Action: Trigger a new run when ready
//	         Patterns: "context canceled"
//
//	RUN003 - Run timeout: The run exceeded its time limit
//	         Action: Raise RUN_TIMEOUT or check source sizes
//	         Patterns: "context deadline exceeded"
//
//	RUN004 - Unknown entity: The entity is not configured
//	         Action: Use one of the names listed by /api/entities
//	         Patterns: "unknown entity"
//
//	RUN005 - Bad trigger: The trigger request body could not be read
//	         Action: Send an empty body or a JSON object with "params"
//	         Patterns: "invalid trigger"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Object not found: A raw input object does not exist
//	         Action: Upload the source files to the raw prefix
//	         Patterns: "object not found", "nosuchkey"
//
//	STO002 - Bucket not found: The configured bucket does not exist
//	         Action: Check S3_BUCKET_NAME and AWS_REGION
//	         Patterns: "nosuchbucket", "bucket does not exist"
//
//	STO003 - Access denied: Credentials lack permission on the bucket
//	         Action: Check the IAM policy for the ETL credentials
//	         Patterns: "accessdenied", "access denied", "forbidden"
//
// # Output Errors (OUT001-OUT099)
//
//	OUT001 - Invalid column: A column name cannot be written to Parquet
//	         Action: Rename the source column (no commas or '=')
//	         Patterns: "invalid parquet column name"
//
//	OUT002 - Type mismatch: A cell does not match its column type
//	         Action: Report this as a defect; normalization should prevent it
//	         Patterns: "does not match type"
//
// # Warehouse Errors (WH001-WH099)
//
//	WH001 - Connection refused: Unable to connect to the warehouse
//	        Action: Check REDSHIFT_URL and network access
//	        Patterns: "connection refused"
//
//	WH002 - Authentication failed: The warehouse rejected the credentials
//	        Action: Check the user and password in REDSHIFT_URL
//	        Patterns: "password authentication failed"
//
//	WH003 - Missing table: The target table does not exist
//	        Action: Run the staging script before loading
//	        Patterns: "does not exist"
//
//	WH004 - Permission denied: The warehouse user lacks a privilege
//	        Action: Grant the load user access to the target schema
//	        Patterns: "permission denied"
//
//	WH005 - Timeout: A warehouse statement timed out
//	        Action: Raise WAREHOUSE_STATEMENT_TIMEOUT or retry later
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the logs for the
// technical error, which carries the same run_id.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgBusy = UserMessage{
		Message: "Another run is in progress",
		Action:  "Wait for the current run to finish and retry",
		Code:    "RUN001",
	}
	msgObjectNotFound = UserMessage{
		Message: "A raw input object does not exist",
		Action:  "Upload the source files to the raw prefix",
		Code:    "STO001",
	}
	msgBucketNotFound = UserMessage{
		Message: "The configured bucket does not exist",
		Action:  "Check S3_BUCKET_NAME and AWS_REGION",
		Code:    "STO002",
	}
	msgAccessDenied = UserMessage{
		Message: "Credentials lack permission on the bucket",
		Action:  "Check the IAM policy for the ETL credentials",
		Code:    "STO003",
	}
)

var errorPatterns = []errorPattern{
	// Run errors
	{pattern: "too many concurrent runs", msg: msgBusy},
	{pattern: "context canceled", msg: UserMessage{
		Message: "The run was cancelled before it finished",
		Action:  "Trigger a new run when ready",
		Code:    "RUN002",
	}},
	{pattern: "context deadline exceeded", msg: UserMessage{
		Message: "The run exceeded its time limit",
		Action:  "Raise RUN_TIMEOUT or check source sizes",
		Code:    "RUN003",
	}},
	{pattern: "unknown entity", msg: UserMessage{
		Message: "The entity is not configured",
		Action:  "Use one of the names listed by /api/entities",
		Code:    "RUN004",
	}},
	{pattern: "invalid trigger", msg: UserMessage{
		Message: "The trigger request body could not be read",
		Action:  `Send an empty body or a JSON object with "params"`,
		Code:    "RUN005",
	}},

	// Storage errors
	{pattern: "object not found", msg: msgObjectNotFound},
	{pattern: "nosuchkey", msg: msgObjectNotFound},
	{pattern: "nosuchbucket", msg: msgBucketNotFound},
	{pattern: "bucket does not exist", msg: msgBucketNotFound},
	{pattern: "accessdenied", msg: msgAccessDenied},
	{pattern: "access denied", msg: msgAccessDenied},
	{pattern: "forbidden", msg: msgAccessDenied},

	// Output errors
	{pattern: "invalid parquet column name", msg: UserMessage{
		Message: "A column name cannot be written to Parquet",
		Action:  "Rename the source column (no commas or '=')",
		Code:    "OUT001",
	}},
	{pattern: "does not match type", msg: UserMessage{
		Message: "A cell does not match its column type",
		Action:  "Report this as a defect; normalization should prevent it",
		Code:    "OUT002",
	}},

	// Warehouse errors
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to the warehouse",
		Action:  "Check REDSHIFT_URL and network access",
		Code:    "WH001",
	}},
	{pattern: "password authentication failed", msg: UserMessage{
		Message: "The warehouse rejected the credentials",
		Action:  "Check the user and password in REDSHIFT_URL",
		Code:    "WH002",
	}},
	{pattern: "does not exist", msg: UserMessage{
		Message: "The target table does not exist",
		Action:  "Run the staging script before loading",
		Code:    "WH003",
	}},
	{pattern: "permission denied", msg: UserMessage{
		Message: "The warehouse user lacks a privilege",
		Action:  "Grant the load user access to the target schema",
		Code:    "WH004",
	}},
	{pattern: "timeout", msg: UserMessage{
		Message: "A warehouse statement timed out",
		Action:  "Raise WAREHOUSE_STATEMENT_TIMEOUT or retry later",
		Code:    "WH005",
	}},

	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for this run",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message. It
// returns the zero UserMessage for a nil error and ERR000 when no pattern
// matches.
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsKnown reports whether err matches a specific pattern rather than the
// ERR000 fallback.
func IsKnown(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
