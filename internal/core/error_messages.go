package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Users quote the code; support looks it up here.
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset not found
//	        Patterns: "dataset not found"
//	DS002 - Dataset already ingested or being ingested
//	        Patterns: "already ingested or in progress"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File exceeds the configured size limit
//	          Patterns: "file too large"
//	FILE002 - File content could not be parsed
//	          Patterns: "could not parse file"
//	FILE004 - No file in the multipart form
//	          Patterns: "no file provided"
//	FILE005 - File has no header row or no content
//	          Patterns: "no columns to parse"
//	FILE006 - Declared file type has no parser
//	          Patterns: "unsupported file type"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Dataset name missing
//	VAL002 - Unknown file_type
//	VAL003 - limit out of range
//	VAL004 - skip out of range
//	VAL005 - Malformed dataset id in the URL
//	VAL006 - Request body is not valid JSON
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB002 - Unique constraint
//	DB003 - Foreign key
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//	DB008 - SQLite database locked
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled by the client
//	REQ002 - Request deadline exceeded
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check application logs for the original
// technical error; the request_id field ties the log line to the response.

import (
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched case-insensitively with strings.Contains.
// The first match wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Dataset errors
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "Check the dataset id or list datasets to find it",
			Code:    "DS001",
		},
	},
	{
		pattern: "already ingested or in progress",
		msg: UserMessage{
			Message: "This dataset has already received a file",
			Action:  "Create a new dataset to upload another file",
			Code:    "DS002",
		},
	},

	// File errors. FILE005 precedes FILE002 because empty-file errors are parse errors too.
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no columns to parse",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "could not parse file",
		msg: UserMessage{
			Message: "File content could not be parsed",
			Action:  "Check that the file matches the dataset's declared file type",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Attach the file in the \"file\" form field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Use csv, excel or json",
			Code:    "FILE006",
		},
	},

	// Validation errors
	{
		pattern: "name is required",
		msg: UserMessage{
			Message: "Dataset name is required",
			Action:  "Provide a non-empty name",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid file_type",
		msg: UserMessage{
			Message: "Unknown file type",
			Action:  "Use csv, excel or json",
			Code:    "VAL002",
		},
	},
	{
		pattern: "limit must be",
		msg: UserMessage{
			Message: "limit is out of range",
			Action:  "Use a limit between 1 and 100",
			Code:    "VAL003",
		},
	},
	{
		pattern: "skip must be",
		msg: UserMessage{
			Message: "skip is out of range",
			Action:  "Use a skip of 0 or more",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid dataset id",
		msg: UserMessage{
			Message: "Invalid dataset id",
			Action:  "Dataset ids are positive integers",
			Code:    "VAL005",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request body is not valid JSON",
			Action:  "Send a JSON object with name, description and file_type",
			Code:    "VAL006",
		},
	},

	// Database constraint errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Please try again or contact support",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Please try again or contact support",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Check that the dataset still exists",
			Code:    "DB003",
		},
	},

	// Request errors precede DB006 so deadlines are not reported as database timeouts.
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},

	// Database connection errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database is busy",
			Action:  "Please try again",
			Code:    "DB008",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
//	msg := MapError(fmt.Errorf("get dataset 4: %w", ErrNotFound))
//	// msg.Code == "DS001"
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

// IsUserFacing reports whether err matched a specific pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
