package constants

// Common error messages
const (
	ErrInvalidJSON         = "invalid json or missing fields"
	ErrInvalidJSONShort    = "Invalid JSON"
	ErrMissingUserID       = "Missing or invalid user_id in body"
	ErrUserIDRequired      = "user_id required"
	ErrDB                  = "DB error"
	ErrInvalidRequestBody  = "Invalid request body"
	ErrNoAccessibleCompany = "No accessible company found"
	ErrCompanyNotAllowed   = "Company not accessible"
	ErrFailedToQuery       = "Failed to query"
	ErrMethodNotAllowed    = "Method Not Allowed"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrCommitFailed   = "commit failed: "
	ErrQueryFailed    = "query failed: "
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	DateFormatAlt  = "02-01-2006"
)

// Request body keys
const (
	KeyUserID    = "user_id"
	KeyCompanyID = "company_id"
	ValueSuccess = "success"
	ValueError   = "error"
)
