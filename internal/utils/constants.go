package utils

// Application Constants
const (
	AppName    = "SkillSwap"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheUserRatingPrefix = "user_rating:"
	LockUserRatingPrefix  = "rating:user:"
)

// Event Types
const (
	EventSwapProposed      = "swap_proposed"
	EventSwapAccepted      = "swap_accepted"
	EventSwapRejected      = "swap_rejected"
	EventSwapCancelled     = "swap_cancelled"
	EventSwapCompleted     = "swap_completed"
	EventRatingSubmitted   = "rating_submitted"
	EventAggregateComputed = "aggregate_recomputed"
)
