package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Room errors
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeRoomFull         = "room_full"
	ErrCodeInvalidRoomState = "invalid_room_state"
	ErrCodeInsufficientPool = "insufficient_pool"
	ErrCodePlayerNotInRoom  = "player_not_in_room"
	ErrCodeInvalidRoomCode  = "invalid_room_code"

	// Profile/leaderboard errors
	ErrCodeStatsUpdateFailed      = "stats_update_failed"
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Dictionary errors
	ErrCodeSignNotFound = "sign_not_found"

	// WebSocket errors
	ErrCodeInvalidPayload = "invalid_payload"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
