package game

import "errors"

var (
	// ErrRoomNotFound is returned for unknown or already-finalized rooms.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a join would exceed room capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrInvalidRoomState is returned when an operation is not valid for
	// the room's current status.
	ErrInvalidRoomState = errors.New("operation not valid in current room state")
	// ErrInsufficientPool is returned when the subject pool is too small
	// to build a question with three distractors.
	ErrInsufficientPool = errors.New("not enough signs to build a question set")
	// ErrPlayerNotInRoom is returned when a player acts on a room they
	// never joined.
	ErrPlayerNotInRoom = errors.New("player is not in the room")
)
