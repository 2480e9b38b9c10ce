package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomCapacity  = errors.New("room limit reached")
	ErrRateLimited   = errors.New("room creation rate limit exceeded")
	ErrNotInRoom     = errors.New("connection not in the room")
	ErrAlreadyInRoom = errors.New("connection already attached to a room")
)
