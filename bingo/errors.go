package bingo

import "errors"

// Error text doubles as the message shown to the requesting client.
var (
	ErrInvalidName      = errors.New("Please enter a valid name")
	ErrInvalidRoomCode  = errors.New("Invalid room code")
	ErrRoomNotFound     = errors.New("Room not found")
	ErrNotInRoom        = errors.New("Not in room")
	ErrAlreadyInRoom    = errors.New("Already in this room")
	ErrGameStarted      = errors.New("Game has already started")
	ErrGameNotStarted   = errors.New("Game has not started yet")
	ErrLockOutFull      = errors.New("Lock-out mode is limited to 2 players")
	ErrLockOutPlayers   = errors.New("Lock-out mode requires exactly 2 players")
	ErrNotHost          = errors.New("Only the host can start the game")
	ErrNotLockOut       = errors.New("Not in lock-out mode")
	ErrLockOutOnly      = errors.New("Not available in lock-out mode")
	ErrInvalidTile      = errors.New("Invalid tile index")
	ErrTileLocked       = errors.New("Tile already locked")
	ErrFreeSpace        = errors.New("Cannot lock FREE space")
	ErrPlayerFinished   = errors.New("Game already finished")
	ErrAlreadyFinished  = errors.New("Already finished")
	ErrRateLimited      = errors.New("Too many requests. Please wait a moment.")
	ErrTooManyRequests  = errors.New("Too many requests")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformedRequest = errors.New("malformed request")
)
