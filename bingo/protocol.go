package bingo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Client to server event names.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventStartGame    = "startGame"
	EventUpdateMarked = "updateMarked"
	EventVerifyBingo  = "verifyBingo"
	EventLockTile     = "lockTile"
)

// Request is one decoded client intent.
type Request interface {
	Event() string
}

type CreateRoomRequest struct {
	Name     Text `json:"name"`
	Mode     Text `json:"mode"`
	MinGrade Text `json:"minGrade"`
}

type JoinRoomRequest struct {
	RoomCode Text `json:"roomCode"`
	Name     Text `json:"name"`
}

type StartGameRequest struct {
	RoomCode Text `json:"roomCode"`
}

type UpdateMarkedRequest struct {
	RoomCode Text  `json:"roomCode"`
	Marked   Marks `json:"marked"`
}

type VerifyBingoRequest struct {
	RoomCode Text  `json:"roomCode"`
	Marked   Marks `json:"marked"`
}

type LockTileRequest struct {
	RoomCode  Text  `json:"roomCode"`
	TileIndex Index `json:"tileIndex"`
}

func (CreateRoomRequest) Event() string   { return EventCreateRoom }
func (JoinRoomRequest) Event() string     { return EventJoinRoom }
func (StartGameRequest) Event() string    { return EventStartGame }
func (UpdateMarkedRequest) Event() string { return EventUpdateMarked }
func (VerifyBingoRequest) Event() string  { return EventVerifyBingo }
func (LockTileRequest) Event() string     { return EventLockTile }

// Text is a client-supplied string field. Any JSON value other than a
// string decodes as empty, which validation then rejects with the usual
// error event.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// Index is a board index as sent by a client, which may arrive as a JSON
// number or a numeric string. Anything else decodes to an invalid Index
// rather than failing the whole request.
type Index struct {
	N     int
	Valid bool
}

// IndexOf is shorthand for a valid Index.
func IndexOf(n int) Index {
	return Index{N: n, Valid: true}
}

func (i *Index) UnmarshalJSON(data []byte) error {
	*i = Index{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	*i = Index{N: int(math.Trunc(f)), Valid: true}
	return nil
}

func (i Index) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.N)), nil
}

// Marks is a submitted list of marked indices. A value that isn't a JSON
// array decodes as an empty list.
type Marks []Index

func (m *Marks) UnmarshalJSON(data []byte) error {
	var items []Index
	if err := json.Unmarshal(data, &items); err != nil {
		*m = nil
		return nil
	}
	*m = items
	return nil
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeRequest parses a client frame of the form {"event": ..., "data": ...}.
func DecodeRequest(frame []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	var req Request
	switch env.Event {
	case EventCreateRoom:
		req = &CreateRoomRequest{}
	case EventJoinRoom:
		req = &JoinRoomRequest{}
	case EventStartGame:
		req = &StartGameRequest{}
	case EventUpdateMarked:
		req = &UpdateMarkedRequest{}
	case EventVerifyBingo:
		req = &VerifyBingoRequest{}
	case EventLockTile:
		req = &LockTileRequest{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRequest, env.Event, err)
		}
	}

	return deref(req), nil
}

func deref(req Request) Request {
	switch r := req.(type) {
	case *CreateRoomRequest:
		return *r
	case *JoinRoomRequest:
		return *r
	case *StartGameRequest:
		return *r
	case *UpdateMarkedRequest:
		return *r
	case *VerifyBingoRequest:
		return *r
	case *LockTileRequest:
		return *r
	}
	return req
}
