package bingo

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultSessionTimeout = time.Hour
	DefaultCountdown      = 2 * time.Minute

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// codeAttempts bounds the search for an unused room code.
	codeAttempts = 64
)

var errNoRoomCode = errors.New("unable to allocate a room code")

// Options tunes a Registry. Zero values fall back to the defaults.
type Options struct {
	SessionTimeout time.Duration
	Countdown      time.Duration

	Now     func() time.Time
	Rand    *rand.Rand
	NewCode func() (string, error)

	Log zerolog.Logger
}

// Registry owns every live room, keyed by code. It is not safe for
// concurrent use; a Hub serializes calls into it.
type Registry struct {
	rooms map[string]*Room

	sessionTimeout time.Duration
	countdown      time.Duration

	now     func() time.Time
	rng     *rand.Rand
	newCode func() (string, error)

	log zerolog.Logger
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		rooms:          make(map[string]*Room),
		sessionTimeout: opts.SessionTimeout,
		countdown:      opts.Countdown,
		now:            opts.Now,
		rng:            opts.Rand,
		newCode:        opts.NewCode,
		log:            opts.Log,
	}

	if r.sessionTimeout <= 0 {
		r.sessionTimeout = DefaultSessionTimeout
	}
	if r.countdown <= 0 {
		r.countdown = DefaultCountdown
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newCode == nil {
		r.newCode = randomCode
	}

	return r
}

// randomCode draws a code from crypto/rand, discarding bytes that would
// bias the modulo.
func randomCode() (string, error) {
	const limit = 256 - 256%len(codeAlphabet)

	out := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength*2)
	for len(out) < roomCodeLength {
		if _, err := crand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == roomCodeLength {
				break
			}
		}
	}

	return string(out), nil
}

func (reg *Registry) allocateCode() (string, error) {
	for range codeAttempts {
		code, err := reg.newCode()
		if err != nil {
			return "", fmt.Errorf("%w: %v", errNoRoomCode, err)
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", errNoRoomCode
}

// Room returns the live room for code, which must already be normalized.
func (reg *Registry) Room(code string) (*Room, bool) {
	room, ok := reg.rooms[code]
	return room, ok
}

// Len is the number of live rooms.
func (reg *Registry) Len() int {
	return len(reg.rooms)
}

func (reg *Registry) lookup(code string) (*Room, error) {
	code, err := NormalizeRoomCode(code)
	if err != nil {
		return nil, err
	}

	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// CreateRoom opens a lobby hosted by conn.
func (reg *Registry) CreateRoom(conn, name string, mode Mode, minGrade Grade) ([]Outbound, error) {
	code, err := reg.allocateCode()
	if err != nil {
		return nil, err
	}

	room := NewRoom(code, mode, minGrade, conn, name, reg.now())
	reg.rooms[code] = room

	reg.log.Info().
		Str("room", code).
		Str("conn", conn).
		Str("mode", string(mode)).
		Str("grade", string(minGrade)).
		Msg("room created")

	return []Outbound{outbound(EventRoomCreated, room.lobbyState(true), conn)}, nil
}

// JoinRoom seats conn in the room for code, or reconnects a player by name
// once the game has started.
func (reg *Registry) JoinRoom(conn, code, name string) ([]Outbound, error) {
	room, err := reg.lookup(code)
	if err != nil {
		return nil, err
	}
	room.touch(reg.now())

	out, err := room.Join(conn, name)
	if err != nil {
		return nil, err
	}

	reg.log.Info().Str("room", room.Code).Str("conn", conn).Str("status", string(room.Status)).Msg("player joined")

	return out, nil
}

func (reg *Registry) StartGame(conn, code string) ([]Outbound, error) {
	room, err := reg.lookup(code)
	if err != nil {
		return nil, err
	}

	now := reg.now()
	room.touch(now)

	out, err := room.Start(conn, reg.rng, now)
	if err != nil {
		return nil, err
	}

	reg.log.Info().Str("room", room.Code).Int("players", room.Len()).Msg("game started")

	return out, nil
}

func (reg *Registry) UpdateMarked(conn, code string, marked []int) error {
	room, err := reg.lookup(code)
	if err != nil {
		return err
	}

	room.touch(reg.now())

	return room.UpdateMarked(conn, marked)
}

func (reg *Registry) VerifyBingo(conn, code string, marked []int) ([]Outbound, error) {
	room, err := reg.lookup(code)
	if err != nil {
		return nil, err
	}

	now := reg.now()
	room.touch(now)

	return room.Verify(conn, marked, now)
}

func (reg *Registry) LockTile(conn, code string, idx int) ([]Outbound, error) {
	room, err := reg.lookup(code)
	if err != nil {
		return nil, err
	}

	now := reg.now()
	room.touch(now)

	return room.LockTile(conn, idx, reg.countdown, now)
}

// Leave removes conn from every room it belongs to. Rooms left empty are
// deleted on the spot.
func (reg *Registry) Leave(conn string) []Outbound {
	var out []Outbound
	for code, room := range reg.rooms {
		events, ok := room.Leave(conn)
		if !ok {
			continue
		}
		out = append(out, events...)

		if room.Len() == 0 {
			delete(reg.rooms, code)
			reg.log.Info().Str("room", code).Msg("room closed")
		}
	}
	return out
}

// Sweep drops empty and idle rooms, then settles lock-out countdowns that
// have run out.
func (reg *Registry) Sweep() []Outbound {
	now := reg.now()

	var out []Outbound
	for code, room := range reg.rooms {
		switch {
		case room.Len() == 0:
			delete(reg.rooms, code)
			reg.log.Info().Str("room", code).Msg("empty room removed")
		case now.Sub(room.LastActivity) > reg.sessionTimeout:
			delete(reg.rooms, code)
			reg.log.Info().Str("room", code).Dur("idle", now.Sub(room.LastActivity)).Msg("idle room expired")
		default:
			if events := room.ExpireCountdown(now); len(events) > 0 {
				reg.log.Info().Str("room", code).Msg("countdown ended")
				out = append(out, events...)
			}
		}
	}
	return out
}

// Handle validates a decoded request, applies it, and converts any failure
// into the error event the client expects for that request.
func (reg *Registry) Handle(conn string, req Request) []Outbound {
	var (
		out []Outbound
		err error
	)

	switch r := req.(type) {
	case CreateRoomRequest:
		var name string
		if name, err = SanitizeName(string(r.Name)); err == nil {
			out, err = reg.CreateRoom(conn, name, ParseMode(string(r.Mode)), ParseGrade(string(r.MinGrade)))
		}
	case JoinRoomRequest:
		var name string
		if name, err = SanitizeName(string(r.Name)); err == nil {
			out, err = reg.JoinRoom(conn, string(r.RoomCode), name)
		}
	case StartGameRequest:
		out, err = reg.StartGame(conn, string(r.RoomCode))
	case UpdateMarkedRequest:
		err = reg.UpdateMarked(conn, string(r.RoomCode), ValidateMarked(r.Marked))
	case VerifyBingoRequest:
		out, err = reg.VerifyBingo(conn, string(r.RoomCode), ValidateMarked(r.Marked))
	case LockTileRequest:
		var idx int
		if idx, err = ValidateTileIndex(r.TileIndex); err == nil {
			out, err = reg.LockTile(conn, string(r.RoomCode), idx)
		}
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		reg.log.Debug().Err(err).Str("conn", conn).Str("event", req.Event()).Msg("request rejected")
		return Reject(conn, req.Event(), err)
	}
	return out
}

var publicErrors = []error{
	ErrInvalidName,
	ErrInvalidRoomCode,
	ErrRoomNotFound,
	ErrNotInRoom,
	ErrAlreadyInRoom,
	ErrGameStarted,
	ErrGameNotStarted,
	ErrLockOutFull,
	ErrLockOutPlayers,
	ErrNotHost,
	ErrNotLockOut,
	ErrLockOutOnly,
	ErrInvalidTile,
	ErrTileLocked,
	ErrFreeSpace,
	ErrPlayerFinished,
	ErrAlreadyFinished,
	ErrRateLimited,
	ErrTooManyRequests,
}

// publicMessage is the text a client may see for err.
func publicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "Something went wrong"
}

// Reject builds the reply to a failed request: verifyBingo answers with a
// negative verifyResult, updateMarked stays silent, and everything else
// gets its own error event.
func Reject(conn, event string, err error) []Outbound {
	msg := publicMessage(err)

	var reply string
	switch event {
	case EventCreateRoom:
		reply = EventCreateRoomError
	case EventJoinRoom:
		reply = EventJoinError
	case EventStartGame:
		reply = EventStartGameError
	case EventLockTile:
		reply = EventLockTileError
	case EventVerifyBingo:
		return []Outbound{outbound(EventVerifyResult, VerifyResult{Valid: false, Message: msg}, conn)}
	default:
		return nil
	}

	return []Outbound{outbound(reply, ErrorMessage{Message: msg}, conn)}
}
