package bingo

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_760_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func fixedCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func newTestRegistry(clock *fakeClock, codes ...string) *Registry {
	return NewRegistry(Options{
		Now:     clock.Now,
		Rand:    rand.New(rand.NewPCG(1, 1)),
		NewCode: fixedCodes(codes...),
		Log:     zerolog.Nop(),
	})
}

func marks(idx ...int) Marks {
	out := make(Marks, 0, len(idx))
	for _, i := range idx {
		out = append(out, IndexOf(i))
	}
	return out
}

func eventNames(out []Outbound) []string {
	names := make([]string, 0, len(out))
	for _, o := range out {
		names = append(names, o.Message.Event)
	}
	return names
}

func findEvent(t *testing.T, out []Outbound, event string) Outbound {
	t.Helper()

	for _, o := range out {
		if o.Message.Event == event {
			return o
		}
	}
	require.Failf(t, "event not emitted", "%s not in %v", event, eventNames(out))
	return Outbound{}
}

func errorText(t *testing.T, out []Outbound, event string) string {
	t.Helper()

	o := findEvent(t, out, event)
	msg, ok := o.Message.Data.(ErrorMessage)
	require.True(t, ok, "payload is %T", o.Message.Data)
	return msg.Message
}

// startLockOut opens a started lock-out room LOCK with players p1 and p2.
func startLockOut(t *testing.T, clock *fakeClock) *Registry {
	t.Helper()

	reg := newTestRegistry(clock, "LOCK")
	reg.Handle("p1", CreateRoomRequest{Name: "P1", Mode: Text(ModeLockOut)})
	reg.Handle("p2", JoinRoomRequest{RoomCode: "LOCK", Name: "P2"})

	out := reg.Handle("p1", StartGameRequest{RoomCode: "LOCK"})
	require.Equal(t, []string{EventGameStarted}, eventNames(out))
	return reg
}

func lock(reg *Registry, conn string, idx int) []Outbound {
	return reg.Handle(conn, LockTileRequest{RoomCode: "LOCK", TileIndex: IndexOf(idx)})
}

func TestNormalGameScenario(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12")

	out := reg.Handle("alice", CreateRoomRequest{Name: "Alice", Mode: "easy"})
	created := findEvent(t, out, EventRoomCreated)
	assert.Equal(t, []string{"alice"}, created.To)
	assert.Equal(t, LobbyState{
		RoomCode: "AB12",
		Mode:     ModeEasy,
		MinGrade: GradeGreen,
		IsHost:   true,
		Players:  []PlayerInfo{{ID: "alice", Name: "Alice"}},
	}, created.Message.Data)

	out = reg.Handle("bob", JoinRoomRequest{RoomCode: "ab12", Name: "Bob"})
	joined := findEvent(t, out, EventRoomJoined)
	assert.Equal(t, []string{"bob"}, joined.To)
	assert.False(t, joined.Message.Data.(LobbyState).IsHost)

	roster := findEvent(t, out, EventPlayerJoined)
	assert.Equal(t, []string{"alice", "bob"}, roster.To)
	assert.Equal(t, []PlayerInfo{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}, roster.Message.Data.(RosterUpdate).Players)

	clock.Advance(time.Second)
	startedAt := clock.Now()

	out = reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"alice", "bob"}, out[0].To)

	started := out[0].Message.Data.(GameStarted)
	assert.Len(t, started.Board, BoardSize)
	assert.Equal(t, FreeSpace, started.Board[CenterIndex])
	assert.Equal(t, startedAt.UnixMilli(), started.StartTime)

	clock.Advance(90 * time.Second)

	out = reg.Handle("alice", VerifyBingoRequest{RoomCode: "AB12", Marked: marks(0, 1, 2, 3, 4)})
	result := findEvent(t, out, EventVerifyResult)
	assert.Equal(t, []string{"alice"}, result.To)
	assert.Equal(t, VerifyResult{Valid: true, ElapsedMs: 90_000, Position: 1}, result.Message.Data)

	board := findEvent(t, out, EventLeaderboardUpdate)
	assert.Equal(t, []string{"alice", "bob"}, board.To)
	assert.Equal(t, LeaderboardUpdate{Leaderboard: []RankedEntry{{Position: 1, Name: "Alice", ElapsedMs: 90_000}}}, board.Message.Data)

	out = reg.Handle("bob", VerifyBingoRequest{RoomCode: "AB12", Marked: marks(0, 1, 2)})
	require.Len(t, out, 1)
	assert.Equal(t, []string{"bob"}, out[0].To)
	assert.Equal(t, VerifyResult{Valid: false}, out[0].Message.Data)

	clock.Advance(30 * time.Second)

	out = reg.Handle("bob", VerifyBingoRequest{RoomCode: "AB12", Marked: marks(4, 9, 14, 19, 24)})
	assert.Equal(t, VerifyResult{Valid: true, ElapsedMs: 120_000, Position: 2}, findEvent(t, out, EventVerifyResult).Message.Data)
	assert.Equal(t, []RankedEntry{
		{Position: 1, Name: "Alice", ElapsedMs: 90_000},
		{Position: 2, Name: "Bob", ElapsedMs: 120_000},
	}, findEvent(t, out, EventLeaderboardUpdate).Message.Data.(LeaderboardUpdate).Leaderboard)

	out = reg.Handle("alice", VerifyBingoRequest{RoomCode: "AB12", Marked: marks(0, 1, 2, 3, 4)})
	assert.Equal(t, VerifyResult{Valid: false, Message: "Already finished"}, findEvent(t, out, EventVerifyResult).Message.Data)
}

func TestUpdateMarked(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12")
	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})

	// Before the game starts the update is dropped without a reply.
	assert.Empty(t, reg.Handle("alice", UpdateMarkedRequest{RoomCode: "AB12", Marked: marks(1)}))
	room, ok := reg.Room("AB12")
	require.True(t, ok)
	p, _ := room.Player("alice")
	assert.Empty(t, p.Marked)

	reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})

	update := UpdateMarkedRequest{RoomCode: "AB12", Marked: marks(3, 7, 7, 30, 12)}
	assert.Empty(t, reg.Handle("alice", update))
	assert.Equal(t, []int{3, 7, 12}, p.Marked)

	assert.Empty(t, reg.Handle("alice", update))
	assert.Equal(t, []int{3, 7, 12}, p.Marked)

	// Non-members are ignored as well.
	assert.Empty(t, reg.Handle("mallory", update))
}

func TestJoinRejections(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12", "LOCK")

	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})

	tests := []struct {
		name string
		conn string
		req  JoinRoomRequest
		want string
	}{
		{"bad code", "bob", JoinRoomRequest{RoomCode: "AB", Name: "Bob"}, "Invalid room code"},
		{"unknown code", "bob", JoinRoomRequest{RoomCode: "ZZ99", Name: "Bob"}, "Room not found"},
		{"blank name", "bob", JoinRoomRequest{RoomCode: "AB12", Name: " <b></b> "}, "Please enter a valid name"},
		{"same connection", "alice", JoinRoomRequest{RoomCode: "AB12", Name: "Alice"}, "Already in this room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := reg.Handle(tt.conn, tt.req)
			require.Len(t, out, 1)
			assert.Equal(t, []string{tt.conn}, out[0].To)
			assert.Equal(t, tt.want, errorText(t, out, EventJoinError))
		})
	}

	reg.Handle("p1", CreateRoomRequest{Name: "P1", Mode: "lock-out-hard"})
	reg.Handle("p2", JoinRoomRequest{RoomCode: "LOCK", Name: "P2"})
	out := reg.Handle("p3", JoinRoomRequest{RoomCode: "LOCK", Name: "P3"})
	assert.Equal(t, "Lock-out mode is limited to 2 players", errorText(t, out, EventJoinError))

	reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})
	out = reg.Handle("carol", JoinRoomRequest{RoomCode: "AB12", Name: "Carol"})
	assert.Equal(t, "Game has already started", errorText(t, out, EventJoinError))
}

func TestCreateRoomRejectsBadName(t *testing.T) {
	reg := newTestRegistry(newClock(), "AB12")

	out := reg.Handle("alice", CreateRoomRequest{Name: "Anonymous"})
	assert.Equal(t, "Please enter a valid name", errorText(t, out, EventCreateRoomError))
	assert.Zero(t, reg.Len())
}

func TestCreateRoomSkipsTakenCodes(t *testing.T) {
	reg := newTestRegistry(newClock(), "AB12", "AB12", "CD34")

	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	out := reg.Handle("bob", CreateRoomRequest{Name: "Bob"})

	assert.Equal(t, "CD34", findEvent(t, out, EventRoomCreated).Message.Data.(LobbyState).RoomCode)
	assert.Equal(t, 2, reg.Len())
}

func TestRandomCode(t *testing.T) {
	for range 100 {
		code, err := randomCode()
		require.NoError(t, err)

		normalized, err := NormalizeRoomCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, normalized)
	}
}

func TestStartGameRejections(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12", "LOCK")

	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	reg.Handle("bob", JoinRoomRequest{RoomCode: "AB12", Name: "Bob"})

	out := reg.Handle("bob", StartGameRequest{RoomCode: "AB12"})
	assert.Equal(t, "Only the host can start the game", errorText(t, out, EventStartGameError))

	out = reg.Handle("mallory", StartGameRequest{RoomCode: "AB12"})
	assert.Equal(t, "Not in room", errorText(t, out, EventStartGameError))

	require.Equal(t, []string{EventGameStarted}, eventNames(reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})))

	out = reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})
	assert.Equal(t, "Game has already started", errorText(t, out, EventStartGameError))

	reg.Handle("p1", CreateRoomRequest{Name: "P1", Mode: "lock-out"})
	out = reg.Handle("p1", StartGameRequest{RoomCode: "LOCK"})
	assert.Equal(t, "Lock-out mode requires exactly 2 players", errorText(t, out, EventStartGameError))
}

func TestLockCounts(t *testing.T) {
	reg := startLockOut(t, newClock())

	lock(reg, "p1", 0)
	out := lock(reg, "p2", 1)

	locked := findEvent(t, out, EventTileLocked)
	assert.Equal(t, []string{"p1", "p2"}, locked.To)
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1}, locked.Message.Data.(TileLocked).LockCounts)

	room, _ := reg.Room("LOCK")
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1}, room.LockCounts())
}

func TestDuplicateLockKeepsFirstClaim(t *testing.T) {
	reg := startLockOut(t, newClock())

	lock(reg, "p1", 6)
	out := lock(reg, "p2", 6)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"p2"}, out[0].To)
	assert.Equal(t, "Tile already locked", errorText(t, out, EventLockTileError))

	room, _ := reg.Room("LOCK")
	assert.Equal(t, "p1", room.LockedTiles[6].PlayerID)
	assert.Len(t, room.LockHistory, 1)
}

func TestLockTileRejections(t *testing.T) {
	reg := startLockOut(t, newClock())

	out := reg.Handle("p1", LockTileRequest{RoomCode: "LOCK", TileIndex: IndexOf(25)})
	assert.Equal(t, "Invalid tile index", errorText(t, out, EventLockTileError))

	out = reg.Handle("p1", LockTileRequest{RoomCode: "LOCK", TileIndex: Index{}})
	assert.Equal(t, "Invalid tile index", errorText(t, out, EventLockTileError))

	out = reg.Handle("p3", LockTileRequest{RoomCode: "LOCK", TileIndex: IndexOf(0)})
	assert.Equal(t, "Not in room", errorText(t, out, EventLockTileError))

	out = reg.Handle("p1", VerifyBingoRequest{RoomCode: "LOCK", Marked: marks(0, 1, 2, 3, 4)})
	assert.Equal(t, VerifyResult{Valid: false, Message: "Not available in lock-out mode"}, findEvent(t, out, EventVerifyResult).Message.Data)

	normal := newTestRegistry(newClock(), "AB12")
	normal.Handle("alice", CreateRoomRequest{Name: "Alice"})
	normal.Handle("alice", StartGameRequest{RoomCode: "AB12"})
	out = normal.Handle("alice", LockTileRequest{RoomCode: "AB12", TileIndex: IndexOf(0)})
	assert.Equal(t, "Not in lock-out mode", errorText(t, out, EventLockTileError))
}

func TestLockOutBingoWin(t *testing.T) {
	clock := newClock()
	reg := startLockOut(t, clock)

	for i := range 4 {
		clock.Advance(time.Second)
		assert.Equal(t, []string{EventTileLocked}, eventNames(lock(reg, "p1", i)))
		assert.Equal(t, []string{EventTileLocked}, eventNames(lock(reg, "p2", 5+i)))
	}

	clock.Advance(time.Second)
	out := lock(reg, "p1", 4)
	require.Equal(t, []string{EventTileLocked, EventLockOutWin}, eventNames(out))

	win := out[1].Message.Data.(LockOutWin)
	assert.Equal(t, "p1", win.WinnerID)
	assert.Equal(t, "P1", win.WinnerName)
	assert.Equal(t, WinTypeBingo, win.WinType)
	assert.Equal(t, int64(5_000), win.ElapsedMs)
	assert.Len(t, win.LockHistory, 9)
	assert.Equal(t, 4, win.LockHistory[8].TileIndex)

	out = lock(reg, "p2", 9)
	assert.Equal(t, "Game already finished", errorText(t, out, EventLockTileError))

	room, _ := reg.Room("LOCK")
	assert.Equal(t, StatusInGame, room.Status)
	assert.False(t, room.CountdownMode)
}

func TestCountdownStartsOnBlockingClaim(t *testing.T) {
	clock := newClock()
	reg := startLockOut(t, clock)

	for i := range blockerA {
		assert.Equal(t, []string{EventTileLocked}, eventNames(lock(reg, "p1", blockerA[i])), "claim %d", blockerA[i])
		if i == len(blockerB)-1 {
			break
		}
		assert.Equal(t, []string{EventTileLocked}, eventNames(lock(reg, "p2", blockerB[i])), "claim %d", blockerB[i])
	}

	clock.Advance(time.Second)
	out := lock(reg, "p2", blockerB[len(blockerB)-1])
	require.Equal(t, []string{EventTileLocked, EventCountdownStarted}, eventNames(out))
	assert.Equal(t, Countdown{EndTime: clock.Now().Add(DefaultCountdown).UnixMilli()}, out[1].Message.Data)

	clock.Advance(10 * time.Second)
	out = lock(reg, "p1", 2)
	require.Equal(t, []string{EventTileLocked, EventCountdownRefreshed}, eventNames(out))
	end := clock.Now().Add(DefaultCountdown)
	assert.Equal(t, Countdown{EndTime: end.UnixMilli()}, out[1].Message.Data)

	clock.Advance(DefaultCountdown - time.Millisecond)
	assert.Empty(t, reg.Sweep())

	clock.Advance(time.Millisecond)
	out = reg.Sweep()
	require.Equal(t, []string{EventCountdownEnded}, eventNames(out))
	assert.Equal(t, []string{"p1", "p2"}, out[0].To)

	ended := out[0].Message.Data.(CountdownEnded)
	require.NotNil(t, ended.WinnerID)
	assert.Equal(t, "p1", *ended.WinnerID)
	assert.Equal(t, "P1", ended.WinnerName)
	assert.Equal(t, WinTypeMostTiles, ended.WinType)
	assert.Equal(t, map[string]int{"p1": 6, "p2": 5}, ended.LockCounts)
	assert.Len(t, ended.LockHistory, 11)

	room, _ := reg.Room("LOCK")
	assert.Equal(t, StatusFinished, room.Status)

	out = lock(reg, "p2", 3)
	assert.Equal(t, "Game has not started yet", errorText(t, out, EventLockTileError))

	// The host may deal a new round once the game has finished.
	assert.Equal(t, []string{EventGameStarted}, eventNames(reg.Handle("p1", StartGameRequest{RoomCode: "LOCK"})))
	assert.Empty(t, room.LockedTiles)
	assert.False(t, room.CountdownMode)
}

func TestCountdownTie(t *testing.T) {
	clock := newClock()
	reg := startLockOut(t, clock)

	for i := range blockerA {
		lock(reg, "p1", blockerA[i])
		lock(reg, "p2", blockerB[i])
	}

	room, _ := reg.Room("LOCK")
	require.True(t, room.CountdownMode)

	clock.Advance(DefaultCountdown)
	out := reg.Sweep()
	require.Len(t, out, 1)

	ended := out[0].Message.Data.(CountdownEnded)
	assert.Nil(t, ended.WinnerID)
	assert.Equal(t, "Tie", ended.WinnerName)
	assert.Equal(t, WinTypeTie, ended.WinType)
	assert.Equal(t, map[string]int{"p1": 5, "p2": 5}, ended.LockCounts)

	for _, p := range room.Players() {
		assert.True(t, p.Finished)
	}
}

func TestLeaveTransfersHostInLobby(t *testing.T) {
	reg := newTestRegistry(newClock(), "AB12")
	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	reg.Handle("bob", JoinRoomRequest{RoomCode: "AB12", Name: "Bob"})
	reg.Handle("carol", JoinRoomRequest{RoomCode: "AB12", Name: "Carol"})

	out := reg.Leave("alice")
	require.Equal(t, []string{EventHostChanged, EventPlayerLeft}, eventNames(out))
	assert.Equal(t, []string{"bob"}, out[0].To)
	assert.Equal(t, HostChanged{IsHost: true}, out[0].Message.Data)
	assert.Equal(t, []string{"bob", "carol"}, out[1].To)
	assert.Equal(t, "Alice", out[1].Message.Data.(RosterUpdate).Name)

	room, _ := reg.Room("AB12")
	assert.Equal(t, "bob", room.HostID)

	assert.Empty(t, reg.Leave("alice"))
}

func TestLeaveKeepsHostInGame(t *testing.T) {
	reg := newTestRegistry(newClock(), "AB12")
	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	reg.Handle("bob", JoinRoomRequest{RoomCode: "AB12", Name: "Bob"})
	reg.Handle("alice", StartGameRequest{RoomCode: "AB12"})

	out := reg.Leave("alice")
	assert.Equal(t, []string{EventPlayerLeft}, eventNames(out))

	room, _ := reg.Room("AB12")
	assert.Equal(t, "alice", room.HostID)
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	reg := newTestRegistry(newClock(), "AB12")
	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})

	assert.Empty(t, reg.Leave("alice"))
	assert.Zero(t, reg.Len())

	out := reg.Handle("bob", JoinRoomRequest{RoomCode: "AB12", Name: "Bob"})
	assert.Equal(t, "Room not found", errorText(t, out, EventJoinError))
}

func TestSweepExpiresIdleRooms(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12", "CD34")

	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	clock.Advance(30 * time.Minute)
	reg.Handle("bob", CreateRoomRequest{Name: "Bob"})

	clock.Advance(30 * time.Minute)
	reg.Sweep()
	assert.Equal(t, 2, reg.Len())

	clock.Advance(time.Millisecond)
	reg.Sweep()
	_, ok := reg.Room("AB12")
	assert.False(t, ok)
	_, ok = reg.Room("CD34")
	assert.True(t, ok)
}

func TestRejectedActionsKeepRoomAlive(t *testing.T) {
	clock := newClock()
	reg := newTestRegistry(clock, "AB12")

	reg.Handle("alice", CreateRoomRequest{Name: "Alice"})
	reg.Handle("bob", JoinRoomRequest{RoomCode: "AB12", Name: "Bob"})

	clock.Advance(50 * time.Minute)
	out := reg.Handle("bob", StartGameRequest{RoomCode: "AB12"})
	assert.Equal(t, "Only the host can start the game", errorText(t, out, EventStartGameError))

	room, _ := reg.Room("AB12")
	assert.Equal(t, clock.Now(), room.LastActivity)

	clock.Advance(50 * time.Minute)
	reg.Sweep()
	assert.Equal(t, 1, reg.Len())
}

func TestRejoinMigratesSeat(t *testing.T) {
	clock := newClock()
	reg := startLockOut(t, clock)

	lock(reg, "p1", 0)
	lock(reg, "p2", 1)

	out := reg.Handle("p2-new", JoinRoomRequest{RoomCode: "lock", Name: "P2"})
	require.Equal(t, []string{EventGameRejoined, EventPlayerRejoined}, eventNames(out))
	assert.Equal(t, []string{"p2-new"}, out[0].To)
	assert.Equal(t, []string{"p1", "p2-new"}, out[1].To)

	snap := out[0].Message.Data.(GameRejoined)
	assert.Equal(t, "LOCK", snap.RoomCode)
	assert.Equal(t, []int{1}, snap.Marked)
	assert.Equal(t, "p2-new", snap.LockedTiles[1].PlayerID)
	assert.Equal(t, map[string]int{"p1": 1, "p2-new": 1}, snap.LockCounts)
	assert.Nil(t, snap.CountdownEndTime)

	// The old connection no longer holds a seat.
	assert.Empty(t, reg.Leave("p2"))
	assert.Equal(t, "Tile already locked", errorText(t, lock(reg, "p2-new", 1), EventLockTileError))
	assert.Equal(t, []string{EventTileLocked}, eventNames(lock(reg, "p2-new", 2)))

	room, _ := reg.Room("LOCK")
	assert.Equal(t, "p2-new", room.LockHistory[1].PlayerID)
	assert.Equal(t, "p1", room.HostID)

	// Host migrates too.
	reg.Handle("p1-new", JoinRoomRequest{RoomCode: "LOCK", Name: "P1"})
	assert.Equal(t, "p1-new", room.HostID)
	assert.Equal(t, []string{"p1-new", "p2-new"}, []string{room.Players()[0].ID, room.Players()[1].ID})
}

func TestRejoinCannotTakeAnotherSeat(t *testing.T) {
	reg := startLockOut(t, newClock())

	out := reg.Handle("p1", JoinRoomRequest{RoomCode: "LOCK", Name: "P2"})
	assert.Equal(t, "Already in this room", errorText(t, out, EventJoinError))
	assert.Equal(t, []string{"p1"}, out[0].To)

	room, _ := reg.Room("LOCK")
	require.Equal(t, 2, room.Len())

	players := room.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "p1", players[0].ID)
	assert.Equal(t, "P1", players[0].Name)
	assert.Equal(t, "p2", players[1].ID)
	assert.Equal(t, "P2", players[1].Name)

	// Rejoining under one's own name on the same connection is harmless.
	out = reg.Handle("p2", JoinRoomRequest{RoomCode: "LOCK", Name: "P2"})
	assert.Equal(t, []string{EventGameRejoined, EventPlayerRejoined}, eventNames(out))
	assert.Equal(t, 2, room.Len())
}
