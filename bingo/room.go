package bingo

import (
	"maps"
	"math/rand/v2"
	"slices"
	"time"
)

// Status is the lifecycle stage of a room.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusInGame   Status = "in-game"
	StatusFinished Status = "finished"
)

// lockOutPlayers is both the cap and the requirement for lock-out rooms.
const lockOutPlayers = 2

// Player is one connection's seat in a room.
type Player struct {
	ID         string
	Name       string
	Marked     []int
	Finished   bool
	FinishTime time.Time
	ElapsedMs  int64
}

func newPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Marked: []int{}}
}

func (p *Player) reset() {
	p.Marked = []int{}
	p.Finished = false
	p.FinishTime = time.Time{}
	p.ElapsedMs = 0
}

func (p *Player) mark(idx int) {
	if !slices.Contains(p.Marked, idx) {
		p.Marked = append(p.Marked, idx)
	}
}

// Lock records who claimed a lock-out tile. A tile is locked at most once.
type Lock struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Timestamp  int64  `json:"timestamp"`
}

// LockEntry is one claim in the lock-out recap, in claim order.
type LockEntry struct {
	TileIndex  int    `json:"tileIndex"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Timestamp  int64  `json:"timestamp"`
	Challenge  string `json:"challenge"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// LeaderboardEntry is a normal-mode finish.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishTime int64  `json:"finishTime"`

	playerID string
}

// Room is a single game session. It is not safe for concurrent use; the
// Registry that owns it serializes access.
type Room struct {
	Code      string
	Mode      Mode
	MinGrade  Grade
	Status    Status
	HostID    string
	Board     []string
	StartTime time.Time

	Leaderboard []LeaderboardEntry

	LockedTiles   map[int]Lock
	LockHistory   []LockEntry
	CountdownMode bool
	CountdownEnd  time.Time

	CreatedAt    time.Time
	LastActivity time.Time

	players map[string]*Player
	order   []string
}

// NewRoom opens a lobby with host as its only player.
func NewRoom(code string, mode Mode, minGrade Grade, hostID, hostName string, now time.Time) *Room {
	r := &Room{
		Code:         code,
		Mode:         mode,
		MinGrade:     minGrade,
		Status:       StatusLobby,
		HostID:       hostID,
		Leaderboard:  []LeaderboardEntry{},
		LockedTiles:  map[int]Lock{},
		LockHistory:  []LockEntry{},
		CreatedAt:    now,
		LastActivity: now,
		players:      make(map[string]*Player),
	}
	r.add(newPlayer(hostID, hostName))
	return r
}

func (r *Room) add(p *Player) {
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *Room) touch(now time.Time) {
	r.LastActivity = now
}

// Player returns the member connected as id.
func (r *Room) Player(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Players lists members in join order.
func (r *Room) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// Len is the number of members.
func (r *Room) Len() int {
	return len(r.order)
}

func (r *Room) member(id string) (*Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotInRoom
	}
	return p, nil
}

func (r *Room) playerByName(name string) *Player {
	for _, id := range r.order {
		if p := r.players[id]; p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) playerList() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, PlayerInfo{ID: id, Name: r.players[id].Name})
	}
	return out
}

func (r *Room) broadcast(event string, data any) Outbound {
	return outbound(event, data, slices.Clone(r.order)...)
}

func (r *Room) lobbyState(isHost bool) LobbyState {
	return LobbyState{
		RoomCode: r.Code,
		Mode:     r.Mode,
		MinGrade: r.MinGrade,
		IsHost:   isHost,
		Players:  r.playerList(),
	}
}

// LockCounts tallies locked tiles per current member.
func (r *Room) LockCounts() map[string]int {
	counts := make(map[string]int, len(r.order))
	for _, id := range r.order {
		counts[id] = 0
	}
	for _, l := range r.LockedTiles {
		if _, ok := counts[l.PlayerID]; ok {
			counts[l.PlayerID]++
		}
	}
	return counts
}

// opponents returns the first two members in join order, blank if absent.
func (r *Room) opponents() (string, string) {
	var first, second string
	if len(r.order) > 0 {
		first = r.order[0]
	}
	if len(r.order) > 1 {
		second = r.order[1]
	}
	return first, second
}

func (r *Room) elapsed(now time.Time) int64 {
	return now.Sub(r.StartTime).Milliseconds()
}

// Join seats conn in a lobby. Once a game is running only a player whose
// name is already seated may come back, and they take over that seat.
func (r *Room) Join(conn, name string) ([]Outbound, error) {
	if r.Status != StatusLobby {
		existing := r.playerByName(name)
		if existing == nil {
			return nil, ErrGameStarted
		}
		if _, seated := r.players[conn]; seated && existing.ID != conn {
			return nil, ErrAlreadyInRoom
		}
		r.migrate(existing, conn)

		return []Outbound{
			outbound(EventGameRejoined, r.rejoinSnapshot(existing), conn),
			r.broadcast(EventPlayerRejoined, RosterUpdate{Name: name, Players: r.playerList()}),
		}, nil
	}

	if r.Mode.LockOut() && len(r.order) >= lockOutPlayers {
		return nil, ErrLockOutFull
	}
	if _, ok := r.players[conn]; ok {
		return nil, ErrAlreadyInRoom
	}

	r.add(newPlayer(conn, name))

	return []Outbound{
		outbound(EventRoomJoined, r.lobbyState(false), conn),
		r.broadcast(EventPlayerJoined, RosterUpdate{Name: name, Players: r.playerList()}),
	}, nil
}

// migrate moves p onto a new connection id, keeping its seat, progress and
// every record that refers to it.
func (r *Room) migrate(p *Player, conn string) {
	old := p.ID
	if old == conn {
		return
	}

	delete(r.players, old)
	p.ID = conn
	r.players[conn] = p
	if i := slices.Index(r.order, old); i >= 0 {
		r.order[i] = conn
	}

	if r.HostID == old {
		r.HostID = conn
	}
	for idx, l := range r.LockedTiles {
		if l.PlayerID == old {
			l.PlayerID = conn
			r.LockedTiles[idx] = l
		}
	}
	for i := range r.LockHistory {
		if r.LockHistory[i].PlayerID == old {
			r.LockHistory[i].PlayerID = conn
		}
	}
	for i := range r.Leaderboard {
		if r.Leaderboard[i].playerID == old {
			r.Leaderboard[i].playerID = conn
		}
	}
}

func (r *Room) rejoinSnapshot(p *Player) GameRejoined {
	snap := GameRejoined{
		RoomCode:    r.Code,
		Board:       slices.Clone(r.Board),
		Mode:        r.Mode,
		MinGrade:    r.MinGrade,
		StartTime:   r.StartTime.UnixMilli(),
		Marked:      slices.Clone(p.Marked),
		Leaderboard: slices.Clone(r.Leaderboard),
	}

	if r.Mode.LockOut() {
		snap.LockedTiles = maps.Clone(r.LockedTiles)
		snap.LockCounts = r.LockCounts()
		snap.CountdownMode = r.CountdownMode
		if !r.CountdownEnd.IsZero() {
			end := r.CountdownEnd.UnixMilli()
			snap.CountdownEndTime = &end
		}
	}

	return snap
}

// Leave drops conn from the room and reports whether it was a member. A
// lobby whose host leaves passes hosting to the next player in join order.
func (r *Room) Leave(conn string) ([]Outbound, bool) {
	p, ok := r.players[conn]
	if !ok {
		return nil, false
	}

	delete(r.players, conn)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == conn })

	var out []Outbound
	if r.HostID == conn && r.Status == StatusLobby && len(r.order) > 0 {
		r.HostID = r.order[0]
		out = append(out, outbound(EventHostChanged, HostChanged{IsHost: true}, r.HostID))
	}

	if len(r.order) > 0 {
		out = append(out, r.broadcast(EventPlayerLeft, RosterUpdate{Name: p.Name, Players: r.playerList()}))
	}

	return out, true
}

// Start deals a fresh board and moves the room in-game. Every member gets
// the same gameStarted message so nobody sees the board first.
func (r *Room) Start(conn string, rng *rand.Rand, now time.Time) ([]Outbound, error) {
	if _, err := r.member(conn); err != nil {
		return nil, err
	}
	if r.HostID != conn {
		return nil, ErrNotHost
	}
	if r.Status == StatusInGame {
		return nil, ErrGameStarted
	}
	if r.Mode.LockOut() && len(r.order) != lockOutPlayers {
		return nil, ErrLockOutPlayers
	}

	r.Board = GenerateBoard(r.Mode, r.MinGrade, rng)
	r.StartTime = now
	r.Status = StatusInGame

	for _, p := range r.players {
		p.reset()
	}
	r.Leaderboard = []LeaderboardEntry{}

	if r.Mode.LockOut() {
		r.LockedTiles = map[int]Lock{}
		r.LockHistory = []LockEntry{}
		r.CountdownMode = false
		r.CountdownEnd = time.Time{}
	}

	return []Outbound{
		r.broadcast(EventGameStarted, GameStarted{
			RoomCode:  r.Code,
			Board:     slices.Clone(r.Board),
			Mode:      r.Mode,
			MinGrade:  r.MinGrade,
			StartTime: r.StartTime.UnixMilli(),
		}),
	}, nil
}

// UpdateMarked replaces conn's normal-mode marks with a client snapshot.
func (r *Room) UpdateMarked(conn string, marked []int) error {
	p, err := r.member(conn)
	if err != nil {
		return err
	}
	if r.Status != StatusInGame {
		return ErrGameNotStarted
	}
	if r.Mode.LockOut() {
		return ErrLockOutOnly
	}

	p.Marked = slices.Clone(marked)
	return nil
}

// Verify checks a normal-mode bingo claim and, on success, records the
// finish and republishes the ranked leaderboard.
func (r *Room) Verify(conn string, marked []int, now time.Time) ([]Outbound, error) {
	p, err := r.member(conn)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusInGame {
		return nil, ErrGameNotStarted
	}
	if r.Mode.LockOut() {
		return nil, ErrLockOutOnly
	}
	if p.Finished {
		return nil, ErrAlreadyFinished
	}

	p.Marked = slices.Clone(marked)

	if !HasBingo(marked) {
		return []Outbound{outbound(EventVerifyResult, VerifyResult{Valid: false}, conn)}, nil
	}

	p.Finished = true
	p.FinishTime = now
	p.ElapsedMs = r.elapsed(now)

	r.Leaderboard = append(r.Leaderboard, LeaderboardEntry{
		Name:       p.Name,
		ElapsedMs:  p.ElapsedMs,
		FinishTime: now.UnixMilli(),
		playerID:   p.ID,
	})
	slices.SortStableFunc(r.Leaderboard, func(a, b LeaderboardEntry) int {
		switch {
		case a.ElapsedMs < b.ElapsedMs:
			return -1
		case a.ElapsedMs > b.ElapsedMs:
			return 1
		}
		return 0
	})

	position := 0
	ranked := make([]RankedEntry, 0, len(r.Leaderboard))
	for i, e := range r.Leaderboard {
		if e.playerID == p.ID {
			position = i + 1
		}
		ranked = append(ranked, RankedEntry{Position: i + 1, Name: e.Name, ElapsedMs: e.ElapsedMs})
	}

	return []Outbound{
		outbound(EventVerifyResult, VerifyResult{Valid: true, ElapsedMs: p.ElapsedMs, Position: position}, conn),
		r.broadcast(EventLeaderboardUpdate, LeaderboardUpdate{Leaderboard: ranked}),
	}, nil
}

// LockTile claims idx for conn in a lock-out game. The claim is announced
// first; a completed line then ends the game, and otherwise a board where
// neither player can finish a line starts or refreshes the countdown.
func (r *Room) LockTile(conn string, idx int, countdown time.Duration, now time.Time) ([]Outbound, error) {
	p, err := r.member(conn)
	if err != nil {
		return nil, err
	}
	if !r.Mode.LockOut() {
		return nil, ErrNotLockOut
	}
	if r.Status != StatusInGame {
		return nil, ErrGameNotStarted
	}
	if p.Finished {
		return nil, ErrPlayerFinished
	}
	if idx < 0 || idx >= len(r.Board) {
		return nil, ErrInvalidTile
	}
	if _, locked := r.LockedTiles[idx]; locked {
		return nil, ErrTileLocked
	}
	if r.Board[idx] == FreeSpace {
		return nil, ErrFreeSpace
	}

	ts := now.UnixMilli()
	r.LockedTiles[idx] = Lock{PlayerID: p.ID, PlayerName: p.Name, Timestamp: ts}
	r.LockHistory = append(r.LockHistory, LockEntry{
		TileIndex:  idx,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Timestamp:  ts,
		Challenge:  r.Board[idx],
		ElapsedMs:  r.elapsed(now),
	})
	p.mark(idx)

	out := []Outbound{
		r.broadcast(EventTileLocked, TileLocked{
			TileIndex:   idx,
			PlayerID:    p.ID,
			PlayerName:  p.Name,
			Timestamp:   ts,
			LockedTiles: maps.Clone(r.LockedTiles),
			LockCounts:  r.LockCounts(),
		}),
	}

	if HasBingo(p.Marked) {
		p.FinishTime = now
		p.ElapsedMs = r.elapsed(now)
		for _, other := range r.players {
			other.Finished = true
		}
		r.CountdownMode = false
		r.CountdownEnd = time.Time{}

		return append(out, r.broadcast(EventLockOutWin, LockOutWin{
			WinnerID:    p.ID,
			WinnerName:  p.Name,
			ElapsedMs:   p.ElapsedMs,
			LockHistory: slices.Clone(r.LockHistory),
			WinType:     WinTypeBingo,
		})), nil
	}

	first, second := r.opponents()
	if !BingoPossible(r.LockedTiles, first, second) {
		event := EventCountdownRefreshed
		if !r.CountdownMode {
			event = EventCountdownStarted
			r.CountdownMode = true
		}
		r.CountdownEnd = now.Add(countdown)
		out = append(out, r.broadcast(event, Countdown{EndTime: r.CountdownEnd.UnixMilli()}))
	}

	return out, nil
}

// CountdownExpired reports whether a running countdown has reached its end.
func (r *Room) CountdownExpired(now time.Time) bool {
	return r.Mode.LockOut() && r.CountdownMode && !r.CountdownEnd.IsZero() && !now.Before(r.CountdownEnd)
}

// ExpireCountdown settles a lock-out game whose countdown has run out: the
// player holding more tiles wins, and equal counts are a tie.
func (r *Room) ExpireCountdown(now time.Time) []Outbound {
	if !r.CountdownExpired(now) {
		return nil
	}

	r.CountdownMode = false
	r.Status = StatusFinished

	counts := r.LockCounts()
	first, second := r.opponents()

	result := CountdownEnded{
		LockCounts:  counts,
		LockHistory: slices.Clone(r.LockHistory),
	}

	switch c1, c2 := counts[first], counts[second]; {
	case c1 > c2:
		result.WinnerID = &first
		result.WinnerName = r.players[first].Name
		result.WinType = WinTypeMostTiles
	case c2 > c1:
		result.WinnerID = &second
		result.WinnerName = r.players[second].Name
		result.WinType = WinTypeMostTiles
	default:
		result.WinnerName = "Tie"
		result.WinType = WinTypeTie
	}

	for _, p := range r.players {
		p.Finished = true
	}

	return []Outbound{r.broadcast(EventCountdownEnded, result)}
}
