package bingo

// Server to client event names.
const (
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventCreateRoomError    = "createRoomError"
	EventJoinError          = "joinError"
	EventStartGameError     = "startGameError"
	EventLockTileError      = "lockTileError"
	EventPlayerJoined       = "playerJoined"
	EventPlayerLeft         = "playerLeft"
	EventPlayerRejoined     = "playerRejoined"
	EventHostChanged        = "hostChanged"
	EventGameStarted        = "gameStarted"
	EventGameRejoined       = "gameRejoined"
	EventTileLocked         = "tileLocked"
	EventLockOutWin         = "lockOutWin"
	EventCountdownStarted   = "countdownModeStarted"
	EventCountdownRefreshed = "countdownRefreshed"
	EventCountdownEnded     = "countdownEnded"
	EventLeaderboardUpdate  = "leaderboardUpdate"
	EventVerifyResult       = "verifyResult"
)

const (
	WinTypeBingo     = "bingo"
	WinTypeMostTiles = "most_tiles"
	WinTypeTie       = "tie"
)

// Message is the envelope written to a client.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Outbound is a message addressed to a fixed set of connections. Recipients
// are resolved when the event is produced, so delivery order follows
// processing order.
type Outbound struct {
	To      []string
	Message Message
}

func outbound(event string, data any, to ...string) Outbound {
	return Outbound{To: to, Message: Message{Event: event, Data: data}}
}

// PlayerInfo is the public view of a roster entry.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LobbyState struct {
	RoomCode string       `json:"roomCode"`
	Mode     Mode         `json:"mode"`
	MinGrade Grade        `json:"minGrade"`
	IsHost   bool         `json:"isHost"`
	Players  []PlayerInfo `json:"players"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type RosterUpdate struct {
	Name    string       `json:"name"`
	Players []PlayerInfo `json:"players"`
}

type HostChanged struct {
	IsHost bool `json:"isHost"`
}

type GameStarted struct {
	RoomCode  string   `json:"roomCode"`
	Board     []string `json:"board"`
	Mode      Mode     `json:"mode"`
	MinGrade  Grade    `json:"minGrade"`
	StartTime int64    `json:"startTime"`
}

type GameRejoined struct {
	RoomCode         string             `json:"roomCode"`
	Board            []string           `json:"board"`
	Mode             Mode               `json:"mode"`
	MinGrade         Grade              `json:"minGrade"`
	StartTime        int64              `json:"startTime"`
	Marked           []int              `json:"marked"`
	LockedTiles      map[int]Lock       `json:"lockedTiles"`
	LockCounts       map[string]int     `json:"lockCounts"`
	CountdownMode    bool               `json:"countdownMode"`
	CountdownEndTime *int64             `json:"countdownEndTime"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}

type TileLocked struct {
	TileIndex   int            `json:"tileIndex"`
	PlayerID    string         `json:"playerId"`
	PlayerName  string         `json:"playerName"`
	Timestamp   int64          `json:"timestamp"`
	LockedTiles map[int]Lock   `json:"lockedTiles"`
	LockCounts  map[string]int `json:"lockCounts"`
}

type LockOutWin struct {
	WinnerID    string      `json:"winnerId"`
	WinnerName  string      `json:"winnerName"`
	ElapsedMs   int64       `json:"elapsedMs"`
	LockHistory []LockEntry `json:"lockHistory"`
	WinType     string      `json:"winType"`
}

type Countdown struct {
	EndTime int64 `json:"endTime"`
}

type CountdownEnded struct {
	WinnerID    *string        `json:"winnerId"`
	WinnerName  string         `json:"winnerName"`
	LockCounts  map[string]int `json:"lockCounts"`
	LockHistory []LockEntry    `json:"lockHistory"`
	WinType     string         `json:"winType"`
}

// RankedEntry is a leaderboard row as broadcast to the room.
type RankedEntry struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type LeaderboardUpdate struct {
	Leaderboard []RankedEntry `json:"leaderboard"`
}

type VerifyResult struct {
	Valid     bool   `json:"valid"`
	ElapsedMs int64  `json:"elapsedMs,omitempty"`
	Position  int    `json:"position,omitempty"`
	Message   string `json:"message,omitempty"`
}
