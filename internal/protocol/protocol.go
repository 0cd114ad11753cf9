// Package protocol defines the JSON frames exchanged over the websocket.
// Every frame is a flat object carrying a "type" discriminator.
package protocol

import "encoding/json"

// Client -> server frame types.
const (
	TypeJoin   = "join"
	TypeNumber = "number"
)

// Server -> client frame types.
const (
	TypePlayerInfo   = "playerInfo"
	TypeError        = "error"
	TypePlayerJoined = "playerJoined"
	TypePlayerLeft   = "playerLeft"
	TypeGameStart    = "gameStart"
	TypeRoundStart   = "roundStart"
	TypeRoundResult  = "roundResult"
	TypeGameOver     = "gameOver"
)

// NoWinner is broadcast as the gameOver winner when no player survives.
const NoWinner = "No one"

// Sender is the outbound half of a client connection. Implementations must
// never block; frames to a dead or slow connection are dropped and the
// connection reaped by its own dispatcher.
type Sender interface {
	Send(frame []byte)
}

// Envelope is used to peek at the type of an inbound frame before decoding
// the full payload.
type Envelope struct {
	Type string `json:"type"`
}

type Join struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
	RoomID     string `json:"roomId"`
}

type Number struct {
	Type   string `json:"type"`
	Number int    `json:"number"`
}

type PlayerInfo struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SeatInfo pairs a display name with its seat number for lobby rosters.
type SeatInfo struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

type PlayerJoined struct {
	Type          string     `json:"type"`
	Count         int        `json:"count"`
	Players       []string   `json:"players"`
	PlayerNumbers []SeatInfo `json:"playerNumbers"`
}

type PlayerLeft struct {
	Type          string     `json:"type"`
	Count         int        `json:"count"`
	Players       []string   `json:"players"`
	PlayerNumbers []SeatInfo `json:"playerNumbers"`
}

type GameStart struct {
	Type string `json:"type"`
}

type RoundStart struct {
	Type string `json:"type"`
}

// PlayerSummary is the per-player scoreboard row attached to round results.
type PlayerSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Eliminated bool   `json:"eliminated"`
}

type RoundResult struct {
	Type            string          `json:"type"`
	Average         float64         `json:"average"`
	Target          float64         `json:"target"`
	Winner          *string         `json:"winner"`
	Numbers         map[string]int  `json:"numbers"`
	NoChoicePlayers []string        `json:"noChoicePlayers"`
	Players         []PlayerSummary `json:"players"`
}

type GameOver struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

// Marshal encodes a frame, panicking on failure. Frame types contain only
// JSON-safe fields, so a marshal error is a programming bug.
func Marshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic("protocol: marshal frame: " + err.Error())
	}
	return b
}

func NewError(message string) []byte {
	return Marshal(Error{Type: TypeError, Message: message})
}

func NewPlayerInfo(playerID string, seat int) []byte {
	return Marshal(PlayerInfo{Type: TypePlayerInfo, PlayerID: playerID, PlayerNumber: seat})
}

func NewGameStart() []byte {
	return Marshal(GameStart{Type: TypeGameStart})
}

func NewRoundStart() []byte {
	return Marshal(RoundStart{Type: TypeRoundStart})
}

func NewGameOver(winner string) []byte {
	return Marshal(GameOver{Type: TypeGameOver, Winner: winner})
}
