// Package ws accepts websocket connections and routes their frames into the
// room directory.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"number-royale/internal/game"
	"number-royale/internal/protocol"
	"number-royale/internal/room"
)

type Hub struct {
	rooms    *room.Manager
	upgrader websocket.Upgrader
}

func NewHub(rooms *room.Manager) *Hub {
	return &Hub{
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // same-origin page, assets served by us
			},
		},
	}
}

// HandleWS upgrades the connection and runs its read loop. Each connection
// gets an opaque id; the player identity is created on join.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := newClient(conn)
	log.Debug().Str("conn", cl.id).Msg("connection established")

	go cl.writePump()
	h.readLoop(cl)

	if cl.playerID != "" {
		h.rooms.Disconnect(cl.roomKey, cl.playerID)
	}
	cl.close()
	log.Debug().Str("conn", cl.id).Msg("connection closed")
}

func (h *Hub) readLoop(cl *client) {
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frame: drop it, keep the connection.
			log.Debug().Str("conn", cl.id).Err(err).Msg("dropping malformed frame")
			continue
		}

		switch env.Type {
		case protocol.TypeJoin:
			h.handleJoin(cl, data)
		case protocol.TypeNumber:
			h.handleNumber(cl, data)
		default:
			log.Debug().Str("conn", cl.id).Str("type", env.Type).Msg("unknown frame type")
		}
	}
}

func (h *Hub) handleJoin(cl *client, data []byte) {
	if cl.playerID != "" {
		return // already seated
	}
	var msg protocol.Join
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Str("conn", cl.id).Err(err).Msg("dropping malformed join")
		return
	}

	r, p, err := h.rooms.Join(msg.RoomID, msg.PlayerName, cl)
	if err != nil {
		cl.Send(protocol.NewError(admissionMessage(err)))
		return
	}
	cl.room = r
	cl.roomKey = msg.RoomID
	cl.playerID = p.ID
}

func (h *Hub) handleNumber(cl *client, data []byte) {
	if cl.playerID == "" {
		return
	}
	var msg protocol.Number
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Str("conn", cl.id).Err(err).Msg("dropping malformed number")
		return
	}
	cl.room.HandleNumber(cl.playerID, msg.Number)
}

func admissionMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomFull):
		return "Room is full. Please choose a different room ID."
	case errors.Is(err, game.ErrRoomNotWaiting):
		return "This room is currently in a game. Please choose a different room ID."
	default:
		return "Unable to join room."
	}
}
