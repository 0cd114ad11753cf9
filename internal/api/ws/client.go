package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"number-royale/internal/room"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 256
)

// client is one websocket connection. The read loop lives in the hub; the
// write pump drains the send queue so broadcasts never block on a slow
// socket. The send channel is never closed: Send drops frames once the pump
// is gone and the channel fills.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// Set by the read loop after a successful join.
	room     *room.Room
	roomKey  string
	playerID string
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Send queues a frame without blocking. A full queue means the consumer is
// slow or dead; the frame is dropped and the read loop will reap the
// connection when it errors out.
func (c *client) Send(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Warn().Str("conn", c.id).Msg("send queue full, dropping frame")
	}
}

func (c *client) writePump() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Str("conn", c.id).Err(err).Msg("write failed")
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	close(c.done)
	_ = c.conn.Close()
}
