package room

import (
	"number-royale/internal/game"
	"number-royale/internal/protocol"
)

// gateway fans protocol frames out to every connection seated in a room.
// Membership updates get the seat-ordered roster injected so all recipients
// see identical lobby data. Unwritable connections are skipped by their
// senders and reaped by the connection dispatcher.
type gateway struct {
	reg *game.Registry
}

func (g gateway) send(frame []byte) {
	g.reg.Broadcast(frame)
}

func (g gateway) playerJoined() {
	g.send(protocol.Marshal(protocol.PlayerJoined{
		Type:          protocol.TypePlayerJoined,
		Count:         g.reg.Len(),
		Players:       g.reg.Names(),
		PlayerNumbers: g.reg.Snapshot(),
	}))
}

func (g gateway) playerLeft() {
	g.send(protocol.Marshal(protocol.PlayerLeft{
		Type:          protocol.TypePlayerLeft,
		Count:         g.reg.Len(),
		Players:       g.reg.ActiveNames(),
		PlayerNumbers: g.reg.Snapshot(),
	}))
}
