// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/network"
	"github.com/wfunc/quizroom/session"
)

// Stats receives per-message delivery outcomes.
type Stats interface {
	MessageSent(event string)
	SendFailed(event string)
}

type nopStats struct{}

func (nopStats) MessageSent(string) {}
func (nopStats) SendFailed(string)  {}

// Gateway delivers events to live sessions. It keeps no room state: callers
// name the audience.
type Gateway struct {
	sessions *session.Manager
	stats    Stats
}

func NewGateway(sessions *session.Manager, stats Stats) *Gateway {
	if stats == nil {
		stats = nopStats{}
	}
	return &Gateway{sessions: sessions, stats: stats}
}

func (g *Gateway) ToConnection(identity string, msgID uint16, payload any) {
	data, ok := g.encode(msgID, payload)
	if !ok {
		return
	}
	g.deliver(identity, msgID, data)
}

func (g *Gateway) ToHost(code, hostIdentity string, msgID uint16, payload any) {
	data, ok := g.encode(msgID, payload)
	if !ok {
		return
	}
	if !g.deliver(hostIdentity, msgID, data) {
		logger.Log.Debugw("Host unreachable", "room", code, "event", network.MsgName(msgID))
	}
}

func (g *Gateway) ToRoom(code string, identities []string, msgID uint16, payload any) {
	data, ok := g.encode(msgID, payload)
	if !ok {
		return
	}
	delivered := 0
	for _, id := range identities {
		if g.deliver(id, msgID, data) {
			delivered++
		}
	}
	logger.Log.Debugw("Room broadcast", "room", code, "event", network.MsgName(msgID), "delivered", delivered, "audience", len(identities))
}

func (g *Gateway) encode(msgID uint16, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorw("Failed to encode event", "event", network.MsgName(msgID), "error", err)
		g.stats.SendFailed(network.MsgName(msgID))
		return nil, false
	}
	return data, true
}

func (g *Gateway) deliver(identity string, msgID uint16, data []byte) bool {
	s, ok := g.sessions.Get(identity)
	if !ok {
		return false
	}
	if err := s.Send(msgID, data); err != nil {
		// the read loop notices a dead connection; nothing to retry here
		logger.Log.Warnw("Failed to send", "session", identity, "event", network.MsgName(msgID), "error", err)
		g.stats.SendFailed(network.MsgName(msgID))
		return false
	}
	g.stats.MessageSent(network.MsgName(msgID))
	return true
}
