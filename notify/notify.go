// notify/notify.go
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/room"
)

const (
	EventRoundResolved = "round_resolved"
	EventGameOver      = "game_over"

	maxReconnects = 10
	reconnectWait = 2 * time.Second
)

// Publisher fans room outcomes out to other services.
type Publisher interface {
	RoundResolved(summary room.RoundSummary)
	GameOver(summary room.GameSummary)
	Close()
}

// Subject builds "<prefix>.<room>.<event>".
func Subject(prefix, code, event string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, code, event)
}

// Nop drops every event. Used when no NATS url is configured.
type Nop struct{}

func (Nop) RoundResolved(room.RoundSummary) {}
func (Nop) GameOver(room.GameSummary)       {}
func (Nop) Close()                          {}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON events with core NATS. Publish only buffers, so
// callers on room paths never wait on the network.
type NATSPublisher struct {
	nc     conn
	prefix string
}

func Connect(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("quizroom"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warnw("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Infow("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Log.Errorw("NATS error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Log.Infof("Publishing game events to NATS at %s", nc.ConnectedUrl())
	return newNATSPublisher(nc, prefix), nil
}

func newNATSPublisher(nc conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) RoundResolved(summary room.RoundSummary) {
	p.publish(summary.RoomCode, EventRoundResolved, summary)
}

func (p *NATSPublisher) GameOver(summary room.GameSummary) {
	p.publish(summary.RoomCode, EventGameOver, summary)
}

func (p *NATSPublisher) publish(code, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorw("Failed to encode event", "event", event, "error", err)
		return
	}
	subject := Subject(p.prefix, code, event)
	if err := p.nc.Publish(subject, data); err != nil {
		logger.Log.Warnw("Failed to publish event", "subject", subject, "error", err)
	}
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		logger.Log.Warnw("NATS drain failed", "error", err)
	}
}
