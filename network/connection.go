// network/connection.go
package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")

	// ErrMalformedPacket wraps framing errors; the connection stays usable.
	ErrMalformedPacket = errors.New("malformed packet")
)

const (
	writeTimeout   = 10 * time.Second
	sendBufferSize = 256
	maxMessageSize = 4096
)

type Connection interface {
	Send(msgID uint16, data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

// WSConnection frames packets over a gorilla websocket. Writes go through a
// buffered queue drained by a single writer goroutine so that Send never
// blocks on a slow peer.
type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	mutex     sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	conn.SetReadLimit(maxMessageSize)
	go c.writePump()
	return c
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	packet, err := EncodePacket(msgID, data)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- packet:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.extendDeadline()
	packet, err := DecodePacket(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}
	return packet, nil
}

// SetHeartbeat requires a frame or pong at least every 2*interval and pings the peer every interval.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.mutex.Lock()
	c.heartbeat = interval
	c.mutex.Unlock()

	c.conn.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})
	c.extendDeadline()
}

func (c *WSConnection) extendDeadline() {
	c.mutex.Lock()
	interval := c.heartbeat
	c.mutex.Unlock()
	if interval > 0 {
		c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	}
}

func (c *WSConnection) pingInterval() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.heartbeat
}

func (c *WSConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *WSConnection) writePump() {
	ping := time.NewTicker(time.Second)
	defer ping.Stop()
	lastPing := time.Now()

	for {
		select {
		case <-c.done:
			return
		case packet := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
				c.Close()
				return
			}
		case now := <-ping.C:
			interval := c.pingInterval()
			if interval <= 0 || now.Sub(lastPing) < interval {
				continue
			}
			lastPing = now
			if err := c.conn.WriteControl(websocket.PingMessage, nil, now.Add(writeTimeout)); err != nil {
				c.Close()
				return
			}
		}
	}
}
