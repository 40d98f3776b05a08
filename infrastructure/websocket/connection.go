package websocket

import (
	"context"
	"edusmarthub/domain"
	"fmt"
	"time"

	ws "github.com/gorilla/websocket"
)

var (
	errMissingUser     = fmt.Errorf("missing user_id")
	errInvalidIdentity = fmt.Errorf("user_id and name must be valid UTF-8")
)

type connection struct {
	id       domain.ConnectionID
	identity domain.Identity
	conn     *ws.Conn
	sink     *Sink
	hub      *Hub
}

// readPump feeds client frames to the engine until the peer goes away or stops answering pings.
// It owns the teardown: the engine forgets the connection first, then the write pump is released.
func (c *connection) readPump() {
	defer c.hub.wg.Done()
	defer c.close()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongWait))
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure, ws.CloseNoStatusReceived) {
				c.hub.log.Warn("WebSocket read error", "connection_id", c.id, "error", err)
			}
			return
		}
		if messageType != ws.TextMessage {
			continue
		}
		if err := c.hub.engine.Handle(c.hub.ctx, c.id, raw); err != nil {
			c.hub.log.Debug("Frame rejected", "connection_id", c.id, "error", err)
		}
	}
}

func (c *connection) close() {
	if !c.hub.remove(c) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.hub.config.WriteWait)
	defer cancel()
	c.hub.engine.Disconnect(ctx, c.id)
	c.sink.Close()
	_ = c.conn.Close()
	c.hub.log.Debug("WebSocket connection closed", "connection_id", c.id, "user_id", c.identity.UserID)
}

// writePump is the only writer of the connection.
func (c *connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.hub.wg.Done()
	}()

	for {
		select {
		case e, ok := <-c.sink.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				c.hub.log.Debug("WebSocket write failed", "connection_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
