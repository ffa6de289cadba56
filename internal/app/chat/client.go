/*
This file defines the Client struct, representing an active WebSocket connection.
It manages the client's lifecycle, the message communication loops (ReadPump and
WritePump), and interaction with the Room.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendChannelBuffer = 256
)

// Client represents an active WebSocket connection. A client may be
// unauthenticated: the connection stays open, but it never joins the room and
// every send attempt is answered with an error event.
type Client struct {
	// connID uniquely identifies this connection. Presence is keyed by it, so
	// one user with several tabs open appears once per connection.
	connID string

	// the room the client joins when authenticated.
	room *Room

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// identity resolved at handshake time.
	identity Identity

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// closeOnce guards the send channel so it closes exactly once.
	closeOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(room *Room, wsConn *websocket.Conn, connID string, identity Identity) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Bool("authenticated", identity.Authenticated).
		Logger()

	if identity.Authenticated {
		clientLogger = clientLogger.With().
			Str("user_id", identity.User.ID).
			Str("username", identity.User.Username).
			Logger()
	}

	return &Client{
		connID:   connID,
		room:     room,
		conn:     wsConn,
		identity: identity,
		send:     make(chan []byte, sendChannelBuffer),
		logger:   clientLogger,
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), event parsing, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (Client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates. An unauthenticated client was never room state, so its
// disconnect has no side effects beyond closing the socket.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	if c.identity.Authenticated {
		// The send must not be dropped: a lost unregister leaves a ghost entry
		// in the presence registry and the store. Block until the room takes
		// it, bailing out only when the room itself has stopped.
		select {
		case c.room.unregister <- c:
		case <-c.room.stopChan:
		}
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame handles raw byte frames received from the client.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var event Event
	if err := json.Unmarshal(frameBytes, &event); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch event.Event {
	case EventSendMessage:
		c.handleSendMessage(event.Data)

	default:
		c.logger.Warn().Str("event", event.Event).Msg("Client sent unsupported event")
	}
}

// handleSendMessage forwards a send_message request to the room loop.
// Unauthenticated clients are answered with an error event and nothing else.
func (c *Client) handleSendMessage(data json.RawMessage) {
	if !c.identity.Authenticated {
		c.SendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	var req SendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid send_message payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	c.room.Submit(c, req)
}

// WritePump handles writing frames from the Client.send channel to the
// WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame handles frames pulled from the send channel, writing them to
// the WebSocket. Returns true if the WritePump loop should continue, false if
// it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the
// connection heartbeat. Returns false if the WritePump loop should terminate
// due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// SendEvent marshals an event envelope and queues it for delivery.
func (c *Client) SendEvent(name string, data any) error {
	frame, err := EncodeEvent(name, data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", name).Msg("Error marshaling event for client")
		return err
	}

	return c.queueFrame(frame)
}

// queueFrame attempts a non-blocking push onto the send channel. A full queue
// means the client is not draining its connection; the frame is dropped.
func (c *Client) queueFrame(frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return errs.NewError(errs.ErrUnknown)
	}
}

// SendError sends an error event carrying the user-facing message.
func (c *Client) SendError(customErr *errs.CustomError) {
	if err := c.SendEvent(EventError, customErr.Message); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue error event")
	}
}

// Close shuts the outbound queue down, which makes WritePump send a close frame
// and terminate. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
