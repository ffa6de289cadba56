/*
This file defines the Room struct, the central hub of the single global chat
session. One goroutine owns all room state: the client set, the presence
registry, and the online flags in the store. Every join, leave, and message
flows through that goroutine, so broadcast delivery order is the order events
were processed in.
*/
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lanshare/internal/app/store"
	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
)

// RoomName identifies the single global chat room.
const RoomName = "global-chat"

const (
	inboundChannelBuffer = 1024

	// storeOpTimeout bounds the store calls made from the run loop.
	storeOpTimeout = 5 * time.Second
)

// inboundMessage pairs a send_message request with its originating client.
type inboundMessage struct {
	client *Client
	req    SendRequest
}

// userEventPayload is the data of userJoined and userLeft events.
type userEventPayload struct {
	User UserRef `json:"user"`
}

// Room is the hub for the global chat session. Messages are transient: the
// room broadcasts and forgets, so there is no history to replay to late
// joiners.
type Room struct {
	// users is the persistence backend holding the online flags.
	users store.Store

	// a map of currently joined clients, keyed by connection id.
	// Owned exclusively by the Run goroutine.
	clients map[string]*Client

	// presence tracks joined users in arrival order.
	// Owned exclusively by the Run goroutine.
	presence *presenceRegistry

	// a channel for authenticated clients requesting to join the room.
	register chan *Client

	// a channel for clients leaving the room.
	unregister chan *Client

	// a buffered channel for incoming chat messages awaiting broadcast.
	inbound chan inboundMessage

	// used to signal the Room to stop its Run loop.
	stopChan chan struct{}

	// structured logger with room context.
	logger zerolog.Logger
}

// NewRoom creates and initializes the global Room. The caller must start the
// event loop with go room.Run().
func NewRoom(users store.Store) *Room {
	roomLogger := logx.Logger().With().
		Str("room", RoomName).
		Logger()

	return &Room{
		users:      users,
		clients:    make(map[string]*Client),
		presence:   newPresenceRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage, inboundChannelBuffer),
		stopChan:   make(chan struct{}),
		logger:     roomLogger,
	}
}

// Register queues an authenticated client for joining the room.
func (r *Room) Register(client *Client) {
	select {
	case r.register <- client:
	case <-r.stopChan:
		client.Close()
	}
}

// Submit queues a chat message from a joined client for validation and
// broadcast.
func (r *Room) Submit(client *Client, req SendRequest) {
	select {
	case r.inbound <- inboundMessage{client: client, req: req}:
	default:
		r.logger.Warn().Str("conn_id", client.connID).Msg("Room inbound channel full, dropping message")
		client.SendError(errs.NewError(errs.ErrUnknown, fmt.Errorf("room inbound queue full")))
	}
}

// Stop signals the Run loop to terminate.
func (r *Room) Stop() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
}

// Run starts the main event loop for the Room. It is the single writer of all
// room state and must run on exactly one goroutine.
func (r *Room) Run() {
	defer func() {
		r.logger.Info().Int("total_users", len(r.clients)).Msg("Room Run loop finished. Closing remaining clients.")

		for _, client := range r.clients {
			r.setOffline(client)
			client.Close()
		}
		r.clients = make(map[string]*Client)
		r.presence = newPresenceRegistry()
	}()

	for {
		select {
		case client := <-r.register:
			r.handleRegister(client)

		case client := <-r.unregister:
			r.handleUnregister(client)

		case msg := <-r.inbound:
			r.handleInbound(msg.client, msg.req)

		case <-r.stopChan:
			r.logger.Info().Msg("Room stop initiated.")
			return
		}
	}
}

// handleRegister runs the join sequence for an authenticated client: mark the
// user online, track presence, welcome the joiner, announce to the others, and
// send everyone a fresh presence snapshot. If the online transition fails the
// client gets an error event and is disconnected.
func (r *Room) handleRegister(client *Client) {
	ref := client.identity.Ref()

	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	if err := r.users.SetOnline(ctx, ref.ID, true, client.connID); err != nil {
		r.logger.Error().Err(err).
			Str("user_id", ref.ID).
			Msg("Failed to mark user online, rejecting join.")

		client.SendError(errs.NewError(errs.ErrUnknown, err))
		client.Close()
		return
	}

	r.presence.Add(client.connID, ref)
	r.clients[client.connID] = client

	r.logger.Info().
		Str("conn_id", client.connID).
		Str("username", ref.Username).
		Int("total_users", len(r.clients)).
		Msg("Client joined room.")

	welcome := NewSystemMessage(fmt.Sprintf("Welcome %s to the chat room!", ref.Username))
	if err := client.SendEvent(EventMessage, welcome); err != nil {
		// Nobody has been told about this client yet, so the join can still be
		// undone without announcements.
		r.logger.Error().Err(err).Msg("Failed to send welcome message, rejecting join.")

		delete(r.clients, client.connID)
		r.presence.Remove(client.connID)
		r.setOffline(client)
		client.Close()
		return
	}

	r.broadcastEvent(EventUserJoined, userEventPayload{User: ref}, client.connID)
	r.broadcastEvent(EventMessage, NewSystemMessage(fmt.Sprintf("%s joined the chat room", ref.Username)), client.connID)

	r.broadcastEvent(EventUsersList, r.presence.Snapshot(), "")
}

// handleUnregister runs the leave sequence: drop the client, mark the user
// offline, announce the departure, and send the remaining clients a fresh
// presence snapshot. Unknown or stale connections are ignored.
func (r *Room) handleUnregister(client *Client) {
	current, ok := r.clients[client.connID]
	if !ok || current != client {
		r.logger.Info().
			Str("conn_id", client.connID).
			Msg("Ignoring unregister for unknown or stale connection.")
		return
	}

	delete(r.clients, client.connID)
	entry, present := r.presence.Remove(client.connID)
	r.setOffline(client)
	client.Close()

	r.logger.Info().
		Str("conn_id", client.connID).
		Int("total_users", len(r.clients)).
		Msg("Client left room.")

	if !present {
		return
	}

	r.broadcastEvent(EventUserLeft, userEventPayload{User: entry.User}, "")
	r.broadcastEvent(EventMessage, NewSystemMessage(fmt.Sprintf("%s left the chat room", entry.User.Username)), "")
	r.broadcastEvent(EventUsersList, r.presence.Snapshot(), "")
}

// handleInbound validates a chat message and broadcasts it to every joined
// client, the sender included. The sender identity always comes from the
// presence entry of the submitting connection.
func (r *Room) handleInbound(client *Client, req SendRequest) {
	entry, ok := r.presence.Get(client.connID)
	if !ok {
		client.SendError(errs.NewError(errs.ErrNotInRoom))
		return
	}

	msg, customErr := req.BuildMessage(entry.User)
	if customErr != nil {
		client.SendError(customErr)
		return
	}

	r.broadcastEvent(EventMessage, msg, "")
}

// broadcastEvent marshals the event once and queues the frame to every joined
// client except the excluded connection. An empty excludeConnID broadcasts to
// everyone. Clients with a full send queue are removed after the fan-out; a
// send into r.unregister here would deadlock, since this runs on the only
// goroutine that drains it.
func (r *Room) broadcastEvent(name string, data any, excludeConnID string) {
	frame, err := EncodeEvent(name, data)
	if err != nil {
		r.logger.Error().Err(err).Str("event", name).Msg("Error marshaling event for broadcast.")
		return
	}

	var doomed []*Client
	for connID, client := range r.clients {
		if connID == excludeConnID {
			continue
		}

		select {
		case client.send <- frame:
		default:
			r.logger.Warn().
				Str("conn_id", connID).
				Msg("Client send channel full, disconnecting.")
			doomed = append(doomed, client)
		}
	}

	for _, client := range doomed {
		r.handleUnregister(client)
	}
}

// setOffline flips the store's online flag for a departing client.
func (r *Room) setOffline(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	if err := r.users.SetOnline(ctx, client.identity.User.ID, false, ""); err != nil {
		r.logger.Error().Err(err).
			Str("user_id", client.identity.User.ID).
			Msg("Failed to mark user offline.")
	}
}
