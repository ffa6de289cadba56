/*
Package chat contains the core logic for the realtime layer: connection
authentication, presence tracking, and message broadcasting in the single
global room.

This file defines the wire events exchanged over the WebSocket connection and
the Message model. Messages are a tagged union over {text, image, file, system};
each variant carries only the fields it needs, and the union is flattened into
one JSON object on the wire.
*/
package chat

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/randx"
)

// Server → client event names.
const (
	EventMessage    = "message"
	EventUserJoined = "userJoined"
	EventUserLeft   = "userLeft"
	EventUsersList  = "usersList"
	EventError      = "error"
)

// Client → server event names.
const (
	EventSendMessage = "send_message"
)

// MaxContentChars is the maximum number of characters allowed in text message
// content. Longer messages are rejected outright, never truncated.
const MaxContentChars = 500

// Event is the envelope for every frame exchanged over the connection.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent marshals an outbound event envelope with the given payload.
func EncodeEvent(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: name, Data: raw})
}

// MessageType discriminates the message union.
type MessageType string

const (
	TypeText   MessageType = "text"
	TypeImage  MessageType = "image"
	TypeFile   MessageType = "file"
	TypeSystem MessageType = "system"
)

// UserRef is the compact user projection used as a message sender and as an
// entry of the presence snapshot.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Payload is implemented by every message variant.
type Payload interface {
	kind() MessageType
}

// TextPayload carries plain chat text.
type TextPayload struct {
	Content string
}

func (TextPayload) kind() MessageType { return TypeText }

// ImagePayload carries an uploaded image URL with an optional caption.
type ImagePayload struct {
	ImageURL string
	Caption  string
}

func (ImagePayload) kind() MessageType { return TypeImage }

// FilePayload carries an uploaded file reference with an optional caption.
type FilePayload struct {
	FileURL      string
	Filename     string
	OriginalName string
	Size         int64
	MimeType     string
	Caption      string
}

func (FilePayload) kind() MessageType { return TypeFile }

// SystemPayload carries server-generated announcements (welcome, join, leave).
type SystemPayload struct {
	Content string
}

func (SystemPayload) kind() MessageType { return TypeSystem }

// Message is one chat message. Messages are transient: they are broadcast once
// and never stored, so a client connecting later never sees history.
type Message struct {
	// ID is a server-assigned UUID, unique under concurrent generation.
	ID string

	// Sender identifies the message author. Nil for system messages.
	Sender *UserRef

	// Timestamp is the server-side creation time in Unix milliseconds.
	Timestamp int64

	// Payload is the kind-specific content.
	Payload Payload
}

// Type returns the discriminator of the message's payload.
func (m Message) Type() MessageType {
	return m.Payload.kind()
}

// wireMessage is the flattened JSON shape of a Message.
type wireMessage struct {
	ID           string      `json:"id"`
	Type         MessageType `json:"type"`
	User         *UserRef    `json:"user,omitempty"`
	Timestamp    int64       `json:"timestamp"`
	Content      string      `json:"content,omitempty"`
	ImageURL     string      `json:"imageUrl,omitempty"`
	FileURL      string      `json:"fileUrl,omitempty"`
	Filename     string      `json:"filename,omitempty"`
	OriginalName string      `json:"originalName,omitempty"`
	Size         int64       `json:"size,omitempty"`
	MimeType     string      `json:"mimetype,omitempty"`
}

// MarshalJSON flattens the tagged union into the wire shape.
func (m Message) MarshalJSON() ([]byte, error) {
	wire := wireMessage{
		ID:        m.ID,
		Type:      m.Type(),
		User:      m.Sender,
		Timestamp: m.Timestamp,
	}

	switch p := m.Payload.(type) {
	case TextPayload:
		wire.Content = p.Content
	case ImagePayload:
		wire.ImageURL = p.ImageURL
		wire.Content = p.Caption
	case FilePayload:
		wire.FileURL = p.FileURL
		wire.Filename = p.Filename
		wire.OriginalName = p.OriginalName
		wire.Size = p.Size
		wire.MimeType = p.MimeType
		wire.Content = p.Caption
	case SystemPayload:
		wire.Content = p.Content
	}

	return json.Marshal(wire)
}

// newMessage stamps a server-assigned id and timestamp on a payload.
func newMessage(sender *UserRef, payload Payload) Message {
	return Message{
		ID:        randx.MessageID(),
		Sender:    sender,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// NewSystemMessage builds a sender-less system announcement.
func NewSystemMessage(content string) Message {
	return newMessage(nil, SystemPayload{Content: content})
}

// SendRequest is the client payload of a send_message event.
type SendRequest struct {
	Type         string `json:"type,omitempty"`
	Message      string `json:"message,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Mimetype     string `json:"mimetype,omitempty"`
}

// BuildMessage validates the request by its declared kind and constructs the
// Message to broadcast. The sender always comes from the server-side presence
// entry; client-supplied identity is never trusted.
func (r SendRequest) BuildMessage(sender UserRef) (Message, *errs.CustomError) {
	switch r.Type {
	case string(TypeImage):
		if r.ImageURL == "" {
			return Message{}, errs.NewError(errs.ErrImageURLMissing)
		}
		return newMessage(&sender, ImagePayload{
			ImageURL: r.ImageURL,
			Caption:  r.Message,
		}), nil

	case string(TypeFile):
		if r.FileURL == "" || r.Filename == "" {
			return Message{}, errs.NewError(errs.ErrFileInfoIncomplete)
		}
		return newMessage(&sender, FilePayload{
			FileURL:      r.FileURL,
			Filename:     r.Filename,
			OriginalName: r.OriginalName,
			Size:         r.Size,
			MimeType:     r.Mimetype,
			Caption:      r.Message,
		}), nil

	default:
		// Text is the default kind when the type field is omitted.
		content := strings.TrimSpace(r.Message)
		if content == "" {
			return Message{}, errs.NewError(errs.ErrMessageEmpty)
		}
		if utf8.RuneCountInString(content) > MaxContentChars {
			return Message{}, errs.NewError(errs.ErrMessageTooLong, MaxContentChars)
		}
		return newMessage(&sender, TextPayload{Content: content}), nil
	}
}
