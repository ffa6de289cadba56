package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"lanshare/internal/pkg/errs"
)

var testSender = UserRef{ID: "u1", Username: "alice", Avatar: "A"}

func TestBuildMessageValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      SendRequest
		wantErr  int
		wantType MessageType
	}{
		{
			name:     "plain text",
			req:      SendRequest{Message: "hello"},
			wantType: TypeText,
		},
		{
			name:     "text with explicit type",
			req:      SendRequest{Type: "text", Message: "hello"},
			wantType: TypeText,
		},
		{
			name:    "empty text",
			req:     SendRequest{Message: ""},
			wantErr: errs.ErrMessageEmpty,
		},
		{
			name:    "whitespace only text",
			req:     SendRequest{Message: "   \t  "},
			wantErr: errs.ErrMessageEmpty,
		},
		{
			name:     "text at the limit",
			req:      SendRequest{Message: strings.Repeat("字", MaxContentChars)},
			wantType: TypeText,
		},
		{
			name:    "text over the limit",
			req:     SendRequest{Message: strings.Repeat("a", MaxContentChars+1)},
			wantErr: errs.ErrMessageTooLong,
		},
		{
			name:     "image",
			req:      SendRequest{Type: "image", ImageURL: "/uploads/pic-123.png"},
			wantType: TypeImage,
		},
		{
			name:    "image without url",
			req:     SendRequest{Type: "image", Message: "caption only"},
			wantErr: errs.ErrImageURLMissing,
		},
		{
			name:     "file",
			req:      SendRequest{Type: "file", FileURL: "/uploads/doc-123.pdf", Filename: "doc-123.pdf"},
			wantType: TypeFile,
		},
		{
			name:    "file without url",
			req:     SendRequest{Type: "file", Filename: "doc-123.pdf"},
			wantErr: errs.ErrFileInfoIncomplete,
		},
		{
			name:    "file without filename",
			req:     SendRequest{Type: "file", FileURL: "/uploads/doc-123.pdf"},
			wantErr: errs.ErrFileInfoIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, customErr := tt.req.BuildMessage(testSender)

			if tt.wantErr != 0 {
				if customErr == nil {
					t.Fatal("BuildMessage() expected an error")
				}
				if customErr.Code != tt.wantErr {
					t.Errorf("error code = %d, want %d", customErr.Code, tt.wantErr)
				}
				return
			}

			if customErr != nil {
				t.Fatalf("BuildMessage() error = %v", customErr)
			}
			if msg.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", msg.Type(), tt.wantType)
			}
			if msg.ID == "" {
				t.Error("message got no id")
			}
			if msg.Timestamp == 0 {
				t.Error("message got no timestamp")
			}
			if msg.Sender == nil || msg.Sender.ID != testSender.ID {
				t.Errorf("Sender = %v, want the presence entry identity", msg.Sender)
			}
		})
	}
}

func TestBuildMessageOversizeNotTruncated(t *testing.T) {
	t.Parallel()

	req := SendRequest{Message: strings.Repeat("x", MaxContentChars*2)}
	if _, customErr := req.BuildMessage(testSender); customErr == nil {
		t.Fatal("oversize message must be rejected, never truncated")
	}
}

func TestMessageMarshalFlatShape(t *testing.T) {
	t.Parallel()

	msg, customErr := SendRequest{
		Type:         "file",
		Message:      "here you go",
		FileURL:      "/uploads/report-abc.pdf",
		Filename:     "report-abc.pdf",
		OriginalName: "report.pdf",
		Size:         1234,
		Mimetype:     "application/pdf",
	}.BuildMessage(testSender)
	if customErr != nil {
		t.Fatalf("BuildMessage() error = %v", customErr)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if wire["type"] != "file" {
		t.Errorf("type = %v, want file", wire["type"])
	}
	if wire["fileUrl"] != "/uploads/report-abc.pdf" {
		t.Errorf("fileUrl = %v", wire["fileUrl"])
	}
	if wire["originalName"] != "report.pdf" {
		t.Errorf("originalName = %v", wire["originalName"])
	}
	if wire["content"] != "here you go" {
		t.Errorf("content = %v", wire["content"])
	}
	if _, hasImage := wire["imageUrl"]; hasImage {
		t.Error("file message must not carry imageUrl")
	}

	sender, ok := wire["user"].(map[string]any)
	if !ok {
		t.Fatalf("user = %v, want an object", wire["user"])
	}
	if sender["username"] != "alice" {
		t.Errorf("user.username = %v, want alice", sender["username"])
	}
}

func TestSystemMessageMarshal(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NewSystemMessage("alice joined the chat room"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if wire["type"] != "system" {
		t.Errorf("type = %v, want system", wire["type"])
	}
	if wire["content"] != "alice joined the chat room" {
		t.Errorf("content = %v", wire["content"])
	}
	if _, hasUser := wire["user"]; hasUser {
		t.Error("system message must not carry a sender")
	}
}

func TestEncodeEvent(t *testing.T) {
	t.Parallel()

	raw, err := EncodeEvent(EventUsersList, []UserRef{testSender})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if event.Event != EventUsersList {
		t.Errorf("event = %q, want %q", event.Event, EventUsersList)
	}

	var refs []UserRef
	if err := json.Unmarshal(event.Data, &refs); err != nil {
		t.Fatalf("Unmarshal(data) error = %v", err)
	}
	if len(refs) != 1 || refs[0].Username != "alice" {
		t.Errorf("data = %v", refs)
	}
}
