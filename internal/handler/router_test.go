package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lanshare/internal/app/chat"
	"lanshare/internal/app/storage"
	"lanshare/internal/app/store"
	"lanshare/internal/configs"
)

const testJWTSecret = "handler-test-secret"

// newTestEnv wires a full server against the in-memory store and a disk upload
// backend rooted in a temp directory.
func newTestEnv(t *testing.T) (*httptest.Server, *AppDeps) {
	t.Helper()
	return newTestEnvWithStore(t, store.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, st store.Store) (*httptest.Server, *AppDeps) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:   "development",
		Port:          3678,
		JWTSecret:     testJWTSecret,
		JWTExpires:    time.Hour,
		StorageMode:   configs.StorageModeMemory,
		UploadBackend: configs.UploadBackendDisk,
		UploadDir:     t.TempDir(),
	}

	uploads, err := storage.NewService(storage.ServiceConfig{
		Backend:   cfg.UploadBackend,
		UploadDir: cfg.UploadDir,
	})
	if err != nil {
		t.Fatalf("storage.NewService() error = %v", err)
	}

	room := chat.NewRoom(st)
	go room.Run()
	t.Cleanup(room.Stop)

	deps := &AppDeps{
		Config:  cfg,
		Store:   st,
		Uploads: uploads,
		Room:    room,
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	return srv, deps
}

// postJSON sends a JSON request and decodes the JSON response body.
func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Post(%s) error = %v", url, err)
	}
	defer res.Body.Close()

	return res.StatusCode, decodeBody(t, res.Body)
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return payload
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	status, body := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": username,
		"password": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %v", username, status, body)
	}

	data, _ := body["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response %v", username, body)
	}
	return token
}

func authedGet(t *testing.T, srv *httptest.Server, path string, token string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer res.Body.Close()

	return res.StatusCode, decodeBody(t, res.Body)
}

// multipartBody builds a one-file multipart form with an explicit part
// content type.
func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("part write error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close error = %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, srv *httptest.Server, path, token, field, filename, contentType string, data []byte) (int, map[string]any) {
	t.Helper()

	body, formType := multipartBody(t, field, filename, contentType, data)

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", formType)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer res.Body.Close()

	return res.StatusCode, decodeBody(t, res.Body)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	body := decodeBody(t, res.Body)
	if body["success"] != true || body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if body["store"] != "memory" {
		t.Errorf("store = %v, want memory", body["store"])
	}
}

func TestRegisterAndVerify(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	status, body := postJSON(t, srv.URL+"/api/auth/register", map[string]string{
		"username": "alice",
		"password": "secret123",
		"email":    "Alice@Example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}

	data, _ := body["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("no token in register response")
	}

	u, _ := data["user"].(map[string]any)
	if u["username"] != "alice" {
		t.Errorf("user.username = %v, want alice", u["username"])
	}
	if u["email"] != "alice@example.com" {
		t.Errorf("user.email = %v, want lowercased", u["email"])
	}
	if u["avatar"] == "" {
		t.Error("user got no avatar")
	}

	status, body = authedGet(t, srv, "/api/auth/verify", token)
	if status != http.StatusOK {
		t.Fatalf("verify status = %d, body = %v", status, body)
	}
	data, _ = body["data"].(map[string]any)
	u, _ = data["user"].(map[string]any)
	if u["username"] != "alice" {
		t.Errorf("verify user = %v", u)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	registerUser(t, srv, "alice")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{
			name:       "duplicate username ignoring case",
			body:       map[string]string{"username": "ALICE", "password": "secret123"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "username too short",
			body:       map[string]string{"username": "x", "password": "secret123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "password too short",
			body:       map[string]string{"username": "bob", "password": "123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed email",
			body:       map[string]string{"username": "bob", "password": "secret123", "email": "not-an-email"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		status, body := postJSON(t, srv.URL+"/api/auth/register", tt.body)
		if status != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d (body %v)", tt.name, status, tt.wantStatus, body)
		}
		if body["success"] != false {
			t.Errorf("%s: success = %v, want false", tt.name, body["success"])
		}
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	registerUser(t, srv, "alice")

	status, body := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body = %v", status, body)
	}
	data, _ := body["data"].(map[string]any)
	if token, _ := data["token"].(string); token == "" {
		t.Error("login returned no token")
	}
	u, _ := data["user"].(map[string]any)
	if u["isOnline"] != true {
		t.Errorf("user.isOnline = %v, want true after login", u["isOnline"])
	}

	status, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", status)
	}

	status, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "secret123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", status)
	}
}

func TestCredentialRateLimit(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	var lastStatus int
	for i := 0; i < CredentialBurst+1; i++ {
		lastStatus, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
			"username": "nobody",
			"password": "wrong",
		})
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("request %d status = %d, want 429", CredentialBurst+1, lastStatus)
	}
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	res, err := http.Get(srv.URL + "/api/files")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", res.StatusCode)
	}

	status, _ := authedGet(t, srv, "/api/files", "garbage-token")
	if status != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", status)
	}

	res, err = http.Get(srv.URL + "/api/download/whatever.txt?token=garbage")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage query token status = %d, want 401", res.StatusCode)
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	token := registerUser(t, srv, "alice")
	content := []byte("quarterly numbers")

	status, body := uploadFile(t, srv, "/api/upload/file", token,
		"file", "quarterly report.pdf", "application/pdf", content)
	if status != http.StatusOK {
		t.Fatalf("upload status = %d, body = %v", status, body)
	}

	storedName, _ := body["filename"].(string)
	fileURL, _ := body["fileUrl"].(string)
	if storedName == "" || fileURL != "/uploads/"+storedName {
		t.Fatalf("upload response = %v", body)
	}
	if body["originalName"] != "quarterly report.pdf" {
		t.Errorf("originalName = %v", body["originalName"])
	}
	if body["size"] != float64(len(content)) {
		t.Errorf("size = %v, want %d", body["size"], len(content))
	}

	// Public inline serving.
	res, err := http.Get(srv.URL + fileURL)
	if err != nil {
		t.Fatal(err)
	}
	served, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("serve status = %d", res.StatusCode)
	}
	if !bytes.Equal(served, content) {
		t.Errorf("served bytes differ from upload")
	}
	if got := res.Header.Get("Content-Type"); got != "application/pdf" {
		t.Errorf("serve Content-Type = %q, want application/pdf", got)
	}

	// Authenticated download carries the original name.
	res, err = http.Get(srv.URL + "/api/download/" + url.PathEscape(storedName) + "?token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	downloaded, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", res.StatusCode)
	}
	if !bytes.Equal(downloaded, content) {
		t.Errorf("downloaded bytes differ from upload")
	}

	disposition := res.Header.Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "quarterly") {
		t.Errorf("Content-Disposition = %q", disposition)
	}
	if !strings.Contains(disposition, "filename*=UTF-8''") {
		t.Errorf("Content-Disposition missing RFC 5987 form: %q", disposition)
	}
}

func TestUploadRejectsExecutable(t *testing.T) {
	t.Parallel()
	srv, deps := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	status, body := uploadFile(t, srv, "/api/upload/file", token,
		"file", "evil.exe", "application/octet-stream", []byte("MZ"))
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}

	// Nothing may hit the disk for a rejected upload.
	entries, err := os.ReadDir(deps.Config.UploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries after rejection, want 0", len(entries))
	}
}

func TestUploadImage(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	status, body := uploadFile(t, srv, "/api/upload/image", token,
		"image", "pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	if status != http.StatusOK {
		t.Fatalf("image upload status = %d, body = %v", status, body)
	}
	imageURL, _ := body["imageUrl"].(string)
	if !strings.HasPrefix(imageURL, "/uploads/") {
		t.Errorf("imageUrl = %q", imageURL)
	}

	status, body = uploadFile(t, srv, "/api/upload/image", token,
		"image", "notes.txt", "text/plain", []byte("not an image"))
	if status != http.StatusBadRequest {
		t.Errorf("non-image status = %d, body = %v", status, body)
	}
}

func TestListFiles(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	if status, body := uploadFile(t, srv, "/api/upload/file", token,
		"file", "notes.txt", "text/plain", []byte("hello")); status != http.StatusOK {
		t.Fatalf("upload status = %d, body = %v", status, body)
	}

	status, body := authedGet(t, srv, "/api/files", token)
	if status != http.StatusOK {
		t.Fatalf("files status = %d, body = %v", status, body)
	}

	files, _ := body["files"].([]any)
	if len(files) != 1 {
		t.Fatalf("files length = %d, want 1", len(files))
	}

	entry, _ := files[0].(map[string]any)
	if entry["originalName"] != "notes.txt" {
		t.Errorf("originalName = %v", entry["originalName"])
	}
	if entry["sizeFormatted"] != "5 Bytes" {
		t.Errorf("sizeFormatted = %v, want 5 Bytes", entry["sizeFormatted"])
	}
	if entry["type"] != ".txt" {
		t.Errorf("type = %v, want .txt", entry["type"])
	}
}

func TestDeleteFile(t *testing.T) {
	t.Parallel()
	srv, deps := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	status, body := uploadFile(t, srv, "/api/upload/file", token,
		"file", "old-notes.txt", "text/plain", []byte("stale"))
	if status != http.StatusOK {
		t.Fatalf("upload status = %d, body = %v", status, body)
	}
	storedName, _ := body["filename"].(string)

	doDelete := func(name string) (int, map[string]any) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/files/"+url.PathEscape(name), nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		return res.StatusCode, decodeBody(t, res.Body)
	}

	status, body = doDelete(storedName)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d, body = %v", status, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}

	// Bytes, listing entry, and metadata are all gone.
	res, err := http.Get(srv.URL + "/uploads/" + url.PathEscape(storedName))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("serve after delete status = %d, want 404", res.StatusCode)
	}

	status, body = authedGet(t, srv, "/api/files", token)
	if status != http.StatusOK {
		t.Fatalf("files status = %d", status)
	}
	if files, _ := body["files"].([]any); len(files) != 0 {
		t.Errorf("files after delete = %v, want empty", files)
	}

	entries, err := os.ReadDir(deps.Config.UploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries after delete, want 0", len(entries))
	}

	// Deleting twice reports not found.
	if status, _ = doDelete(storedName); status != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", status)
	}
}

func TestFilesystemEndpoints(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("host file"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := http.Get(srv.URL + "/api/filesystem/root?token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || body["platform"] == "" {
		t.Errorf("root status = %d, body = %v", res.StatusCode, body)
	}

	res, err = http.Get(srv.URL + "/api/filesystem/list?token=" + token + "&dirPath=" + url.QueryEscape(dir))
	if err != nil {
		t.Fatal(err)
	}
	body = decodeBody(t, res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, body = %v", res.StatusCode, body)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items length = %d, want 1", len(items))
	}
	item, _ := items[0].(map[string]any)
	if item["name"] != "hello.txt" || item["type"] != "file" {
		t.Errorf("item = %v", item)
	}

	res, err = http.Get(srv.URL + "/api/filesystem/download?token=" + token + "&filePath=" + url.QueryEscape(filepath.Join(dir, "hello.txt")))
	if err != nil {
		t.Fatal(err)
	}
	downloaded, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", res.StatusCode)
	}
	if string(downloaded) != "host file" {
		t.Errorf("downloaded = %q", downloaded)
	}

	res, err = http.Get(srv.URL + "/api/filesystem/download-folder?token=" + token + "&folderPath=" + url.QueryEscape(dir))
	if err != nil {
		t.Fatal(err)
	}
	zipped, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("download-folder status = %d", res.StatusCode)
	}
	if res.Header.Get("Content-Type") != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", res.Header.Get("Content-Type"))
	}
	if len(zipped) == 0 || !bytes.HasPrefix(zipped, []byte("PK")) {
		t.Errorf("response is not a zip archive (%d bytes)", len(zipped))
	}
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	t.Parallel()
	srv, _ := newTestEnv(t)

	token := registerUser(t, srv, "alice")

	putJSON := func(path string, payload map[string]string) (int, map[string]any) {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		req, err := http.NewRequest(http.MethodPut, srv.URL+path, bytes.NewReader(raw))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		return res.StatusCode, decodeBody(t, res.Body)
	}

	status, body := putJSON("/api/auth/profile", map[string]string{"email": "alice@lan.local"})
	if status != http.StatusOK {
		t.Fatalf("profile update status = %d, body = %v", status, body)
	}
	data, _ := body["data"].(map[string]any)
	u, _ := data["user"].(map[string]any)
	if u["email"] != "alice@lan.local" {
		t.Errorf("email = %v", u["email"])
	}

	status, body = putJSON("/api/auth/password", map[string]string{
		"oldPassword": "wrong",
		"newPassword": "newsecret123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong old password status = %d, body = %v", status, body)
	}

	status, body = putJSON("/api/auth/password", map[string]string{
		"oldPassword": "secret123",
		"newPassword": "newsecret123",
	})
	if status != http.StatusOK {
		t.Fatalf("password change status = %d, body = %v", status, body)
	}

	// The old password must stop working.
	status, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("old password login status = %d, want 401", status)
	}
	status, _ = postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "newsecret123",
	})
	if status != http.StatusOK {
		t.Errorf("new password login status = %d, want 200", status)
	}
}
