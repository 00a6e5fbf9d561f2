package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CageChen/hideme/internal/exclude"
	"github.com/CageChen/hideme/internal/fs"
	"github.com/CageChen/hideme/internal/settings"
	"github.com/CageChen/hideme/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type foldersResponse struct {
	Folders []FolderStatus `json:"folders"`
	Error   string         `json:"error"`
}

func setup(t *testing.T, files map[string]string) (*gin.Engine, *workspace.Syncer, *WSHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	folder := workspace.Folder{Path: "/ws", Alias: "ws", FS: &fs.MapFS{RootPath: "/ws", Files: files}}
	syncer := workspace.New([]workspace.Folder{folder}, settings.NewMemoryStore())
	ws := NewWSHandler()
	syncer.OnSync(ws.OnSync)

	r := gin.New()
	Register(r, NewStatusHandler(syncer), ws)
	return r, syncer, ws
}

func decode(t *testing.T, w *httptest.ResponseRecorder) foldersResponse {
	t.Helper()
	var resp foldersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestSyncEndpoint(t *testing.T) {
	r, _, _ := setup(t, map[string]string{".hideme": "dist", "dist/a.js": "", "src/b.go": ""})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if len(resp.Folders) != 1 || !resp.Folders[0].Exclude.Equal(exclude.Set{"dist": true}) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSyncEndpointMalformedPattern(t *testing.T) {
	r, _, _ := setup(t, map[string]string{".hideme": "(", "a": ""})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := decode(t, w); resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestGetFolders(t *testing.T) {
	r, syncer, _ := setup(t, map[string]string{".hideme": "a", "a": "", "b": ""})
	if _, err := syncer.Sync(); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decode(t, w)
	if len(resp.Folders) != 1 || resp.Folders[0].Alias != "ws" {
		t.Fatalf("unexpected folders: %+v", resp.Folders)
	}
	if !resp.Folders[0].Exclude.Equal(exclude.Set{"a": true}) {
		t.Errorf("unexpected exclusions: %v", resp.Folders[0].Exclude)
	}
}

func TestWebSocketBroadcastsSync(t *testing.T) {
	r, syncer, ws := setup(t, map[string]string{".hideme": "a", "a": ""})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for ws.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := syncer.Sync(); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var msg struct {
		Type    string       `json:"type"`
		Payload FolderStatus `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid message %s: %v", data, err)
	}
	if msg.Type != "exclusionChange" {
		t.Errorf("expected exclusionChange, got %s", msg.Type)
	}
	if !msg.Payload.Exclude.Equal(exclude.Set{"a": true}) {
		t.Errorf("unexpected payload: %+v", msg.Payload)
	}
}

func TestStalledClientIsDropped(t *testing.T) {
	saved := writeWait
	writeWait = 200 * time.Millisecond
	defer func() { writeWait = saved }()

	files := map[string]string{".hideme": ".*"}
	for i := 0; i < 2000; i++ {
		files[fmt.Sprintf("%04d-%s", i, strings.Repeat("x", 120))] = ""
	}
	r, syncer, ws := setup(t, files)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for ws.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The client never reads, so its socket buffers eventually fill up.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500 && ws.ClientCount() > 0; i++ {
			if _, err := syncer.Sync(); err != nil {
				t.Errorf("Sync failed: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(60 * time.Second):
		t.Fatal("syncs blocked on a client that stopped reading")
	}
	if ws.ClientCount() != 0 {
		t.Error("expected the stalled client to be dropped")
	}
}
