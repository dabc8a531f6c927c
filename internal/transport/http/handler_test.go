package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lms-store-service/internal/app"
	"lms-store-service/internal/domain"
	"lms-store-service/internal/infra/memory"
)

type stubRemote struct {
	pullAgg domain.Aggregate
	pullErr error
}

func (s *stubRemote) Push(context.Context, string, domain.Aggregate) error { return nil }
func (s *stubRemote) Pull(context.Context, string) (domain.Aggregate, error) {
	return s.pullAgg, s.pullErr
}

func newTestServer(t *testing.T, remote *stubRemote, defaults app.SettingsDefaults) (*httptest.Server, *app.StoreService) {
	t.Helper()
	store := memory.NewStore()
	service := app.NewStoreService(store, store, remote, app.GoDispatcher{}, zap.NewNop(), defaults)
	handler := NewHandler(service, zap.NewNop())
	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &stubRemote{}, app.SettingsDefaults{})

	resp := postJSON(t, server.URL+"/api/login", map[string]string{"username": "admin", "password": "admin"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var auth domain.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if auth.User.Role != domain.RoleAdmin || auth.Token == "" {
		t.Fatalf("unexpected auth response: %+v", auth)
	}

	resp = postJSON(t, server.URL+"/api/login", map[string]string{"username": "admin", "password": "wrong"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestDeleteQuestionEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &stubRemote{}, app.SettingsDefaults{})

	resp := doRequest(t, http.MethodDelete, server.URL+"/api/questions/missing-id", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing question, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/questions/VN-GEO-001", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestSyncWithoutURLConflicts(t *testing.T) {
	server, _ := newTestServer(t, &stubRemote{}, app.SettingsDefaults{})

	resp := postJSON(t, server.URL+"/api/sync", map[string]string{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestImportEndpointReportsBoolean(t *testing.T) {
	remote := &stubRemote{pullAgg: domain.Aggregate{
		Users:     []domain.User{{ID: "r1", Username: "remote", Role: domain.RoleStudent}},
		Questions: []domain.Question{},
		Lessons:   []domain.Lesson{},
	}}
	server, service := newTestServer(t, remote, app.SettingsDefaults{SheetURL: "https://sheets.test", Enabled: false})

	resp := postJSON(t, server.URL+"/api/import", map[string]string{})
	defer resp.Body.Close()
	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("expected ok=true, got %+v", body)
	}

	users := service.ListUsers(context.Background(), app.UserFilter{})
	if len(users) != 1 || users[0].ID != "r1" {
		t.Fatalf("import did not replace the store: %+v", users)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, service := newTestServer(t, &stubRemote{}, app.SettingsDefaults{})
	ctx := context.Background()

	created, err := service.CreateUser(ctx, domain.User{Username: "alice", FullName: "Alice", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := service.UpdateScore(ctx, created.ID, 8); err != nil {
		t.Fatalf("update score: %v", err)
	}

	resp := doRequest(t, http.MethodGet, server.URL+"/api/leaderboard?limit=1", nil)
	defer resp.Body.Close()
	var lb domain.Leaderboard
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].TotalScore != 8 {
		t.Fatalf("unexpected leaderboard: %+v", lb.Entries)
	}
}

func TestLeaderboardWebSocketStream(t *testing.T) {
	server, service := newTestServer(t, &stubRemote{}, app.SettingsDefaults{})
	ctx := context.Background()

	created, err := service.CreateUser(ctx, domain.User{Username: "alice", FullName: "Alice", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var initial domain.Leaderboard
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(initial.Entries) != 1 || initial.Entries[0].TotalScore != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", initial.Entries)
	}

	if err := service.UpdateScore(ctx, created.ID, 4); err != nil {
		t.Fatalf("update score: %v", err)
	}

	var update domain.Leaderboard
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Entries[0].TotalScore != 4 {
		t.Fatalf("expected streamed score 4, got %+v", update.Entries)
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func doRequest(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}
