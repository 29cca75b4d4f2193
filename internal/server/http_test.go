package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/circleup/ideas-engine/pkg/deck"
	"github.com/circleup/ideas-engine/pkg/scoring"
	"github.com/circleup/ideas-engine/pkg/store"
	"github.com/go-redis/redis/v8"
)

func setupTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.New(client)
	manager := deck.NewManager(st, scoring.Default(), deck.WithSynchronousWrites())

	s := NewHTTPServer(0, manager, st.Ping)
	if err := s.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	return s
}

func doRequest(t *testing.T, s *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := setupTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, expected 200", rec.Code)
	}
}

func TestSourceDeliveryAndSwipeFlow(t *testing.T) {
	s := setupTestServer(t)

	// The deck stays in building until the last source lands.
	rec := doRequest(t, s, http.MethodPut, "/v1/users/u1/sources/reconnect",
		`[{"friendId":"f1","name":"Maya","daysSinceHangout":100},
		  {"friendId":"f2","name":"Jon","daysSinceHangout":40}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT reconnect = %d: %s", rec.Code, rec.Body)
	}

	var status deck.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.State != deck.StateBuilding {
		t.Errorf("state = %s with three sources outstanding, expected building", status.State)
	}

	for _, src := range []string{"birthdays", "friend_events", "own_recent"} {
		rec = doRequest(t, s, http.MethodPut, "/v1/users/u1/sources/"+src, `[]`)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT %s = %d: %s", src, rec.Code, rec.Body)
		}
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.State != deck.StateReady {
		t.Fatalf("state = %s after all sources, expected ready", status.State)
	}
	if len(status.Cards) != 2 {
		t.Fatalf("len(Cards) = %d, expected 2", len(status.Cards))
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/users/u1/deck", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET deck = %d", rec.Code)
	}

	// Accepting a reconnect card navigates to the conversation.
	rec = doRequest(t, s, http.MethodPost, "/v1/users/u1/deck/swipes", `{"action":"accept"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST swipe = %d: %s", rec.Code, rec.Body)
	}
	var res deck.SwipeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode swipe result: %v", err)
	}
	if res.Navigation == nil || res.Navigation.Type != deck.NavigateOpenConversation {
		t.Errorf("accept should navigate to a conversation, got %+v", res.Navigation)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/users/u1/deck/swipes", `{"action":"dismiss"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST swipe = %d: %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode swipe result: %v", err)
	}
	if res.State != deck.StateCompleted {
		t.Errorf("state = %s after last swipe, expected completed", res.State)
	}

	// Swiping past the end conflicts.
	rec = doRequest(t, s, http.MethodPost, "/v1/users/u1/deck/swipes", `{"action":"accept"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("swipe on completed deck = %d, expected 409", rec.Code)
	}
}

func TestPutSource_Invalid(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/v1/users/u1/sources/horoscope", `[]`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown source = %d, expected 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/v1/users/u1/sources/reconnect", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed payload = %d, expected 400", rec.Code)
	}

	// An empty body resolves the source with no items.
	rec = doRequest(t, s, http.MethodPut, "/v1/users/u1/sources/reconnect", "")
	if rec.Code != http.StatusOK {
		t.Errorf("empty body = %d, expected 200", rec.Code)
	}
}

func TestPostSwipe_InvalidAction(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/users/u1/deck/swipes", `{"action":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d, expected 400", rec.Code)
	}
}
