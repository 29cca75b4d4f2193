package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/circleup/ideas-engine/pkg/deck"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/circleup/ideas-engine/pkg/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// HTTPServer exposes the engine over REST: source delivery, deck reads,
// and swipe transitions.
type HTTPServer struct {
	server  *http.Server
	port    int
	manager *deck.Manager
	health  func(context.Context) error
}

// NewHTTPServer creates a new HTTP server instance.
func NewHTTPServer(port int, manager *deck.Manager, health func(context.Context) error) *HTTPServer {
	return &HTTPServer{
		port:    port,
		manager: manager,
		health:  health,
	}
}

// Setup configures routes and middleware.
func (s *HTTPServer) Setup() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Put("/sources/{source}", s.handlePutSource)
		r.Get("/deck", s.handleGetDeck)
		r.Post("/deck/swipes", s.handlePostSwipe)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Start begins serving on the configured port.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("http server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down http server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("http server stopped")
	return nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("storage unavailable: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePutSource settles one of the four snapshot sources for a user.
// The body is the source's full collection; an empty array is a normal
// resolution. Responds with the machine's status after re-evaluation, so
// the caller sees the deck appear once the last source lands.
func (s *HTTPServer) handlePutSource(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	m := s.manager.Machine(userID)
	src := m.Sources()
	// An empty body is a normal resolution with no items, not an error.
	dec := json.NewDecoder(r.Body)

	switch source := chi.URLParam(r, "source"); source {
	case "reconnect":
		var v []snapshot.ReconnectSignal
		if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s payload: %v", source, err))
			return
		}
		src.SetReconnect(v)
	case "birthdays":
		var v []snapshot.BirthdaySignal
		if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s payload: %v", source, err))
			return
		}
		src.SetBirthdays(v)
	case "friend_events":
		var v []snapshot.FriendEvent
		if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s payload: %v", source, err))
			return
		}
		src.SetFriendEvents(v)
	case "own_recent":
		var v []snapshot.OwnEvent
		if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s payload: %v", source, err))
			return
		}
		src.SetOwnRecent(v)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown source %q", source))
		return
	}

	writeJSON(w, http.StatusOK, m.Evaluate(r.Context()))
}

func (s *HTTPServer) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	status := s.manager.Machine(userID).Evaluate(r.Context())
	writeJSON(w, http.StatusOK, status)
}

type swipeRequest struct {
	Action learning.Action `json:"action"`
}

func (s *HTTPServer) handlePostSwipe(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid swipe payload: %v", err))
		return
	}
	if req.Action != learning.ActionAccept && req.Action != learning.ActionDismiss {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	res, err := s.manager.Machine(userID).Swipe(r.Context(), req.Action)
	if err != nil {
		if errors.Is(err, deck.ErrNoActiveCard) {
			writeError(w, http.StatusConflict, "no active card to swipe")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request through logrus, matching the rest of
// the service's log stream.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logrus.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
