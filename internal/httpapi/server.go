// Package httpapi serves the arrivals board as JSON and pushes new frames
// over a websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/unklstewy/arrivals-board/internal/board"
	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

const (
	// writeWait bounds a single websocket write
	writeWait = 10 * time.Second

	// subscriberBuffer is the per-connection event backlog
	subscriberBuffer = 8
)

// Options wires the server to the live board.
type Options struct {
	Board    *board.Board
	Airports *airports.Loader

	// Destination and Policy are reported by /api/v1/status
	Destination string
	Policy      string

	// RowsPerPage sizes the two boards returned by /api/v1/board
	RowsPerPage int

	// Health probes the airport store for /api/v1/status; nil skips it
	Health func(ctx context.Context) error

	Logger *slog.Logger
}

// Server holds the HTTP router and its dependencies
type Server struct {
	router   *chi.Mux
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		logger: logger.With(slog.String("component", "httpapi")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))

			r.Get("/arrivals", s.handleGetArrivals)
			r.Get("/board", s.handleGetBoard)
			r.Get("/status", s.handleGetStatus)
		})

		// The websocket must see the raw connection, so no compression here.
		r.Get("/ws", s.handleWebSocket)
	})
}

// arrivalView is a row plus optional localized display text.
type arrivalView struct {
	arrivals.Row
	DepartureName string `json:"departure_name,omitempty"`
	StatusText    string `json:"status_text,omitempty"`
}

// handleGetArrivals returns the current rows
func (s *Server) handleGetArrivals(w http.ResponseWriter, r *http.Request) {
	loc, localized, err := parseLocale(r.URL.Query().Get("locale"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame := s.opts.Board.Frame()
	display := board.DisplayState{Pinned: true, PinnedLocale: loc}

	rows := make([]arrivalView, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		v := arrivalView{Row: row}
		if localized {
			v.DepartureName = display.DepartureName(row)
			v.StatusText = display.StatusText(row)
		}
		rows = append(rows, v)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"destination": s.opts.Destination,
		"updated_at":  frame.UpdatedAt,
		"cycle":       frame.Cycle,
		"count":       len(rows),
		"rows":        rows,
	})
}

// handleGetBoard returns the board exactly as a renderer would paint it
// for the current display tick
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	loc, pinned, err := parseLocale(r.URL.Query().Get("locale"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame := s.opts.Board.Frame()
	display := board.DisplayState{Tick: s.opts.Board.Tick(), Pinned: pinned, PinnedLocale: loc}

	var pages [][][5]string
	for _, page := range board.Pages(frame.Rows, s.opts.RowsPerPage) {
		cells := make([][5]string, 0, len(page))
		for _, row := range page {
			cells = append(cells, display.Cells(row))
		}
		pages = append(pages, cells)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tick":       display.Tick,
		"locale":     localeCode(display.Locale()),
		"headers":    display.Headers(),
		"boards":     pages,
		"updated_at": frame.UpdatedAt,
	})
}

// handleGetStatus reports poller health
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	frame := s.opts.Board.Frame()

	airportCount := 0
	if s.opts.Airports != nil {
		airportCount = s.opts.Airports.Directory().Len()
	}

	status := map[string]interface{}{
		"destination":     s.opts.Destination,
		"policy":          s.opts.Policy,
		"cycle":           frame.Cycle,
		"updated_at":      frame.UpdatedAt,
		"feed_updated_at": frame.FeedUpdatedAt,
		"error":           frame.Err,
		"rows":            len(frame.Rows),
		"airports":        airportCount,
		"tick":            s.opts.Board.Tick(),
	}

	code := http.StatusOK
	if s.opts.Health != nil {
		status["database"] = "ok"
		if err := s.opts.Health(r.Context()); err != nil {
			s.logger.Warn("airport store unhealthy", slog.Any("err", err))
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, status)
}

// handleWebSocket pushes every published frame to the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	events, unsubscribe := s.opts.Board.Subscribe(subscriberBuffer)
	defer unsubscribe()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeFrame(conn, s.opts.Board.Frame()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind != board.EventFrame {
				continue
			}
			if err := s.writeFrame(conn, ev.Frame); err != nil {
				s.logger.Debug("websocket write failed", slog.Any("err", err))
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, f *board.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

// parseLocale maps ?locale= to a locale. ok is false when no locale was given.
func parseLocale(v string) (loc arrivals.Locale, ok bool, err error) {
	switch strings.ToLower(v) {
	case "":
		return arrivals.LocaleKorean, false, nil
	case "ko", "kr":
		return arrivals.LocaleKorean, true, nil
	case "en":
		return arrivals.LocaleEnglish, true, nil
	default:
		return 0, false, fmt.Errorf("unknown locale %q", v)
	}
}

func localeCode(loc arrivals.Locale) string {
	if loc == arrivals.LocaleEnglish {
		return "en"
	}
	return "ko"
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
