// Package server exposes the responder over HTTP and WebSocket. It is a thin
// shell: matching and relaying live in pkg/bot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"katana/pkg/bot"
	"katana/pkg/config"
	"katana/pkg/logger"
	"katana/pkg/relay"
)

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Source string          `json:"source"`
	Reply  json.RawMessage `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type Server struct {
	server   *http.Server
	config   *config.Config
	bot      *bot.Bot
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, b *bot.Bot) *Server {
	return &Server{
		config:  cfg,
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(cfg.Gateway.RequestsPerSec), cfg.Gateway.RequestBurst),
		upgrader: websocket.Upgrader{
			// The widget may be served from anywhere; same policy as the
			// CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the route table. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWS)
	return s.withCORS(s.withRateLimit(mux))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Gateway.Host, s.config.Gateway.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	logger.InfoCF("server", "Starting HTTP server", map[string]interface{}{
		"addr": addr,
	})

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("server", "HTTP server failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		logger.InfoC("server", "Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required", "")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty", "")
		return
	}

	reply, err := s.bot.Process(r.Context(), req.Text)
	if err != nil {
		status, kind := classifyRelayError(err)
		logger.WarnCF("server", "Chat dispatch failed", map[string]interface{}{
			"kind":            kind,
			logger.FieldError: err.Error(),
		})
		writeError(w, status, "backend command failed", kind)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Source: reply.Source,
		Reply:  replyPayload(reply),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("server", "WebSocket upgrade failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	defer conn.Close()

	logger.DebugC("server", "WebSocket session opened")

	// One read loop per connection: submissions on a session are handled
	// strictly in order.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			logger.DebugC("server", "WebSocket session closed")
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		reply, err := s.bot.Process(r.Context(), text)
		if err != nil {
			_, kind := classifyRelayError(err)
			payload, _ := json.Marshal(errorResponse{Error: "backend command failed", Kind: kind})
			if writeErr := conn.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
				return
			}
			continue
		}

		payload, _ := json.Marshal(chatResponse{Source: reply.Source, Reply: replyPayload(reply)})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// replyPayload keeps relayed backend JSON intact and wraps rule replies as a
// JSON string.
func replyPayload(reply bot.Reply) json.RawMessage {
	if reply.Raw != nil {
		return reply.Raw
	}
	data, _ := json.Marshal(reply.Text)
	return data
}

func classifyRelayError(err error) (int, string) {
	var parseErr *relay.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway, "parse"
	}
	var netErr *relay.NetworkError
	if errors.As(err, &netErr) {
		return http.StatusBadGateway, "network"
	}
	return http.StatusInternalServerError, ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
