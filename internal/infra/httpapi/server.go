package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/application"
	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/infra/metrics"
)

// WebhookHandler receives one Telegram update delivered over HTTP.
type WebhookHandler interface {
	HandleWebhookUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Server carries the bot's HTTP surface: health, Prometheus metrics, the
// Telegram webhook receiver, and a bearer-protected admin REST API.
type Server struct {
	cfg     *config.Config
	facade  *application.BotFacade
	webhook WebhookHandler
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(cfg *config.Config, facade *application.BotFacade, webhook WebhookHandler, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		facade:  facade,
		webhook: webhook,
		log:     logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.Bot.Mode == "webhook" && s.webhook != nil {
		r.Post("/webhook/telegram", s.handleTelegramWebhook)
	}

	if s.cfg.Admin.APIKey != "" {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats", s.handleStats)
			r.Get("/users", s.handleUsers)
			r.Post("/users/{id}/block", s.handleUserBlock(true))
			r.Post("/users/{id}/unblock", s.handleUserBlock(false))
			r.Get("/broadcasts", s.handleBroadcasts)
		})
	}
	return r
}

func (s *Server) Start() error {
	metrics.MustRegister()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Bot.Port),
		Handler: s.Router(),
	}
	s.log.Info().Int("port", s.cfg.Bot.Port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update payload", http.StatusBadRequest)
		return
	}
	if err := s.webhook.HandleWebhookUpdate(r.Context(), update); err != nil {
		s.log.Error().Err(err).Msg("webhook update handling failed")
	}
	// Telegram retries on non-2xx; handler errors are ours to log, not
	// Telegram's to redeliver.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if parts[1] != s.cfg.Admin.APIKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.facade.Stats.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats snapshot failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		users, err := s.facade.Users.Search(r.Context(), q)
		if err != nil {
			s.log.Error().Err(err).Str("query", q).Msg("user search failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users, "query": q})
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	users, err := s.facade.Users.List(r.Context(), offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("user listing failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "offset": offset})
}

func (s *Server) handleUserBlock(blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tgID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad user id", http.StatusBadRequest)
			return
		}
		if err := s.facade.Users.MarkBlocked(r.Context(), tgID, blocked); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			s.log.Error().Err(err).Int64("tg_id", tgID).Msg("block flag update failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tg_id": tgID, "blocked": blocked})
	}
}

func (s *Server) handleBroadcasts(w http.ResponseWriter, r *http.Request) {
	items, err := s.facade.Broadcasts.ListScheduled(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled listing failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduled": items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
