package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/application"
	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/usecase"
)

type stubStats struct{}

func (stubStats) Snapshot(ctx context.Context) (*usecase.Stats, error) {
	return &usecase.Stats{TotalUsers: 12, Buyers: 3}, nil
}

type stubUsers struct {
	blocked  map[int64]bool
	searched []string
}

func (s *stubUsers) RegisterOrTouch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	return nil, nil
}
func (s *stubUsers) Find(ctx context.Context, tgID int64) (*model.User, error) { return nil, nil }
func (s *stubUsers) MarkBlocked(ctx context.Context, tgID int64, blocked bool) error {
	if s.blocked == nil {
		s.blocked = make(map[int64]bool)
	}
	s.blocked[tgID] = blocked
	return nil
}
func (s *stubUsers) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return []*model.User{}, nil
}
func (s *stubUsers) Search(ctx context.Context, query string) ([]*model.User, error) {
	s.searched = append(s.searched, query)
	return []*model.User{{TelegramID: 42, Username: "alice"}}, nil
}

type stubWebhook struct{ got []tgbotapi.Update }

func (s *stubWebhook) HandleWebhookUpdate(ctx context.Context, update tgbotapi.Update) error {
	s.got = append(s.got, update)
	return nil
}

func newTestServer(mode, apiKey string, webhook WebhookHandler) (*Server, *stubUsers) {
	cfg := &config.Config{}
	cfg.Bot.Mode = mode
	cfg.Bot.Port = 0
	cfg.Admin.APIKey = apiKey
	users := &stubUsers{}
	facade := &application.BotFacade{Stats: stubStats{}, Users: users}
	log := zerolog.New(io.Discard)
	return NewServer(cfg, facade, webhook, &log), users
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer("polling", "", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	srv, _ := newTestServer("polling", "", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}

func TestWebhookOnlyRegisteredInWebhookMode(t *testing.T) {
	body := `{"update_id": 7, "message": {"message_id": 1, "text": "hi"}}`

	wh := &stubWebhook{}
	srv, _ := newTestServer("webhook", "", wh)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}
	if len(wh.got) != 1 || wh.got[0].UpdateID != 7 {
		t.Fatalf("update not forwarded: %+v", wh.got)
	}

	srv, _ = newTestServer("polling", "", wh)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body)))
	if rec.Code == http.StatusOK {
		t.Fatal("webhook route should not exist in polling mode")
	}
}

func TestAdminAPIAuth(t *testing.T) {
	srv, _ := newTestServer("polling", "sekret", nil)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good token: status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "12") {
		t.Errorf("stats body = %s", rec.Body.String())
	}
}

func TestUserBlockEndpoints(t *testing.T) {
	srv, users := newTestServer("polling", "sekret", nil)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/block", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("block status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !users.blocked[42] {
		t.Error("block flag not set")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/42/unblock", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unblock status = %d", rec.Code)
	}
	if users.blocked[42] {
		t.Error("block flag not cleared")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/not-a-number/block", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestUserSearchQuery(t *testing.T) {
	srv, users := newTestServer("polling", "sekret", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?q=ali", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	if len(users.searched) != 1 || users.searched[0] != "ali" {
		t.Errorf("search queries = %v", users.searched)
	}
	if !strings.Contains(rec.Body.String(), "alice") {
		t.Errorf("search body = %s", rec.Body.String())
	}
}

func TestAdminAPIDisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer("polling", "", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer anything")
	srv.Router().ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatal("admin API should be disabled when no key is configured")
	}
}
