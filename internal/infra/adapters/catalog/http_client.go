package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/infra/metrics"
)

var _ adapter.CourseCatalogAdapter = (*HTTPClient)(nil)

// HTTPClient talks to the course-sales platform's REST API with bearer
// authentication. Every 5xx or transport failure surfaces as
// domain.ErrCatalogUnavailable so callers can degrade instead of retrying
// blindly.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zerolog.Logger
}

func NewHTTPClient(cfg *config.CatalogConfig, logger *zerolog.Logger) (*HTTPClient, error) {
	if cfg == nil {
		return nil, errors.New("catalog config is nil")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/health", nil, nil)
}

type remoteCourseDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PriceMinor  int64  `json:"price_minor"`
	AccessLink  string `json:"access_link"`
	Description string `json:"description"`
}

func (c *HTTPClient) ListCourses(ctx context.Context) ([]adapter.RemoteCourse, error) {
	var out struct {
		Courses []remoteCourseDTO `json:"courses"`
	}
	if err := c.do(ctx, "list_courses", http.MethodGet, "/courses", nil, &out); err != nil {
		return nil, err
	}
	courses := make([]adapter.RemoteCourse, 0, len(out.Courses))
	for _, dto := range out.Courses {
		courses = append(courses, adapter.RemoteCourse{
			ID:          dto.ID,
			Title:       dto.Title,
			PriceMinor:  dto.PriceMinor,
			AccessLink:  dto.AccessLink,
			Description: dto.Description,
		})
	}
	return courses, nil
}

func (c *HTTPClient) GrantAccess(ctx context.Context, courseID string, userID int64) error {
	body := map[string]any{"user_id": userID}
	path := fmt.Sprintf("/courses/%s/grant-access", url.PathEscape(courseID))
	return c.do(ctx, "grant_access", http.MethodPost, path, body, nil)
}

func (c *HTTPClient) RevokeAccess(ctx context.Context, courseID string, userID int64) error {
	body := map[string]any{"user_id": userID}
	path := fmt.Sprintf("/courses/%s/revoke-access", url.PathEscape(courseID))
	return c.do(ctx, "revoke_access", http.MethodPost, path, body, nil)
}

func (c *HTTPClient) CheckAccess(ctx context.Context, courseID string, userID int64) (bool, error) {
	var out struct {
		HasAccess bool `json:"has_access"`
	}
	path := fmt.Sprintf("/courses/%s/access/%d", url.PathEscape(courseID), userID)
	if err := c.do(ctx, "check_access", http.MethodGet, path, nil, &out); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return out.HasAccess, nil
}

func (c *HTTPClient) CreateInvite(ctx context.Context, courseID string, userID int64) (string, error) {
	body := map[string]any{"course_id": courseID, "user_id": userID}
	var out struct {
		Link string `json:"link"`
	}
	if err := c.do(ctx, "create_invite", http.MethodPost, "/invites", body, &out); err != nil {
		return "", err
	}
	if out.Link == "" {
		return "", domain.ErrCatalogUnavailable
	}
	return out.Link, nil
}

// do runs one API call: marshals body, sets auth, decodes into out when
// non-nil, and folds the status code into domain errors.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncCatalogRequest(op, false)
		c.log.Warn().Err(err).Str("op", op).Msg("catalog request failed")
		return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fallthrough to decode
	case resp.StatusCode == http.StatusNotFound:
		metrics.IncCatalogRequest(op, false)
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.IncCatalogRequest(op, false)
		return domain.ErrUnauthorized
	case resp.StatusCode >= 500:
		metrics.IncCatalogRequest(op, false)
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("catalog server error")
		return fmt.Errorf("%w: http %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	default:
		metrics.IncCatalogRequest(op, false)
		return fmt.Errorf("catalog %s: http %d", op, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.IncCatalogRequest(op, false)
			return fmt.Errorf("catalog %s: decode: %w", op, err)
		}
	}
	metrics.IncCatalogRequest(op, true)
	return nil
}
