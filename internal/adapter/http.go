package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/utils"
	"github.com/MKhiriev/go-task-sync/models"
)

const (
	pushPath    = "/sync/push"
	pullPath    = "/sync/pull"
	refreshPath = "/auth/refresh"
	healthPath  = "/health"

	hashHeader = "HashSHA256"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	hasher *utils.Hasher

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL and request
// timeout, and creates the HMAC hasher used for transport integrity hashes
// when a hash key is configured.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	sa := &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger,
	}
	if appCfg.HashKey != "" {
		sa.hasher = utils.NewHasher(appCfg.HashKey)
	}

	return sa, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidServerURL)
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidServerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: address must include host and scheme", ErrInvalidServerURL)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.token
}

// SetServerURL implements [ServerAdapter].
func (h *httpServerAdapter) SetServerURL(raw string) error {
	baseURL, err := normalizeBaseURL(raw)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.client.SetBaseURL(baseURL)
	return nil
}

// Push implements [ServerAdapter]. POST /sync/push.
func (h *httpServerAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("encode push request: %w", err)
	}

	r := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if h.hasher != nil {
		r.SetHeader(hashHeader, h.hasher.Hex(body))
	}

	resp, err := r.Post(pushPath)
	if err != nil {
		return models.PushResponse{}, mapTransportError("push", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}

	var out models.PushResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PushResponse{}, fmt.Errorf("%w: push: %w", ErrDecodingResponse, err)
	}

	h.logger.Debug().
		Str("func", "httpServerAdapter.Push").
		Int("operations", len(req.Operations)).
		Int("accepted", len(out.Accepted)).
		Int("rejected", len(out.Rejected)).
		Msg("push completed")

	return out, nil
}

// Pull implements [ServerAdapter]. POST /sync/pull.
func (h *httpServerAdapter) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(pullPath)
	if err != nil {
		return models.PullResponse{}, mapTransportError("pull", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var out models.PullResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: pull: %w", ErrDecodingResponse, err)
	}

	return out, nil
}

// RefreshToken implements [ServerAdapter]. POST /auth/refresh with the
// current bearer token. The adapter does not store the new token itself;
// the caller persists it and calls SetToken.
func (h *httpServerAdapter) RefreshToken(ctx context.Context) (models.TokenRefreshResponse, error) {
	resp, err := h.authedRequest(ctx).Post(refreshPath)
	if err != nil {
		return models.TokenRefreshResponse{}, mapTransportError("refresh", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenRefreshResponse{}, err
	}

	var out models.TokenRefreshResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.TokenRefreshResponse{}, fmt.Errorf("%w: refresh: %w", ErrDecodingResponse, err)
	}
	if out.Token == "" {
		return models.TokenRefreshResponse{}, fmt.Errorf("%w: refresh: empty token", ErrDecodingResponse)
	}

	return out, nil
}

// Ping implements [ServerAdapter]. GET /health.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return mapTransportError("ping", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
