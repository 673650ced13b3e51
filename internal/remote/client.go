// Package remote talks to the collaborators jobdeck does not implement: authentication,
// user administration, job search and location lookup. Every request goes through
// Session.do, which classifies failures and tells the Notifier exactly once per failure.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"jobdeck/internal/providers"
	"jobdeck/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

const maxResponseSize = 4 << 20 // 4 MB

var ErrNotConfigured = errors.New("upstream base URL is not configured")

// Credentials is the per-profile session a Session authenticates with.
type Credentials interface {
	Token() string
	ClearToken() error
	UserID() string
}

// Client holds what every profile shares: the HTTP client, the outbound limiter and the
// notification sink.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	notifier   Notifier
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, notifier Notifier, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	limit := rate.Inf
	if conf.Upstream.RateLimit > 0 {
		limit = rate.Limit(conf.Upstream.RateLimit)
	}
	burst := max(conf.Upstream.Burst, 1)

	return &Client{
		baseURL:    strings.TrimRight(conf.Upstream.BaseURL, "/"),
		httpClient: &http.Client{Timeout: conf.Upstream.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// Session binds the client to one profile's credentials.
func (c *Client) Session(creds Credentials) *Session {
	return &Session{
		client:       c,
		creds:        creds,
		expired:      atomic.NewBool(false),
		expiredToken: atomic.NewString(""),
	}
}

type Session struct {
	client *Client
	creds  Credentials

	// expired stays set from the first 401 until a different token is sent.
	expired      *atomic.Bool
	expiredToken *atomic.String
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Meta    json.RawMessage `json:"meta"`
}

func (s *Session) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	c := s.client
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for upstream limiter: %w", err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := s.creds.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		if token != s.expiredToken.Load() {
			s.expired.Store(false)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, s.intercept(method, path, 0, "", err, token)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, s.intercept(method, path, 0, "", err, token)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, s.intercept(method, path, resp.StatusCode, env.Error, nil, token)
	}
	if decodeErr != nil || !env.Success {
		return nil, s.intercept(method, path, resp.StatusCode, env.Error, nil, token)
	}
	return &env, nil
}

// intercept is the single place upstream failures are classified, counted and announced.
func (s *Session) intercept(method, path string, status int, serverMsg string, netErr error, sentToken string) *APIError {
	c := s.client
	apiErr := classify(status, serverMsg, netErr)
	c.metrics.IncUpstreamErrors(string(apiErr.Kind))
	if netErr != nil {
		c.logger.Errorf(providers.TypeApp, "%s %s failed: %s", method, path, netErr)
	} else {
		c.logger.Debugf(providers.TypeApp, "%s %s returned %d: %s", method, path, status, apiErr.Message)
	}

	if apiErr.Kind == KindUnauthorized && sentToken != "" {
		apiErr.Message = msgSessionExpired
		if err := s.creds.ClearToken(); err != nil {
			c.logger.Errorf(providers.TypeApp, "Unable to clear expired token: %s", err)
		}
		s.expiredToken.Store(sentToken)
		if !s.expired.CompareAndSwap(false, true) {
			return apiErr
		}
	}

	c.notifier.Notify(apiErr.Kind, apiErr.Message)
	return apiErr
}

func classify(status int, serverMsg string, netErr error) *APIError {
	if netErr != nil {
		var ne net.Error
		switch {
		case errors.Is(netErr, syscall.ECONNREFUSED):
			return &APIError{Kind: KindNetwork, Message: msgRefused}
		case errors.As(netErr, &ne):
			return &APIError{Kind: KindNetwork, Message: msgNetwork}
		default:
			return &APIError{Kind: KindNetwork, Message: msgNetworkFailed}
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, Status: status, Message: orDefault(serverMsg, msgSessionExpired)}
	case status == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, Status: status, Message: msgForbidden}
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Status: status, Message: msgRateLimited}
	case status >= http.StatusInternalServerError:
		return &APIError{Kind: KindServer, Status: status, Message: msgServer}
	default:
		return &APIError{Kind: KindGeneric, Status: status, Message: orDefault(serverMsg, msgUnexpected)}
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// decodeData unmarshals the envelope payload into dst. A malformed payload counts as a
// generic failure.
func (s *Session) decodeData(env *envelope, method, path string, dst interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		s.client.logger.Errorf(providers.TypeApp, "Unexpected payload from %s: %s", path, err)
		return s.intercept(method, path, http.StatusOK, "", nil, "")
	}
	return nil
}
