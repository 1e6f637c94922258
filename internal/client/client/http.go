package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/client/config"
	"github.com/dmitrijs2005/evently-client/internal/client/tokens"
	"github.com/dmitrijs2005/evently-client/internal/common"
	"github.com/dmitrijs2005/evently-client/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const maxBodySize = 4 << 20

type HTTPClient struct {
	baseURL             string
	statusURL           string
	connectivityURL     string
	statusTimeout       time.Duration
	connectivityTimeout time.Duration

	http   *http.Client
	probe  *http.Client
	jar    CookieJar
	tokens *tokens.Store
	log    logging.Logger

	refreshGroup singleflight.Group
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend described by cfg. A nil jar
// gets an in-memory one; pass a FileJar to keep the refresh cookie across
// runs.
func NewHTTPClient(cfg *config.Config, store *tokens.Store, jar CookieJar, log logging.Logger) (*HTTPClient, error) {
	if jar == nil {
		jar = NewMemoryJar()
	}

	return &HTTPClient{
		baseURL:             strings.TrimRight(cfg.APIBaseURL, "/"),
		statusURL:           cfg.ServerStatusURL,
		connectivityURL:     cfg.ConnectivityProbeURL,
		statusTimeout:       cfg.StatusProbeTimeout,
		connectivityTimeout: cfg.ConnectivityProbeTimeout,
		http:                &http.Client{Jar: jar},
		probe:               &http.Client{},
		jar:                 jar,
		tokens:              store,
		log:                 log.With("component", "http-client"),
	}, nil
}

// Do sends an authenticated request to baseURL+path. body, when not nil, is
// sent as JSON.
//
// An expired token is refreshed first; if that fails the stored session is
// cleared and common.ErrSessionExpired is returned without sending. A 401
// answer to a request that carried a token gets one refresh and exactly one
// retry. Any other non-2xx answer is returned as *BackendError alongside
// the parsed response.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if token != "" {
		expired, err := c.tokens.IsTokenExpired(ctx)
		if err != nil {
			return nil, err
		}
		if expired {
			if token, err = c.refreshOrExpire(ctx, token); err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.send(ctx, c.http, method, c.baseURL+path, token, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		c.log.Info(ctx, "request unauthorized, refreshing token", "path", path)
		if token, err = c.refreshOrExpire(ctx, token); err != nil {
			return nil, err
		}
		if resp, err = c.send(ctx, c.http, method, c.baseURL+path, token, payload); err != nil {
			return nil, err
		}
	}

	if !isSuccess(resp.StatusCode) {
		msg := resp.Message
		if msg == "" {
			msg = MsgRequestFailed
		}
		return resp, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	return resp, nil
}

// refreshOrExpire refreshes on behalf of a caller that observed token and
// returns the new token. A failed refresh clears the session.
func (c *HTTPClient) refreshOrExpire(ctx context.Context, observed string) (string, error) {
	if !c.refresh(ctx, observed) {
		if err := c.tokens.ClearAll(ctx); err != nil {
			c.log.Error(ctx, "clear session after failed refresh", "error", err)
		}
		return "", common.ErrSessionExpired
	}
	return c.tokens.AccessToken(ctx)
}

// Refresh obtains a new access token using the backend's refresh cookie and
// stores it with the current persistence mode. Concurrent calls share one
// network round trip and its result.
func (c *HTTPClient) Refresh(ctx context.Context) bool {
	observed, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return false
	}
	return c.refresh(ctx, observed)
}

func (c *HTTPClient) refresh(ctx context.Context, observed string) bool {
	v, _, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		// another flight may have replaced the token since the caller read it
		if c.replacedSince(ctx, observed) {
			return true, nil
		}
		// joiners must not lose the result because the leader's ctx ended
		return c.performRefresh(context.WithoutCancel(ctx)), nil
	})
	if shared {
		c.log.Debug(ctx, "joined in-flight token refresh")
	}
	return v.(bool)
}

func (c *HTTPClient) replacedSince(ctx context.Context, observed string) bool {
	current, err := c.tokens.AccessToken(ctx)
	if err != nil || current == "" || current == observed {
		return false
	}
	expired, err := c.tokens.IsTokenExpired(ctx)
	return err == nil && !expired
}

func (c *HTTPClient) performRefresh(ctx context.Context) bool {
	resp, err := c.send(ctx, c.http, http.MethodPost, c.baseURL+common.RefreshTokenPath, "", nil)
	if err != nil {
		c.log.Warn(ctx, "token refresh failed", "error", err)
		return false
	}
	if !isSuccess(resp.StatusCode) {
		c.log.Info(ctx, "token refresh rejected", "status", resp.StatusCode, "message", resp.Message)
		return false
	}

	token := tokenFrom(resp.Body)
	if token == "" {
		c.log.Warn(ctx, "token refresh answered without a token")
		return false
	}
	if err := c.tokens.ReplaceAccessToken(ctx, token); err != nil {
		if errors.Is(err, tokens.ErrNoSession) {
			c.log.Info(ctx, "session ended during token refresh, discarding new token")
			return false
		}
		c.log.Error(ctx, "store refreshed token", "error", err)
		return false
	}

	c.log.Info(ctx, "token refreshed")
	return true
}

// Login exchanges credentials for an access token. The backend also sets its
// refresh cookie, which lands in the jar.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := encodeBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, c.http, http.MethodPost, c.baseURL+common.LoginPath, "", payload)
	if err != nil {
		return "", err
	}

	token := tokenFrom(resp.Body)
	if !isSuccess(resp.StatusCode) || token == "" {
		return "", &BackendError{StatusCode: resp.StatusCode, Message: resp.Message, Kind: common.ErrInvalidCredentials}
	}
	return token, nil
}

// Logout asks the backend to drop the refresh state bound to token.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	resp, err := c.send(ctx, c.http, http.MethodPost, c.baseURL+common.LogoutPath, token, nil)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		return &BackendError{StatusCode: resp.StatusCode, Message: resp.Message}
	}
	return nil
}

// HasRefreshCookie reports whether the jar holds a cookie the backend's
// refresh endpoint would receive.
func (c *HTTPClient) HasRefreshCookie() bool {
	u, err := neturl.Parse(c.baseURL + common.RefreshTokenPath)
	if err != nil {
		return false
	}
	return len(c.jar.Cookies(u)) > 0
}

// ForgetCookies empties the jar, on disk too.
func (c *HTTPClient) ForgetCookies() error {
	return c.jar.Clear()
}

// Ping probes the server status URL; any 2xx within the status timeout
// means reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	resp, err := c.send(ctx, c.probe, http.MethodGet, c.statusURL, "", nil)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// CheckConnectivity probes a well-known public URL. Any answer at all means
// the internet is reachable.
func (c *HTTPClient) CheckConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectivityTimeout)
	defer cancel()

	if _, err := c.send(ctx, c.probe, http.MethodHead, c.connectivityURL, "", nil); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetworkDegraded, err)
	}
	return nil
}

// Describe classifies a network failure into a user-facing message and the
// matching sentinel. It only refines the wording; callers treat every kind
// as a failure.
func (c *HTTPClient) Describe(ctx context.Context, err error) (string, error) {
	switch {
	case isTimeout(err):
		return MsgSlowConnection, common.ErrTimeout
	case errors.Is(err, common.ErrUnavailable):
		if c.CheckConnectivity(ctx) != nil {
			return MsgNoInternet, common.ErrNetworkDegraded
		}
		return MsgServerTrouble, common.ErrUnavailable
	default:
		return MsgServerUnreachable, common.ErrUnavailable
	}
}

func (c *HTTPClient) send(ctx context.Context, hc *http.Client, method, url, token string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "url", url, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", common.ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done",
		"method", method, "url", url, "request_id", requestID,
		"status", res.StatusCode, "elapsed", time.Since(start))

	return parseResponse(res.StatusCode, raw), nil
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseResponse(status int, raw []byte) *Response {
	resp := &Response{StatusCode: status, Body: raw, Data: raw}

	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		resp.Message = env.Message
		if len(env.Data) > 0 && string(env.Data) != "null" {
			resp.Data = env.Data
		}
	}
	return resp
}

var tokenFields = []string{"accessToken", "access_token", "token"}

// tokenFrom finds the access token in a login or refresh answer, either at
// the top level or inside the "data" envelope.
func tokenFrom(raw []byte) string {
	var top map[string]json.RawMessage
	if json.Unmarshal(raw, &top) != nil {
		return ""
	}
	if t := stringField(top); t != "" {
		return t
	}

	var data map[string]json.RawMessage
	if json.Unmarshal(top["data"], &data) != nil {
		return ""
	}
	return stringField(data)
}

func stringField(m map[string]json.RawMessage) string {
	for _, name := range tokenFields {
		var s string
		if json.Unmarshal(m[name], &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
