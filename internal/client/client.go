// Package client implements the authenticated request pipeline for the
// EraLove backend: bearer-token injection, snake_case/camelCase boundary
// conversion, and single-flight token refresh with replay on 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eralove/eralove-go/internal/auth"
	"github.com/eralove/eralove-go/internal/casing"
	"github.com/eralove/eralove-go/internal/logging"
	"github.com/eralove/eralove-go/internal/util"
	"github.com/eralove/eralove-go/sdk/config"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	loginEndpoint    = "/auth/login"
	registerEndpoint = "/auth/register"
	refreshEndpoint  = "/auth/refresh"
)

// Option customises a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the outbound transport, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithAuthExpiredHook installs the callback fired when the session becomes
// unrecoverable. The landing URL from configuration is passed through so the
// embedding application can route the user there.
func WithAuthExpiredHook(hook func(landingURL string)) Option {
	return func(c *Client) { c.onAuthExpired = hook }
}

// Client is the single shared entry point for all backend JSON calls.
type Client struct {
	baseURL       string
	landingURL    string
	requestLog    bool
	httpClient    *http.Client
	tokens        *auth.Store
	coordinator   *refreshCoordinator
	onAuthExpired func(landingURL string)
}

// New constructs the pipeline over the given credential store. Base address
// and timeout come from configuration and are fixed for the client's lifetime.
func New(cfg *config.Config, tokens *auth.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		landingURL: cfg.LandingURL,
		requestLog: cfg.RequestLog,
		httpClient: util.NewHTTPClient(cfg.ProxyURL, cfg.RequestTimeout()),
		tokens:     tokens,
	}
	c.coordinator = newRefreshCoordinator(c.performRefresh)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes a JSON request against the backend. Plain-object bodies are
// snake_cased on the way out and every JSON body, success or error, comes
// back camelCased. A 401 on a non-auth endpoint triggers the refresh
// coordinator and exactly one replay with the rotated token.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	ctx, _ = logging.EnsureRequestID(ctx)

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	status, respBody, errSend := c.send(ctx, method, path, payload, c.tokens.AccessToken())
	if errSend != nil {
		return nil, errSend
	}
	if status == http.StatusUnauthorized && !isAuthEndpoint(path) {
		return c.resolveUnauthorized(ctx, method, path, payload)
	}
	return c.finish(status, respBody)
}

// Get issues a GET through the pipeline.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST through the pipeline.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT through the pipeline.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE through the pipeline.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// ExpireSession clears the credential store and fires the auth-expired hook.
// The sdk layer uses it when an explicit logout must drop local state.
func (c *Client) ExpireSession() {
	c.expireSession()
}

// resolveUnauthorized runs the refresh protocol for a 401 response and
// replays the original request exactly once. A replay that 401s again is not
// retried a second time; it settles as a plain API error.
func (c *Client) resolveUnauthorized(ctx context.Context, method, path string, payload []byte) (json.RawMessage, error) {
	if c.tokens.RefreshToken() == "" {
		c.expireSession()
		return nil, &AuthExpiredError{}
	}

	token, errRefresh := c.coordinator.Refresh(ctx)
	if errRefresh != nil {
		if _, ok := errRefresh.(*AuthExpiredError); ok {
			return nil, errRefresh
		}
		// A caller that gave up waiting has only cancelled its own request;
		// the session is intact and must not be reported as expired.
		if errors.Is(errRefresh, context.Canceled) || errors.Is(errRefresh, context.DeadlineExceeded) {
			return nil, errRefresh
		}
		return nil, &AuthExpiredError{Cause: errRefresh}
	}

	status, respBody, errSend := c.send(ctx, method, path, payload, token)
	if errSend != nil {
		return nil, errSend
	}
	return c.finish(status, respBody)
}

// finish applies the response-phase transform and maps non-2xx to APIError.
func (c *Client) finish(status int, raw []byte) (json.RawMessage, error) {
	cameled := casing.CamelBytes(raw)
	if status >= 200 && status < 300 {
		return cameled, nil
	}
	return nil, &APIError{
		StatusCode: status,
		Message:    extractMessage(cameled),
		Body:       cameled,
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, errReq := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if errReq != nil {
		return 0, nil, fmt.Errorf("eralove client: create request failed: %w", errReq)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	if c.requestLog {
		log.WithFields(log.Fields{"request_id": logging.GetRequestID(ctx), "method": method, "path": path}).
			Debugf("request: %s", redactTokens(payload))
	}

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return 0, nil, fmt.Errorf("eralove client: %s %s failed: %w", method, path, errDo)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return 0, nil, fmt.Errorf("eralove client: read response body failed: %w", errRead)
	}

	if c.requestLog {
		log.WithFields(log.Fields{"request_id": logging.GetRequestID(ctx), "method": method, "path": path, "status": resp.StatusCode}).
			Debugf("response: %s", redactTokens(respBody))
	}
	return resp.StatusCode, respBody, nil
}

// performRefresh executes the refresh network call under the coordinator's
// single-flight guarantee. On success the rotated tokens are written to the
// credential store before returning; on any failure the session is expired.
func (c *Client) performRefresh(ctx context.Context) (string, error) {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.expireSession()
		return "", &AuthExpiredError{}
	}

	payload, errMarshal := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if errMarshal != nil {
		return "", fmt.Errorf("eralove client: marshal refresh body failed: %w", errMarshal)
	}

	status, respBody, errSend := c.send(ctx, http.MethodPost, refreshEndpoint, payload, "")
	if errSend != nil {
		c.expireSession()
		return "", &AuthExpiredError{Cause: errSend}
	}
	if status != http.StatusOK {
		c.expireSession()
		errRefresh := fmt.Errorf("token refresh failed: status %d", status)
		if msg := extractMessage(respBody); msg != "" {
			errRefresh = fmt.Errorf("token refresh failed: status %d: %s", status, msg)
		}
		return "", &AuthExpiredError{Cause: errRefresh}
	}

	access := gjson.GetBytes(respBody, "access_token").String()
	if access == "" {
		c.expireSession()
		return "", &AuthExpiredError{Cause: fmt.Errorf("no access_token in refresh response")}
	}
	rotated := gjson.GetBytes(respBody, "refresh_token").String()
	if rotated == "" {
		rotated = refreshToken
	}
	creds := auth.Credentials{AccessToken: access, RefreshToken: rotated}
	if user := gjson.GetBytes(respBody, "user"); user.IsObject() {
		creds.User = casing.CamelBytes([]byte(user.Raw))
	}
	if errSet := c.tokens.SetCredentials(creds); errSet != nil {
		return "", errSet
	}
	log.Debug("access token refreshed")
	return access, nil
}

func (c *Client) expireSession() {
	if err := c.tokens.Clear(); err != nil {
		log.Errorf("failed to clear credential store: %v", err)
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired(c.landingURL)
		return
	}
	if c.landingURL != "" {
		log.Warnf("session expired, return to %s", c.landingURL)
	}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("eralove client: marshal request body failed: %w", err)
	}
	return casing.SnakeBytes(raw), nil
}

// isAuthEndpoint reports whether a 401 from this path must never trigger the
// refresh protocol.
func isAuthEndpoint(path string) bool {
	switch {
	case strings.HasPrefix(path, loginEndpoint),
		strings.HasPrefix(path, registerEndpoint),
		strings.HasPrefix(path, refreshEndpoint):
		return true
	}
	return false
}

func extractMessage(body []byte) string {
	for _, field := range []string{"message", "error", "detail"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

var secretFields = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"accessToken":   true,
	"refreshToken":  true,
	"password":      true,
}

// redactTokens blanks credential fields before a payload reaches the log,
// at any object nesting depth.
func redactTokens(payload []byte) []byte {
	var paths []string
	collectSecretPaths(gjson.ParseBytes(payload), "", &paths)
	for _, path := range paths {
		if out, errSet := sjson.SetBytes(payload, path, "[redacted]"); errSet == nil {
			payload = out
		}
	}
	return payload
}

func collectSecretPaths(value gjson.Result, prefix string, paths *[]string) {
	if !value.IsObject() {
		return
	}
	value.ForEach(func(key, child gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		if secretFields[key.String()] {
			*paths = append(*paths, path)
		} else if child.IsObject() {
			collectSecretPaths(child, path, paths)
		}
		return true
	})
}
