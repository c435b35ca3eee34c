// Package eralove is the public client for the EraLove backend. It wires the
// credential store, the authenticated JSON pipeline, and the media fetcher
// together behind typed operations, so embedding applications never deal with
// tokens, refresh, or wire casing directly.
package eralove

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eralove/eralove-go/internal/auth"
	"github.com/eralove/eralove-go/internal/client"
	"github.com/eralove/eralove-go/internal/media"
	"github.com/eralove/eralove-go/sdk/config"
	log "github.com/sirupsen/logrus"
)

// Option customises a Client at construction time.
type Option func(*options)

type options struct {
	httpClient    *http.Client
	onAuthExpired func(landingURL string)
}

// WithHTTPClient replaces the outbound transport for both the JSON pipeline
// and the media fetcher, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithAuthExpiredHook installs the callback fired when the session becomes
// unrecoverable and local credentials have been cleared.
func WithAuthExpiredHook(hook func(landingURL string)) Option {
	return func(o *options) { o.onAuthExpired = hook }
}

// Client is the EraLove SDK entry point. One instance shares one credential
// store across the JSON pipeline and the media fetcher.
type Client struct {
	cfg    *config.Config
	tokens *auth.Store
	api    *client.Client
	media  *media.Fetcher
}

// New constructs a client from configuration and loads any persisted session.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("eralove: configuration is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens := auth.NewStore(cfg.CredentialsFile)
	if err := tokens.Load(); err != nil {
		return nil, err
	}

	var apiOpts []client.Option
	var mediaOpts []media.Option
	if o.httpClient != nil {
		apiOpts = append(apiOpts, client.WithHTTPClient(o.httpClient))
		mediaOpts = append(mediaOpts, media.WithHTTPClient(o.httpClient))
	}
	if o.onAuthExpired != nil {
		apiOpts = append(apiOpts, client.WithAuthExpiredHook(o.onAuthExpired))
	}

	return &Client{
		cfg:    cfg,
		tokens: tokens,
		api:    client.New(cfg, tokens, apiOpts...),
		media:  media.NewFetcher(cfg, tokens, mediaOpts...),
	}, nil
}

// StartCredentialWatcher starts a background watcher that reloads the session
// when another process modifies the credentials file. It returns immediately;
// the watcher stops when ctx is cancelled.
func (c *Client) StartCredentialWatcher(ctx context.Context) error {
	watcher, err := auth.NewWatcher(c.tokens)
	if err != nil {
		return err
	}
	return watcher.Start(ctx)
}

// LoggedIn reports whether a session is present locally. It says nothing
// about whether the backend still honors it.
func (c *Client) LoggedIn() bool {
	return !c.tokens.Snapshot().Empty()
}

// CurrentUser returns the cached profile snapshot, if any. The snapshot is
// advisory; Profile fetches the authoritative record.
func (c *Client) CurrentUser() (*User, bool) {
	snap := c.tokens.Snapshot()
	if len(snap.User) == 0 {
		return nil, false
	}
	var user User
	if err := json.Unmarshal(snap.User, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Login authenticates with email and password and persists the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	raw, err := c.api.Post(ctx, "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.adoptSession(raw)
}

// Register creates an account and persists the resulting session.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	raw, err := c.api.Post(ctx, "/auth/register", params)
	if err != nil {
		return nil, err
	}
	return c.adoptSession(raw)
}

// Logout revokes the refresh token best-effort and always clears the local
// session, whatever the backend said.
func (c *Client) Logout(ctx context.Context) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken != "" {
		if _, err := c.api.Post(ctx, "/auth/logout", map[string]any{"refreshToken": refreshToken}); err != nil {
			log.Warnf("logout call failed, clearing local session anyway: %v", err)
		}
	}
	return c.tokens.Clear()
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.GetJSON(ctx, "/users/profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, params UpdateProfileParams) (*User, error) {
	raw, err := c.api.Put(ctx, "/users/profile", params)
	if err != nil {
		return nil, err
	}
	var user User
	if errDecode := json.Unmarshal(raw, &user); errDecode != nil {
		return nil, fmt.Errorf("eralove: decode profile failed: %w", errDecode)
	}
	return &user, nil
}

// Events lists the couple's shared calendar entries.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.GetJSON(ctx, "/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent adds a calendar entry.
func (c *Client) CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error) {
	raw, err := c.api.Post(ctx, "/events", params)
	if err != nil {
		return nil, err
	}
	var event Event
	if errDecode := json.Unmarshal(raw, &event); errDecode != nil {
		return nil, fmt.Errorf("eralove: decode event failed: %w", errDecode)
	}
	return &event, nil
}

// DeleteEvent removes a calendar entry.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.api.Delete(ctx, "/events/"+id)
	return err
}

// Photos lists the couple's shared photos.
func (c *Client) Photos(ctx context.Context) ([]Photo, error) {
	var photos []Photo
	if err := c.GetJSON(ctx, "/photos", &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// CreatePhoto registers an uploaded file as a shared photo.
func (c *Client) CreatePhoto(ctx context.Context, params CreatePhotoParams) (*Photo, error) {
	raw, err := c.api.Post(ctx, "/photos", params)
	if err != nil {
		return nil, err
	}
	var photo Photo
	if errDecode := json.Unmarshal(raw, &photo); errDecode != nil {
		return nil, fmt.Errorf("eralove: decode photo failed: %w", errDecode)
	}
	return &photo, nil
}

// DeletePhoto removes a shared photo.
func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	_, err := c.api.Delete(ctx, "/photos/"+id)
	return err
}

// ResolveImage returns the display source for an image URL; protected file
// URLs come back as a revocable blob handle the caller must release.
func (c *Client) ResolveImage(ctx context.Context, rawURL string) (*media.Resource, error) {
	return c.media.Resolve(ctx, rawURL)
}

// GetJSON issues a GET through the pipeline and decodes the camelCased
// response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	raw, err := c.api.Get(ctx, path)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, out)
}

// PostJSON issues a POST through the pipeline.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.api.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, out)
}

// PutJSON issues a PUT through the pipeline.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.api.Put(ctx, path, body)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, out)
}

// DeleteJSON issues a DELETE through the pipeline.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	raw, err := c.api.Delete(ctx, path)
	if err != nil {
		return err
	}
	return decodeInto(path, raw, out)
}

// adoptSession parses a token-bearing response and persists it.
func (c *Client) adoptSession(raw json.RawMessage) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("eralove: decode session failed: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, fmt.Errorf("eralove: no access token in session response")
	}
	creds := auth.Credentials{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
	if sess.User != nil {
		userRaw, errMarshal := json.Marshal(sess.User)
		if errMarshal != nil {
			return nil, fmt.Errorf("eralove: marshal user snapshot failed: %w", errMarshal)
		}
		creds.User = userRaw
	}
	if err := c.tokens.SetCredentials(creds); err != nil {
		return nil, err
	}
	return &sess, nil
}

func decodeInto(path string, raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("eralove: decode %s response failed: %w", path, err)
	}
	return nil
}
