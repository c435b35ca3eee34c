package eralove

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/eralove/eralove-go/sdk/config"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		BaseURL:               server.URL,
		RequestTimeoutSeconds: 5,
		FilesPathPrefix:       config.DefaultFilesPathPrefix,
		CredentialsFile:       filepath.Join(t.TempDir(), "credentials.json"),
	}
	c, err := New(cfg, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestLoginPersistsSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if gjson.GetBytes(body, "email").String() != "ada@eralove.example" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{
			"user":{"id":"u1","email":"ada@eralove.example","display_name":"Ada","anniversary_date":"2020-02-14"},
			"access_token":"t1","refresh_token":"r1","token_type":"bearer","expires_in":900,"message":"welcome back"
		}`))
	})

	c := newTestClient(t, mux)
	sess, err := c.Login(context.Background(), "ada@eralove.example", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.AccessToken != "t1" || sess.RefreshToken != "r1" {
		t.Errorf("session tokens = %q/%q", sess.AccessToken, sess.RefreshToken)
	}
	if sess.User == nil || sess.User.AnniversaryDate != "2020-02-14" {
		t.Errorf("session user not camel-decoded: %+v", sess.User)
	}
	if !c.LoggedIn() {
		t.Error("LoggedIn = false after login")
	}
	if user, ok := c.CurrentUser(); !ok || user.DisplayName != "Ada" {
		t.Errorf("CurrentUser = %+v, %v", user, ok)
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	t.Parallel()

	var sawRefreshToken string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t1","refresh_token":"r1"}`))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		// The pipeline snake_cases the body on the way out.
		sawRefreshToken = gjson.GetBytes(body, "refresh_token").String()
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "a@b.c", "x"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sawRefreshToken != "r1" {
		t.Errorf("logout body refresh_token = %q, want r1", sawRefreshToken)
	}
	if c.LoggedIn() {
		t.Error("still logged in after Logout")
	}
}

func TestProfileDecodesCamelCase(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.c","display_name":"Ada","avatar_url":"/files/avatar-1"}`))
	})

	c := newTestClient(t, mux)
	user, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.DisplayName != "Ada" || user.AvatarURL != "/files/avatar-1" {
		t.Errorf("profile = %+v", user)
	}
}

func TestEventsRoundTrip(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"e1","title":"dinner","event_date":"2026-03-01"}]`))
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			if !gjson.GetBytes(body, "event_date").Exists() {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"id":"e2","title":"trip","event_date":"2026-04-01"}`))
		}
	})

	c := newTestClient(t, mux)
	events, err := c.Events(context.Background())
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].EventDate != "2026-03-01" {
		t.Errorf("events = %+v", events)
	}

	created, err := c.CreateEvent(context.Background(), CreateEventParams{Title: "trip", EventDate: "2026-04-01"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.ID != "e2" {
		t.Errorf("created = %+v", created)
	}
}
