// Package auth manages the EraLove client's credential state: the access and
// refresh token pair plus the cached user profile snapshot. State is held in
// memory and persisted to a single JSON file so sessions survive restarts.
package auth

import (
	"encoding/json"
	"time"
)

// Credentials is the persisted credential record. The cached user profile is
// advisory only; the backend remains authoritative.
type Credentials struct {
	// AccessToken is the short-lived bearer credential for API requests.
	AccessToken string `json:"access_token,omitempty"`
	// RefreshToken is the long-lived credential used only to mint new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// User is the last known profile snapshot, stored as camelCased JSON.
	User json.RawMessage `json:"user,omitempty"`
	// LastRefresh is the timestamp of the last token rotation, RFC3339.
	LastRefresh string `json:"last_refresh,omitempty"`
}

// Empty reports whether the record carries no tokens at all.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// touch stamps the rotation time.
func (c *Credentials) touch() {
	c.LastRefresh = time.Now().Format(time.RFC3339)
}
