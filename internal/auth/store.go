package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the process-wide credential store. All pipeline components share
// one instance; only login/logout and the refresh coordinator write it.
type Store struct {
	mu    sync.RWMutex
	path  string
	creds Credentials
}

// NewStore creates a credential store backed by the given file path. The file
// is not touched until Load or SetCredentials is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file into memory. A missing file is not an error;
// it simply leaves the store empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("eralove auth: read credentials failed: %w", err)
	}
	var creds Credentials
	if len(data) > 0 {
		if err = json.Unmarshal(data, &creds); err != nil {
			return fmt.Errorf("eralove auth: parse credentials failed: %w", err)
		}
	}
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current credential record.
func (s *Store) Snapshot() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds := s.creds
	if len(s.creds.User) > 0 {
		creds.User = append(json.RawMessage(nil), s.creds.User...)
	}
	return creds
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// SetCredentials replaces the credential record in memory and on disk. The
// write goes through a temp file and rename so a crash cannot leave a half
// written record behind.
func (s *Store) SetCredentials(creds Credentials) error {
	creds.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("eralove auth: create credentials dir failed: %w", err)
	}
	raw, errMarshal := json.Marshal(creds)
	if errMarshal != nil {
		return fmt.Errorf("eralove auth: marshal credentials failed: %w", errMarshal)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("eralove auth: write credentials failed: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("eralove auth: replace credentials failed: %w", err)
	}
	s.creds = creds
	return nil
}

// Clear wipes the credential record from memory and removes the backing file.
// Memory and disk are cleared together; the store never holds a token the
// file has lost or vice versa.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("eralove auth: remove credentials failed: %w", err)
	}
	return nil
}
