// Package session persists the client's login token and theme between runs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout.
type file struct {
	Token     string    `yaml:"token,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
	Email     string    `yaml:"email,omitempty"`
	Theme     string    `yaml:"theme,omitempty"`
}

// Session is a YAML-backed session. Every setter writes through to disk.
// It is safe for concurrent use.
type Session struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	data file
}

// Load reads the session at path. A missing file yields an empty session.
func Load(path string) (*Session, error) {
	s := &Session{path: path, now: time.Now}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	return s, nil
}

// Path returns the file the session is stored in.
func (s *Session) Path() string {
	return s.path
}

// Token returns the stored token, or "" when there is none or it has expired.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.data.ExpiresAt.IsZero() && !s.now().Before(s.data.ExpiresAt) {
		return ""
	}
	return s.data.Token
}

// Email returns the address of the last successful login.
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Email
}

// SetToken stores a token issued to email.
func (s *Session) SetToken(token string, expiresAt time.Time, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	s.data.ExpiresAt = expiresAt
	s.data.Email = email
	return s.save()
}

// ClearToken forgets the token. The email and theme are kept.
func (s *Session) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = ""
	s.data.ExpiresAt = time.Time{}
	return s.save()
}

// Theme returns the stored theme name.
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Theme
}

// SetTheme stores the theme name.
func (s *Session) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Theme = theme
	return s.save()
}

// save writes the session atomically with owner-only permissions.
// The caller holds s.mu.
func (s *Session) save() error {
	raw, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}
