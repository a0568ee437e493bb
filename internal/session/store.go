// Package session persists the login session so the client can skip the
// login screen on the next start.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/taigaterm/internal/taiga"
)

// Session is a saved login.
type Session struct {
	Host      string    `yaml:"host"`
	AuthToken string    `yaml:"auth_token"`
	UserID    int       `yaml:"user_id"`
	Username  string    `yaml:"username"`
	FullName  string    `yaml:"full_name,omitempty"`
	SavedAt   time.Time `yaml:"saved_at"`
}

// FromAuth builds a Session for host from a login response.
func FromAuth(host string, auth taiga.Auth) Session {
	return Session{
		Host:      host,
		AuthToken: auth.AuthToken,
		UserID:    auth.ID,
		Username:  auth.Username,
		FullName:  auth.FullName,
	}
}

// Auth returns the login response the session was built from.
func (s Session) Auth() taiga.Auth {
	return taiga.Auth{
		ID:        s.UserID,
		Username:  s.Username,
		FullName:  s.FullName,
		AuthToken: s.AuthToken,
	}
}

// ErrNoPath indicates a FileStore without a path.
var ErrNoPath = errors.New("session: no path configured")

// FileStore keeps one session in a YAML file readable only by the owner.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the session file path.
func (s *FileStore) Path() string { return s.path }

// Save writes sess, replacing any previous session.
func (s *FileStore) Save(sess Session) error {
	if s.path == "" {
		return ErrNoPath
	}
	if sess.AuthToken == "" {
		return errors.New("session: refusing to save a session without a token")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = s.now().UTC().Truncate(time.Second)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: creating directory: %w", err)
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshaling: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the saved session for host.
// Returns (session, true, nil) if found, (zero, false, nil) if there is
// none or it belongs to another host.
func (s *FileStore) Load(host string) (Session, bool, error) {
	if s.path == "" {
		return Session{}, false, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("session: reading %s: %w", s.path, err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("session: parsing %s: %w", s.path, err)
	}
	if sess.AuthToken == "" || sess.Host != host {
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Clear deletes the session file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: removing %s: %w", s.path, err)
	}
	return nil
}
