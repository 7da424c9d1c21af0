package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Session is what the client remembers between runs.
type Session struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
}

func (s Session) Valid() bool { return s.Access != "" }

type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileSession keeps the session as JSON at Path with 0600 permissions.
type FileSession struct {
	Path string
}

// DefaultSessionPath is ~/.config/warden/session.json.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "warden", "session.json")
}

func (f FileSession) Load() (Session, error) {
	var s Session
	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, errors.Wrap(err, "read session")
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, errors.Wrap(err, "decode session")
	}
	return s, nil
}

func (f FileSession) Save(s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	return errors.Wrap(os.WriteFile(f.Path, b, 0o600), "write session")
}

func (f FileSession) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// MemorySession is a SessionStore for tests and one-shot scripts.
type MemorySession struct {
	S Session
}

func (m *MemorySession) Load() (Session, error) { return m.S, nil }
func (m *MemorySession) Save(s Session) error  { m.S = s; return nil }
func (m *MemorySession) Clear() error          { m.S = Session{}; return nil }
