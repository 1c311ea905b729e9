// Package session persists the signed-in profile and token on the client side.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tutorsite/internal/entity/dto"
)

// FileName is the well-known file the current session is kept in.
const FileName = "session.json"

// Session is the locally persisted result of a successful login.
type Session struct {
	Server  string          `json:"server"`
	User    dto.SessionUser `json:"user"`
	SavedAt time.Time       `json:"saved_at"`
}

// Expired reports whether the token's expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.User.ExpiresAt.IsZero() && !now.Before(s.User.ExpiresAt)
}

// FileStore keeps one Session in a JSON file inside Dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. An empty dir selects DefaultDir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the per-user configuration directory for tutorctl.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "tutorsite"), nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Current returns the persisted session. It reports false when the file is
// absent, unreadable or does not hold a session with a token.
func (s *FileStore) Current() (*Session, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, false
	}
	var current Session
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, false
	}
	if current.User.Token == "" {
		return nil, false
	}
	return &current, true
}

// Save replaces the persisted session. The file is written with owner-only
// permissions and swapped in with a rename.
func (s *FileStore) Save(current *Session) error {
	if current == nil || current.User.Token == "" {
		return errors.New("session has no token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	if current.SavedAt.IsZero() {
		current.SavedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear drops the persisted session. Clearing an absent session is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
