// Package token persists small client-side values, most importantly the
// bearer token attached to backend requests.
package token

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const (
	// FileName is the name of the storage file inside the storage directory
	FileName = "storage.json"

	// APITokenKey is the fixed key the bearer token is stored under
	APITokenKey = "api_token"
)

// ErrNoToken is returned by MustToken when no token is stored
var ErrNoToken = errors.New("no API token stored")

// Store is a string key-value store backed by a JSON file
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store that keeps its file in dir
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the storage file
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set stores value under key
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// Init creates an empty storage file if none exists yet
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to check storage file")
	}
	return s.save(map[string]string{})
}

// Token returns the stored bearer token, or an empty string if none is stored
func (s *Store) Token() (string, error) {
	value, _, err := s.Get(APITokenKey)
	return value, err
}

// MustToken is like Token but returns ErrNoToken when nothing is stored
func (s *Store) MustToken() (string, error) {
	value, err := s.Token()
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrNoToken
	}
	return value, nil
}

// SetToken stores the bearer token
func (s *Store) SetToken(value string) error {
	if value == "" {
		return errors.New("token cannot be empty")
	}
	return s.Set(APITokenKey, value)
}

// ClearToken removes the bearer token
func (s *Store) ClearToken() error {
	return s.Remove(APITokenKey)
}

func (s *Store) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, errors.Wrap(err, "failed to read storage file")
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "failed to parse storage file %s", s.path)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create storage directory")
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize storage")
	}

	// the file holds credentials
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write storage file")
	}
	return nil
}
