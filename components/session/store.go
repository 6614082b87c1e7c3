package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// TokenStore tracks issued session tokens by their jti so logout can
// invalidate them before expiry.
type TokenStore interface {
	Save(id, userID string) error
	Delete(id string) error
	Active(id string) (bool, error)
}

// MemoryTokenStore is the concurrency-safe default TokenStore.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{data: make(map[string]string)}
}

func (s *MemoryTokenStore) Save(id, userID string) error {
	if id == "" {
		return fmt.Errorf("session: token id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = userID
	return nil
}

func (s *MemoryTokenStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *MemoryTokenStore) Active(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok, nil
}

// FileTokenStore persists active tokens as JSON so sessions survive a
// server restart. Intended for the single-process demo deployment.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a store backed by the given file path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Save(id, userID string) error {
	if id == "" {
		return fmt.Errorf("session: token id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[id] = userID
	return s.flush(data)
}

func (s *FileTokenStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, id)
	return s.flush(data)
}

func (s *FileTokenStore) Active(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := data[id]
	return ok, nil
}

func (s *FileTokenStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read token store %s: %w", s.path, err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: parse token store %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileTokenStore) flush(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode token store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("session: write token store %s: %w", s.path, err)
	}
	return nil
}
