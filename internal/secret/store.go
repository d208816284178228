package secret

import "sync"

// SecretStore holds export passwords outside the SQLite database.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get returns the secret for key, or an empty slice and nil error when
	// nothing is stored.
	Get(key string) ([]byte, error)

	// Delete removes the secret for key.
	Delete(key string) error
}

// MemoryStore keeps secrets in process memory. It backs the standalone MCP
// process and tests, where no keychain is reachable.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// ExportPasswordKey is the key an export target's password is stored under.
func ExportPasswordKey(targetID string) string {
	return "export:" + targetID
}
