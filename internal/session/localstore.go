// Package session resolves the active actor from the backend auth service
// or from the locally persisted session blob, and owns that local blob.
package session

import (
	"encoding/json"
	"os"
	"sync"
)

// LocalUserKey is the fixed key the lightweight customer session is stored
// under. The blob survives restarts, is not encrypted and is never validated
// server-side.
const LocalUserKey = "localUser"

// Session is the client-only identity record persisted on-device for the
// customer login path that bypasses the backend auth service.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Role is a client-only claim. Nothing verifies it; privileged checks
	// must not trust it.
	Role string `json:"role"`
}

// FileStore is a small persistent key-value store backed by a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore persisting to the given path. The file is
// created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the raw value stored under key. ok is false when the key (or
// the whole file) is absent.
func (f *FileStore) Get(key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set stores value under key, creating or rewriting the backing file.
func (f *FileStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = raw
	return f.save(data)
}

// Delete removes key. Deleting an absent key is a no-op.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

func (f *FileStore) load() (map[string]json.RawMessage, error) {
	buf, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	data := map[string]json.RawMessage{}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileStore) save(data map[string]json.RawMessage) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, buf, 0o600)
}

// SaveSession persists the customer session blob under LocalUserKey.
func (f *FileStore) SaveSession(s Session) error {
	return f.Set(LocalUserKey, s)
}

// LoadSession reads the customer session blob. ok is false when none is
// stored or the blob cannot be decoded.
func (f *FileStore) LoadSession() (Session, bool) {
	raw, ok, err := f.Get(LocalUserKey)
	if err != nil || !ok {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, false
	}
	return s, true
}

// ClearSession removes the customer session blob.
func (f *FileStore) ClearSession() error {
	return f.Delete(LocalUserKey)
}
