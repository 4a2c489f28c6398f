// Package session issues and resolves opaque session tokens.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Storage is the key/value backend of the session store.
// The gofiber storage drivers implement it; Get returns nil for a missing key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Data represents the session data structure.
type Data struct {
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager creates, reads and destroys sessions.
type Manager struct {
	storage Storage
	ttl     time.Duration
}

// New creates a Manager whose sessions live for ttl.
func New(storage Storage, ttl time.Duration) *Manager {
	if storage == nil {
		panic("storage is nil")
	}

	return &Manager{storage: storage, ttl: ttl}
}

// TTL returns the lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for userID and returns its token.
func (m *Manager) Create(userID uint64) (string, error) {
	token, err := GenerateSessionID()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(Data{UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	if err := m.storage.Set(token, out, m.ttl); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}

	return token, nil
}

// Read returns the data of the session token.
func (m *Manager) Read(token string) (*Data, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := m.storage.Get(token)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrSessionNotFound
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if d.UserID == 0 {
		return nil, ErrSessionNotFound
	}

	return &d, nil
}

// Destroy ends the session token.
func (m *Manager) Destroy(token string) error {
	if token == "" {
		return nil
	}

	if err := m.storage.Delete(token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
