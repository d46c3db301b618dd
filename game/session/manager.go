package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
)

var (
	ErrSessionNotFound      = errors.New("scoresheet not found")
	ErrSessionAlreadyExists = errors.New("scoresheet already exists")
	ErrInvalidSessionID     = errors.New("invalid scoresheet ID")
)

// maxIDAttempts bounds the retries when a generated ID collides
const maxIDAttempts = 16

// Manager keeps scoresheets in memory. Sheets are never written to disk.
type Manager struct {
	sheets map[string]*service.Sheet
	mu     sync.RWMutex
}

// NewManager creates a new scoresheet manager
func NewManager() *Manager {
	return &Manager{
		sheets: make(map[string]*service.Sheet),
	}
}

// Create creates a new scoresheet for the discipline. An empty id gets a generated one.
func (m *Manager) Create(id string, discipline scoring.Discipline, label string) (*service.Sheet, error) {
	if strings.ContainsAny(id, "/ ?#") {
		return nil, ErrInvalidSessionID
	}

	sheet, err := scoring.NewScoresheet(discipline)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoresheet: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for i := 0; i < maxIDAttempts; i++ {
			candidate, err := generateSessionID()
			if err != nil {
				return nil, fmt.Errorf("failed to generate scoresheet ID: %w", err)
			}
			if !m.sessionExists(candidate) {
				id = candidate
				break
			}
		}
		if id == "" {
			return nil, ErrSessionAlreadyExists
		}
	}

	// IDs are case-insensitive
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	s := &service.Sheet{
		ID:             id,
		Label:          label,
		Scoresheet:     sheet,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sheets[strings.ToLower(id)] = s

	return s, nil
}

// Get retrieves a scoresheet by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sheets[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns all active scoresheets
func (m *Manager) List() []*service.Sheet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Sheet, 0, len(m.sheets))
	for _, s := range m.sheets {
		result = append(result, s)
	}
	return result
}

// Delete removes a scoresheet
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sheets[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sheets, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a scoresheet
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sheets[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	s.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes scoresheets that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, s := range m.sheets {
		if s.LastAccessedAt.Before(cutoff) {
			delete(m.sheets, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active scoresheets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sheets)
}

// randRead is replaced in tests
var randRead = rand.Read

// generateSessionID generates a random 4-character ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 2)
	if _, err := randRead(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// sessionExists checks if a scoresheet exists (case-insensitive). Callers hold the lock.
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sheets[strings.ToLower(id)]
	return exists
}
