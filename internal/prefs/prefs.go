// Package prefs stores per-user personalization records. Backends are
// interchangeable; all of them guarantee read-your-writes within a process
// and report write failures to the caller instead of swallowing them.
package prefs

import (
	"context"
	"sync"

	"github.com/ichor-news/backend/internal/models"
)

// Store is the pluggable preference store. Get returns an empty Preference
// for unknown users; it never invents an error for absence.
type Store interface {
	Get(ctx context.Context, user string) (models.Preference, error)
	SetBias(ctx context.Context, user string, bias models.Bias) error
	SetStyle(ctx context.Context, user string, style string) error
	HasTakenQuiz(ctx context.Context, user string) (bool, error)
}

// Memory is the default in-process backend. Mutations are read-modify-write
// atomic per call; concurrent writers are last-write-wins.
type Memory struct {
	mu    sync.RWMutex
	users map[string]models.Preference
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]models.Preference)}
}

func (m *Memory) Get(_ context.Context, user string) (models.Preference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[user], nil
}

func (m *Memory) SetBias(_ context.Context, user string, bias models.Bias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.users[user]
	p.Bias = bias
	m.users[user] = p
	return nil
}

func (m *Memory) SetStyle(_ context.Context, user string, style string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.users[user]
	p.Style = style
	m.users[user] = p
	return nil
}

func (m *Memory) HasTakenQuiz(_ context.Context, user string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[user].Bias != "", nil
}
