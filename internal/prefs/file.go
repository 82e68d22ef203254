package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ichor-news/backend/internal/models"
)

// File persists preferences as a single JSON document mapping username to
// record. Every mutation rewrites the file through a temp-file-then-rename
// so a crash mid-write never leaves a truncated store behind.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile ensures the parent directory exists and validates that any
// existing file parses.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f := &File{path: path}
	if _, err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Get(_ context.Context, user string) (models.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users, err := f.load()
	if err != nil {
		return models.Preference{}, err
	}
	return users[user], nil
}

func (f *File) SetBias(_ context.Context, user string, bias models.Bias) error {
	return f.update(user, func(p *models.Preference) { p.Bias = bias })
}

func (f *File) SetStyle(_ context.Context, user string, style string) error {
	return f.update(user, func(p *models.Preference) { p.Style = style })
}

func (f *File) HasTakenQuiz(_ context.Context, user string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users, err := f.load()
	if err != nil {
		return false, err
	}
	return users[user].Bias != "", nil
}

func (f *File) update(user string, apply func(*models.Preference)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.load()
	if err != nil {
		return err
	}

	p := users[user]
	apply(&p)
	users[user] = p

	return f.save(users)
}

func (f *File) load() (map[string]models.Preference, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]models.Preference{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if len(data) == 0 {
		return map[string]models.Preference{}, nil
	}

	var users map[string]models.Preference
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	if users == nil {
		users = map[string]models.Preference{}
	}
	return users, nil
}

func (f *File) save(users map[string]models.Preference) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
