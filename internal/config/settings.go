package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mwilhelm/applypilot/internal/types"
)

// Settings are the user's persisted defaults for tailoring operations.
// They form the base layer under any per-request overrides.
type Settings struct {
	PromptDefaults types.PromptOptions `json:"prompt_defaults"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// SettingsStore persists Settings as a JSON file and serves reads from an
// in-memory copy. Safe for concurrent use.
type SettingsStore struct {
	path string

	mu      sync.RWMutex
	current Settings
}

// NewSettingsStore opens the store at path, loading existing settings when
// the file is present and built-in defaults otherwise.
func NewSettingsStore(path string) (*SettingsStore, error) {
	store := &SettingsStore{
		path:    path,
		current: Settings{PromptDefaults: types.DefaultPromptOptions()},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	store.current = loaded
	return store, nil
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// PromptDefaults returns the current prompt option base layer. The method
// value plugs directly into the orchestrator as its settings source.
func (s *SettingsStore) PromptDefaults() types.PromptOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.PromptDefaults
}

// Update validates, persists, and applies new prompt defaults.
func (s *SettingsStore) Update(defaults types.PromptOptions) (Settings, error) {
	if defaults.Tone != "" && !types.ValidTone(defaults.Tone) {
		return Settings{}, fmt.Errorf("unsupported tone %q", defaults.Tone)
	}
	if defaults.Style != "" && !types.ValidStyle(defaults.Style) {
		return Settings{}, fmt.Errorf("unsupported style %q", defaults.Style)
	}
	if defaults.MaxSummaryChars < 0 || defaults.MaxHighlightsPerJob < 0 || defaults.MaxBodyParagraphs < 0 {
		return Settings{}, fmt.Errorf("limits must be non-negative")
	}

	next := Settings{PromptDefaults: defaults, UpdatedAt: time.Now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(next); err != nil {
		return Settings{}, err
	}
	s.current = next
	return next, nil
}

// write persists settings via a temp file rename so a crash mid-write never
// leaves a truncated store behind.
func (s *SettingsStore) write(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
