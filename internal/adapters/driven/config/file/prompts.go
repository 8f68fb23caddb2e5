package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptFileName is the override file inside the config directory.
const PromptFileName = "prompts.yaml"

// PromptStore serves prompt templates. Built-in defaults can be overridden
// per name in a YAML file mapping prompt names to templates.
type PromptStore struct {
	path string

	mu        sync.RWMutex
	loaded    bool
	overrides map[string]string
	loadErr   error
}

// NewPromptStore creates a prompt store reading overrides from path.
// If path is empty, defaults to ~/.studybuddy/prompts.yaml.
//
// The file is read lazily on first Load() and is optional.
func NewPromptStore(path string) (*PromptStore, error) {
	if path == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, PromptFileName)
	}
	return &PromptStore{path: path}, nil
}

// Load returns the template for name, preferring an override from the
// YAML file. An unreadable file falls back to the defaults.
func (s *PromptStore) Load(name string) (string, error) {
	s.ensureLoaded()

	s.mu.RLock()
	override, ok := s.overrides[name]
	s.mu.RUnlock()
	if ok {
		return override, nil
	}

	if p, ok := driven.DefaultPrompt(name); ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}

// Reload forces the override file to be read again on next Load.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.overrides = nil
	s.loadErr = nil
	s.mu.Unlock()
}

// Path returns the override file path.
func (s *PromptStore) Path() string {
	return s.path
}

// Err returns the error from the last attempt to read the override file.
// A missing file is not an error.
func (s *PromptStore) Err() error {
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *PromptStore) ensureLoaded() {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	// No lock held during I/O
	overrides, err := readPromptFile(s.path)

	s.mu.Lock()
	if !s.loaded {
		s.overrides = overrides
		s.loadErr = err
		s.loaded = true
	}
	s.mu.Unlock()
}

func readPromptFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	overrides := make(map[string]string, len(raw))
	for name, tmpl := range raw {
		tmpl = strings.TrimSpace(tmpl)
		if tmpl == "" {
			continue
		}
		overrides[name] = tmpl
	}
	return overrides, nil
}
