package config

import (
	"os"
	"sync"
)

// StoreOptions configures where a Store looks for its file and environment.
type StoreOptions struct {
	// Dir is where the upward search for .humanpp.* starts.
	Dir string
	// Path is an explicit configuration file (HUMANPP_CONFIG or --config).
	Path    string
	XDGHome string
	Home    string
	Getenv  func(string) string
}

// Store holds the layered configuration: defaults, file, environment, host
// override, then values set during this session. Settings() always returns a
// fresh copy so callers never share state.
type Store struct {
	mu       sync.RWMutex
	opts     StoreOptions
	path     string
	source   string
	file     Config
	env      Config
	host     Config
	session  Config
	settings Settings
}

// NewStore resolves the configuration once. On error the Store still serves the defaults.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	s := &Store{opts: opts, settings: Defaults()}
	_, err := s.Reload()
	return s, err
}

// Settings returns the current resolved settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Path returns the active configuration file and how it was found.
// Both are empty when no file exists yet.
func (s *Store) Path() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path, s.source
}

// Reload re-reads the file and environment. Invalid results keep the previous settings.
func (s *Store) Reload() (Settings, error) {
	path, source, err := Find(s.opts.Dir, s.opts.Path, s.opts.XDGHome, s.opts.Home)
	if err != nil {
		return s.Settings(), err
	}
	file, err := Load(path)
	if err != nil {
		return s.Settings(), err
	}
	env, err := FromEnv(s.opts.Getenv)
	if err != nil {
		return s.Settings(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := Merge(Defaults(), file, env, s.host, s.session)
	if err := merged.Validate(); err != nil {
		return s.settings.Clone(), err
	}
	s.path, s.source = path, source
	s.file, s.env = file, env
	s.settings = merged
	return merged.Clone(), nil
}

// Override replaces the host layer (settings pushed by an editor).
func (s *Store) Override(layer Config) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := Merge(Defaults(), s.file, s.env, layer, s.session)
	if err := merged.Validate(); err != nil {
		return s.settings.Clone(), err
	}
	s.host = layer
	s.settings = merged
	return merged.Clone(), nil
}

// Set persists key=value to the active file (or a new .humanpp.yaml in Dir)
// and makes it take effect over every other layer for this session.
func (s *Store) Set(key, value string) (Settings, error) {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()
	if path == "" {
		path = DefaultPath(s.opts.Dir)
	}
	if _, err := SetValue(path, key, value); err != nil {
		return s.Settings(), err
	}
	s.mu.Lock()
	session := s.session
	_, err := ParseAssignment(&session, key, value)
	if err == nil {
		s.session = session
	}
	s.mu.Unlock()
	if err != nil {
		return s.Settings(), err
	}
	return s.Reload()
}
