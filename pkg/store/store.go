// Package store persists ARIA's small on-disk JSON documents: the per-platform
// session records and the browser storage state. One process owns the store at
// a time; writes replace whole documents.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	sessionsFile  = "sessions.json"
	authStateFile = "browser-state.json"
	landingDir    = "landing-pages"
)

// emptyAuthState matches playwright's storage state shape with no cookies.
const emptyAuthState = `{"cookies":[],"origins":[]}`

// Record holds the persisted facts about one platform's login session.
// Unknown fields from older documents are kept in Extra and survive rewrites.
type Record struct {
	LoggedIn    bool
	Email       string
	Token       string
	AdAccountID string
	Extra       map[string]any
}

// MarshalJSON flattens Extra alongside the named fields.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		m[k] = v
	}
	m["logged_in"] = r.LoggedIn
	if r.Email != "" {
		m["email"] = r.Email
	}
	if r.Token != "" {
		m["token"] = r.Token
	}
	if r.AdAccountID != "" {
		m["ad_account_id"] = r.AdAccountID
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits the named fields out of the document, leaving the rest
// in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if v, ok := m["logged_in"].(bool); ok {
		r.LoggedIn = v
	}
	if v, ok := m["email"].(string); ok {
		r.Email = v
	}
	if v, ok := m["token"].(string); ok {
		r.Token = v
	}
	if v, ok := m["ad_account_id"].(string); ok {
		r.AdAccountID = v
	}
	delete(m, "logged_in")
	delete(m, "email")
	delete(m, "token")
	delete(m, "ad_account_id")
	if len(m) > 0 {
		r.Extra = m
	}
	return nil
}

// Update is a partial record; nil pointers leave the existing value untouched.
type Update struct {
	LoggedIn    *bool
	Email       *string
	Token       *string
	AdAccountID *string
	Extra       map[string]any
}

// Bool returns a pointer to b, for building Updates inline.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building Updates inline.
func String(s string) *string { return &s }

// Merge applies an Update to a Record, returning the merged Record. Fields not
// set in the update keep their previous values.
func Merge(old Record, up Update) Record {
	out := old
	if up.LoggedIn != nil {
		out.LoggedIn = *up.LoggedIn
	}
	if up.Email != nil {
		out.Email = *up.Email
	}
	if up.Token != nil {
		out.Token = *up.Token
	}
	if up.AdAccountID != nil {
		out.AdAccountID = *up.AdAccountID
	}
	if len(up.Extra) > 0 {
		merged := make(map[string]any, len(old.Extra)+len(up.Extra))
		for k, v := range old.Extra {
			merged[k] = v
		}
		for k, v := range up.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// Sessions maps a platform name ("facebook", "google") to its record.
// A missing key means not logged in.
type Sessions map[string]Record

// Store owns the store directory and serializes access to each document.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the store directory if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// LoadSessions reads the session document. A missing or unparsable file
// yields an empty map, never an error.
func (s *Store) LoadSessions() Sessions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() Sessions {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionsFile))
	if err != nil {
		return Sessions{}
	}
	var sessions Sessions
	if err := json.Unmarshal(data, &sessions); err != nil {
		return Sessions{}
	}
	if sessions == nil {
		sessions = Sessions{}
	}
	return sessions
}

// SaveSessions replaces the whole session document.
func (s *Store) SaveSessions(sessions Sessions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(sessions)
}

func (s *Store) saveLocked(sessions Sessions) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sessionsFile), data, 0o600); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

// Session returns the record for a platform. An absent platform reads as a
// zero record (logged_in false).
func (s *Store) Session(platform string) Record {
	return s.LoadSessions()[platform]
}

// UpdateSession merges the update into the platform's record and persists the
// whole document. Read-modify-write under the store lock.
func (s *Store) UpdateSession(platform string, up Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := s.loadLocked()
	sessions[platform] = Merge(sessions[platform], up)
	return s.saveLocked(sessions)
}

// AuthStatePath returns the path of the browser storage-state document. The
// schema of the file is owned by the browser automation library.
func (s *Store) AuthStatePath() string {
	return filepath.Join(s.dir, authStateFile)
}

// AuthStateExists reports whether a persisted storage state is available to
// seed a new browser context.
func (s *Store) AuthStateExists() bool {
	info, err := os.Stat(s.AuthStatePath())
	return err == nil && !info.IsDir()
}

// ClearAuthState resets the storage-state document to an empty cookie jar.
func (s *Store) ClearAuthState() error {
	if err := os.WriteFile(s.AuthStatePath(), []byte(emptyAuthState), 0o600); err != nil {
		return fmt.Errorf("clear auth state: %w", err)
	}
	return nil
}

// LandingPagesDir returns (and creates) the directory for generated landing
// pages.
func (s *Store) LandingPagesDir() (string, error) {
	dir := filepath.Join(s.dir, landingDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create landing pages directory: %w", err)
	}
	return dir, nil
}
