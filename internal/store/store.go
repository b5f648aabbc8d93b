// Package store persists the entire application state as a single JSON
// document on disk. Reads are served from an in-process cache keyed on the
// file's modification time; writes go through a temp file and an atomic
// rename so a crash can never leave a half-written document behind.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mkeren/pawtrack/internal/model"
)

// Store owns the document file and its read cache. A single mutex serializes
// load-mutate-save cycles within the process, so two in-process mutations
// cannot lose each other's writes. Separate processes sharing the file are
// not coordinated: concurrent saves are last-write-wins.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached *model.Document
	mtime  time.Time
}

// Open creates a store for the document at path. The file is not touched
// until the first Load or Update.
func Open(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the location of the document file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current document. When the on-disk modification time
// matches the cached one the cached document is returned without touching
// disk. A missing file yields an empty initialized document.
//
// The returned document is a shared snapshot: callers must treat it as
// read-only and use Update for mutations.
func (s *Store) Load() (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*model.Document, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		s.logger.Warn("document file not found, starting empty", "path", s.path)
		s.cached = model.NewDocument()
		s.mtime = time.Time{}
		return s.cached, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	if s.cached != nil && info.ModTime().Equal(s.mtime) {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Init()

	s.cached = doc
	s.mtime = info.ModTime()
	s.logger.Debug("document loaded from disk",
		"households", len(doc.Households),
		"users", len(doc.Users),
		"events", len(doc.Events),
	)
	return doc, nil
}

// Save writes doc durably: marshal, write to a temp file in the same
// directory, then atomically replace the canonical file. The cache is
// updated only after the rename succeeds, so a failed save leaves the prior
// consistent state authoritative.
func (s *Store) Save(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(doc)
}

func (s *Store) saveLocked(doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		// The write landed but we can't cache its mtime; drop the cache so
		// the next Load rereads from disk.
		s.cached = nil
		s.mtime = time.Time{}
		return nil
	}
	s.cached = doc
	s.mtime = info.ModTime()
	return nil
}

// Update runs fn against a private copy of the current document and persists
// the result if fn succeeds. The whole read-mutate-write cycle holds the
// store lock, so concurrent Updates serialize instead of silently losing
// writes. Readers holding an earlier snapshot are unaffected.
func (s *Store) Update(fn func(doc *model.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.loadLocked()
	if err != nil {
		return err
	}
	doc, err := clone(cur)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

// Invalidate drops the cache; the next Load rereads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mtime = time.Time{}
	s.mu.Unlock()
}

// clone deep-copies a document through a JSON round trip. Documents are
// small (one household's worth of records), so this stays well inside the
// cost of the disk write that follows.
func clone(doc *model.Document) (*model.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	out := model.NewDocument()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	out.Init()
	return out, nil
}

// EnsureDir creates the parent directory of the document file.
func (s *Store) EnsureDir() error {
	dir := filepath.Dir(s.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0700)
}
