package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/lw/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every mutation is written through before it returns.
// No locking; the file belongs to one running process.

var (
	// ErrCorruptState means the file exists but is not a list of entries.
	ErrCorruptState = errors.New("corrupt entry file")
	// ErrNotFound means no entry has the given id.
	ErrNotFound = errors.New("entry not found")
	// ErrIO wraps read and write failures at the file boundary.
	ErrIO = errors.New("storage i/o")
)

// Store is the in-memory set of entries bound to one file.
type Store struct {
	path    string
	entries map[string]model.Entry
	dirty   bool

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "store").Logger() }
}

// Load reads path into a new Store. A missing file (or directory) is
// created holding an empty entry set.
func Load(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:    path,
		entries: map[string]model.Entry{},
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Info().Str("path", path).Msg("no entry file yet, creating an empty one")
			if err := s.Save(); err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, fmt.Errorf("%w: read file: %w", ErrIO, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return s, nil
	}

	var records []model.Entry
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptState, path, err)
	}
	for i, e := range records {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no id", ErrCorruptState, path, i)
		}
		if _, dup := s.entries[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %q", ErrCorruptState, path, e.ID)
		}
		s.entries[e.ID] = e
	}
	s.log.Debug().Str("path", path).Int("entries", len(s.entries)).Msg("loaded")
	return s, nil
}

func (s *Store) Len() int { return len(s.entries) }

// Dirty reports whether memory holds changes the last save did not write.
func (s *Store) Dirty() bool { return s.dirty }

func (s *Store) Get(id string) (model.Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Sorted yields entries newest first. Each range over it re-sorts the
// current set, so it can be restarted after mutations.
func (s *Store) Sorted() iter.Seq[model.Entry] {
	return func(yield func(model.Entry) bool) {
		out := make([]model.Entry, 0, len(s.entries))
		for _, e := range s.entries {
			out = append(out, e)
		}
		slices.SortFunc(out, model.Compare)
		for _, e := range out {
			if !yield(e) {
				return
			}
		}
	}
}

// Entries is Sorted collected into a slice.
func (s *Store) Entries() []model.Entry {
	return slices.Collect(s.Sorted())
}

// Insert adds an entry and returns its id. On a save failure the entry
// stays in memory and the error wraps ErrIO.
func (s *Store) Insert(content string) (string, error) {
	id := s.newID()
	for _, taken := s.entries[id]; taken; _, taken = s.entries[id] {
		id = s.newID()
	}
	now := s.now().UTC()
	s.entries[id] = model.Entry{ID: id, Content: content, CreatedAt: now, UpdatedAt: now}
	s.log.Info().Str("id", id).Msg("insert")
	return id, s.persist()
}

func (s *Store) UpdateContent(id, content string) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	e.Content = content
	e.UpdatedAt = s.now().UTC()
	s.entries[id] = e
	s.log.Info().Str("id", id).Msg("update")
	return s.persist()
}

func (s *Store) Remove(id string) error {
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	delete(s.entries, id)
	s.log.Info().Str("id", id).Msg("remove")
	return s.persist()
}

func (s *Store) persist() error {
	if err := s.Save(); err != nil {
		s.dirty = true
		s.log.Error().Err(err).Str("path", s.path).Msg("save failed, keeping changes in memory")
		return err
	}
	return nil
}

// Save writes every entry to the bound path. Records are ordered by id so
// an unchanged store always produces the same bytes. The file is replaced
// by rename, never written in place.
func (s *Store) Save() error {
	records := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		records = append(records, e)
	}
	slices.SortFunc(records, func(a, b model.Entry) int { return strings.Compare(a.ID, b.ID) })

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')
	if err := writeAtomic(s.path, b); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %w", ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrIO, err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write file: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close: %w", ErrIO, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod: %w", ErrIO, err)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: rename: %w", ErrIO, err)
	}
	return nil
}
