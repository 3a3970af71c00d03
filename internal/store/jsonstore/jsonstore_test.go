package jsonstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tickingClock(start time.Time, step time.Duration) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func countingIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%03d", prefix, n)
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lw", "entries.json")
	s, err := Load(path, opts...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, path
}

func TestLoadMissingFileCreatesEmptyDocument(t *testing.T) {
	s, path := newTestStore(t)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", s.Len())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load should create parent dir and file: %v", err)
	}
	if string(bytes.TrimSpace(b)) != "[]" {
		t.Fatalf("expected empty array, got %q", b)
	}
}

func TestLoadMissingFileInUnwritablePlace(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "lw")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Load(filepath.Join(blocker, "entries.json"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if s != nil {
		t.Fatalf("expected no store when the file cannot be created")
	}
}

func TestInsertIDsAreDistinct(t *testing.T) {
	s, _ := newTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := s.Insert(fmt.Sprintf("entry %d", i))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if s.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", s.Len())
	}
}

func TestInsertSkipsTakenIDs(t *testing.T) {
	ids := []string{"x", "x", "y"}
	s, _ := newTestStore(t, WithIDs(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	first, _ := s.Insert("one")
	second, _ := s.Insert("two")
	if first != "x" || second != "y" {
		t.Fatalf("expected x then y, got %q then %q", first, second)
	}
}

func TestUpdateContentKeepsCreatedAt(t *testing.T) {
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, WithClock(tickingClock(start, time.Hour)))
	id, err := s.Insert("foo")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	before, _ := s.Get(id)

	if err := s.UpdateContent(id, "bar"); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, _ := s.Get(id)
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	if after.Content != "bar" {
		t.Fatalf("expected content bar, got %q", after.Content)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updated_at should move forward, got %v", after.UpdatedAt)
	}
}

func TestUpdateAndRemoveUnknownID(t *testing.T) {
	s, path := newTestStore(t)
	if err := s.UpdateContent("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Remove("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if b, _ := os.ReadFile(path); string(bytes.TrimSpace(b)) != "[]" {
		t.Fatalf("failed operations must not write, file is %q", b)
	}
}

func TestSortedNewestFirstWithIDTieBreak(t *testing.T) {
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	frozen := func() time.Time { return start }
	s, _ := newTestStore(t, WithClock(frozen), WithIDs(countingIDs("id")))
	for i := 0; i < 3; i++ {
		if _, err := s.Insert("same instant"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	s.now = func() time.Time { return start.Add(time.Second) }
	newest, _ := s.Insert("later")

	got := s.Entries()
	if got[0].ID != newest {
		t.Fatalf("expected newest first, got %q", got[0].ID)
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Fatalf("created_at increases at %d", i)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID < prev.ID {
			t.Fatalf("ids not ascending on tie at %d: %q before %q", i, prev.ID, cur.ID)
		}
	}
}

func TestSortedIsRestartableAndReadOnly(t *testing.T) {
	s, _ := newTestStore(t, WithClock(tickingClock(time.Unix(0, 0), time.Second)))
	for _, c := range []string{"a", "b", "c"} {
		if _, err := s.Insert(c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	seq := s.Sorted()
	for e := range seq {
		if e.Content != "c" {
			t.Fatalf("expected newest entry c first, got %q", e.Content)
		}
		break
	}
	n := 0
	for range seq {
		n++
	}
	if n != 3 || s.Len() != 3 {
		t.Fatalf("second pass saw %d entries, store has %d", n, s.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	start := time.Date(2025, 5, 1, 8, 0, 0, 123456789, time.UTC)
	s, path := newTestStore(t, WithClock(tickingClock(start, 1500*time.Microsecond)))
	for _, c := range []string{"first", "second\nwith a body", ""} {
		if _, err := s.Insert(c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != s.Len() {
		t.Fatalf("expected %d entries, got %d", s.Len(), reloaded.Len())
	}
	for e := range s.Sorted() {
		got, ok := reloaded.Get(e.ID)
		if !ok {
			t.Fatalf("entry %q missing after reload", e.ID)
		}
		if got.Content != e.Content || !got.CreatedAt.Equal(e.CreatedAt) || !got.UpdatedAt.Equal(e.UpdatedAt) {
			t.Fatalf("entry %q changed: %+v vs %+v", e.ID, got, e)
		}
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	s, path := newTestStore(t)
	for _, c := range []string{"a", "b", "c", "d"} {
		if _, err := s.Insert(c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, _ := os.ReadFile(path)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Fatalf("consecutive saves differ:\n%s\n---\n%s", first, second)
	}
}

func TestLoadMalformedIsCorruptAndUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.json")
	raw := []byte(`[{"id": "a", "content": "half`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := Load(path)
	if !errors.Is(err, ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
	if s != nil {
		t.Fatalf("expected no store on corrupt file")
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(raw, after) {
		t.Fatalf("corrupt file was modified")
	}
}

func TestLoadRejectsRecordsWithoutIDsOrDuplicates(t *testing.T) {
	for name, doc := range map[string]string{
		"missing id": `[{"content": "x", "created_at": "2025-01-01T00:00:00Z"}]`,
		"duplicate":  `[{"id": "a"}, {"id": "a"}]`,
		"object":     `{"id": "a"}`,
	} {
		path := filepath.Join(t.TempDir(), "entries.json")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("%s: seed: %v", name, err)
		}
		if _, err := Load(path); !errors.Is(err, ErrCorruptState) {
			t.Fatalf("%s: expected ErrCorruptState, got %v", name, err)
		}
	}
}

func TestInsertSurvivesProcessRestart(t *testing.T) {
	s, path := newTestStore(t)
	id, err := s.Insert("written through")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	// No Save call and no shutdown: the next process just loads the file.
	next, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e, ok := next.Get(id); !ok || e.Content != "written through" {
		t.Fatalf("inserted entry not persisted: %+v %v", e, ok)
	}
}

func TestSaveFailureKeepsMutationInMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "lw")
	path := filepath.Join(blocker, "entries.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// A plain file where the data directory should be makes every save fail.
	if err := os.RemoveAll(blocker); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	id, err := s.Insert("keep me")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, ok := s.Get(id); !ok {
		t.Fatalf("failed save dropped the entry from memory")
	}
	if !s.Dirty() {
		t.Fatalf("store should be dirty after a failed save")
	}

	if err := os.Remove(blocker); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("successful save should clear dirty")
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.Get(id); !ok {
		t.Fatalf("retried save did not persist the entry")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, path := newTestStore(t)
	if _, err := s.Insert("a"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	files, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "entries.json" {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name())
		}
		t.Fatalf("expected only entries.json, got %v", names)
	}
}
