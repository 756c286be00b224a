package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// backends runs each test against every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "files"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{"file": fs, "sqlite": sq}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("key1", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get("key1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"a":1}` {
				t.Errorf("expected stored value, got %s", got)
			}
		})
	}
}

func TestPutOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put("key1", []byte(`1`))
			s.Put("key1", []byte(`2`))
			got, _ := s.Get("key1")
			if string(got) != "2" {
				t.Errorf("expected overwritten value, got %s", got)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("nope")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	bad := []string{"", "..", "../etc/passwd", "a/b", `a\b`, "ticket..json", "x y", "/abs", "a\x00b"}
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range bad {
				if _, err := s.Get(key); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Get(%q): expected ErrInvalidKey, got %v", key, err)
				}
				if err := s.Put(key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Put(%q): expected ErrInvalidKey, got %v", key, err)
				}
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.Put("key1", []byte("x"))
			if err := s.Delete("key1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get("key1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete("key1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestListMostRecentFirst(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if err := s.Put(fmt.Sprintf("key%d", i), []byte("x")); err != nil {
					t.Fatal(err)
				}
				// Distinct mtimes on coarse filesystems.
				time.Sleep(20 * time.Millisecond)
			}
			// Touch key0 so it becomes the newest.
			s.Put("key0", []byte("y"))

			items, err := s.List()
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != 3 {
				t.Fatalf("expected 3 items, got %d", len(items))
			}
			want := []string{"key0", "key2", "key1"}
			for i, it := range items {
				if it.Key != want[i] {
					t.Errorf("position %d: expected %s, got %s", i, want[i], it.Key)
				}
			}
		})
	}
}

func TestConcurrentPut(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					s.Put(fmt.Sprintf("k%d", n), []byte("x"))
				}(i)
			}
			wg.Wait()

			items, err := s.List()
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != 20 {
				t.Errorf("expected 20 items, got %d", len(items))
			}
		})
	}
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.Put("good", []byte("x"))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "half.json.tmp"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	items, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Key != "good" {
		t.Errorf("expected only 'good', got %+v", items)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s1, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s1.Put("key1", []byte("persisted"))
	s1.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Get("key1")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("expected persisted value, got %s", got)
	}
}
