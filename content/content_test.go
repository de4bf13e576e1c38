package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSet(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "math.yaml", `
title: Math
round_duration_seconds: 20
questions:
  - prompt: 6 x 7
    answer: 42
  - prompt: Square root of 2
    answer: 1.4142
`)

	set, err := NewFileLoader(dir).Load("math")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if set.ID != "math" {
		t.Errorf("ID = %q, want %q", set.ID, "math")
	}
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if set.Questions[0].Answer != 42 {
		t.Errorf("answer = %v, want 42", set.Questions[0].Answer)
	}
	if set.RoundDuration() != 20*time.Second {
		t.Errorf("RoundDuration() = %s, want 20s", set.RoundDuration())
	}
}

func TestFileLoader_MatchingDeclaredID(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "trivia.yaml", "id: trivia\nround_duration_seconds: 5\nquestions: []\n")

	set, err := NewFileLoader(dir).Load("trivia")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if set.ID != "trivia" {
		t.Errorf("ID = %q, want %q", set.ID, "trivia")
	}
}

func TestFileLoader_YmlExtension(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "short.yml", "round_duration_seconds: 5\nquestions: []\n")

	set, err := NewFileLoader(dir).Load("short")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestFileLoader_Unknown(t *testing.T) {
	loader := NewFileLoader(t.TempDir())

	for _, id := range []string{"missing", "../etc/passwd", ""} {
		if _, err := loader.Load(id); !errors.Is(err, ErrUnknownContent) {
			t.Errorf("Load(%q) error = %v, want ErrUnknownContent", id, err)
		}
	}
}

func TestFileLoader_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "broken.yaml", "questions: [this is: not valid")
	writeSet(t, dir, "zero.yaml", "round_duration_seconds: 0\n")
	writeSet(t, dir, "extra.yaml", "round_duration_seconds: 5\ncolour: red\n")
	writeSet(t, dir, "blank.yaml", "round_duration_seconds: 5\nquestions:\n  - answer: 3\n")
	writeSet(t, dir, "renamed.yaml", "id: other\nround_duration_seconds: 5\nquestions: []\n")

	loader := NewFileLoader(dir)
	for _, id := range []string{"broken", "zero", "extra", "blank", "renamed"} {
		_, err := loader.Load(id)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Errorf("Load(%q) error = %v, want *LoadError", id, err)
			continue
		}
		if loadErr.ID != id {
			t.Errorf("LoadError.ID = %q, want %q", loadErr.ID, id)
		}
	}
}

type countingLoader struct {
	calls int
	set   *Set
}

func (l *countingLoader) Load(id string) (*Set, error) {
	l.calls++
	if id != l.set.ID {
		return nil, ErrUnknownContent
	}
	return l.set, nil
}

func TestCatalog_CachesAndDefaults(t *testing.T) {
	loader := &countingLoader{set: &Set{ID: "base", RoundDurationSeconds: 10}}
	c := NewCatalog(loader, "base")

	for i := 0; i < 3; i++ {
		if _, err := c.Default(); err != nil {
			t.Fatalf("Default() error: %v", err)
		}
	}
	if loader.calls != 1 {
		t.Errorf("loader called %d times, want 1", loader.calls)
	}

	if _, err := c.Get("other"); !errors.Is(err, ErrUnknownContent) {
		t.Errorf("Get(other) error = %v, want ErrUnknownContent", err)
	}
}

func TestCatalog_NoDefault(t *testing.T) {
	c := NewCatalog(NewFileLoader(t.TempDir()), "")
	if _, err := c.Default(); !errors.Is(err, ErrUnknownContent) {
		t.Errorf("Default() error = %v, want ErrUnknownContent", err)
	}

	c.Put(&Set{ID: "manual", RoundDurationSeconds: 1})
	if _, err := c.Get("manual"); err != nil {
		t.Errorf("Get(manual) after Put error: %v", err)
	}
}

func TestSampleSetParses(t *testing.T) {
	set, err := NewFileLoader("sets").Load("sample")
	if err != nil {
		t.Fatalf("sample set: %v", err)
	}
	if set.Len() == 0 {
		t.Error("sample set should have questions")
	}
}
