package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRequiresCallback(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nodes.jsonl"))
	if err := w.Start(context.Background()); err != ErrNoCallback {
		t.Fatalf("Start without callback = %v, want ErrNoCallback", err)
	}
}

func TestStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := New(path, WithOnChange(func() {}))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()
	if err := w.Start(context.Background()); err != ErrAlreadyStarted {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestDebouncedChangeCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(path,
		WithDebounce(50*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// A burst of writes inside the debounce window must collapse into one
	// callback.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("bbb"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("change callback never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	// Let any stragglers land before counting.
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
}

func TestIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(path,
		WithDebounce(30*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback fired %d times for an unrelated file, want 0", got)
	}
}

func TestAtomicRenameDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(path,
		WithDebounce(30*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Editor-style save: write a temp file, rename it over the target.
	tmp := filepath.Join(dir, "nodes.jsonl.tmp")
	if err := os.WriteFile(tmp, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("rename-over-replace not detected")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStopPreventsCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.jsonl")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(path,
		WithDebounce(100*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Stop inside the debounce window cancels the pending timer. The write
	// may or may not have been observed yet; either way no callback fires.
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", got)
	}
}
