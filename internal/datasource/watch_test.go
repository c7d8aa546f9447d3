package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcherSuccess(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.Changes() == nil {
		t.Error("Changes() returned nil channel")
	}
	if w.Errors() == nil {
		t.Error("Errors() returned nil channel")
	}
}

func TestNewWatcherBadPath(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/feed.json"); err == nil {
		t.Error("NewWatcher should fail for nonexistent directory")
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	// Give fsnotify time to start watching.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`{"device":"trainer_08"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change signal on feed write")
	}
}

func TestWatcherDetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeFeed(t, dir, sampleFeed)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	tmp := filepath.Join(filepath.Dir(path), "feed.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"device":"trainer_09"}`), 0o644); err != nil {
		t.Fatalf("WriteFile tmp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Error("timed out waiting for change signal on rename into place")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	unrelated := filepath.Join(filepath.Dir(path), "other.txt")
	if err := os.WriteFile(unrelated, []byte("noise"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-w.Changes():
		t.Error("unexpected change signal from unrelated file write")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
