package datasource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleFeed = `{"device":"trainer_07","last_update":"2026-03-01T12:00:00Z","instant_speed":27.4}`

// writeFeed creates .bikecard/feed.json under dir and returns its path.
func writeFeed(t *testing.T, dir, body string) string {
	t.Helper()
	bcDir := filepath.Join(dir, ".bikecard")
	if err := os.MkdirAll(bcDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(bcDir, "feed.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDiscoverExplicitPath(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)
	t.Setenv(EnvFeed, "/nonexistent/path/feed.json")

	got, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
	if env := os.Getenv(EnvFeed); env != "/nonexistent/path/feed.json" {
		t.Errorf("%s changed to %q", EnvFeed, env)
	}
}

func TestDiscoverExplicitPathMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "feed.json")
	_, err := Discover(missing)
	if err == nil {
		t.Fatal("Discover should fail when the explicit feed is missing")
	}
	if strings.Contains(err.Error(), EnvFeed) {
		t.Errorf("error %q names %s for an explicit path", err, EnvFeed)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q does not name %s", err, missing)
	}
}

func TestDiscoverFromEnvVar(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)
	t.Setenv(EnvFeed, path)

	got, err := Discover("")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestDiscoverEnvVarMissing(t *testing.T) {
	t.Setenv(EnvFeed, "/nonexistent/path/feed.json")

	if _, err := Discover(""); err == nil {
		t.Error("Discover should fail when BIKECARD_FEED points to nonexistent file")
	}
}

func TestDiscoverFromCWD(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, sampleFeed)
	t.Setenv(EnvFeed, "")

	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	os.Chdir(dir)

	path, err := Discover("")
	if err != nil {
		t.Fatalf("Discover from CWD: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != ".bikecard" {
		t.Errorf("expected path in .bikecard/, got %q", path)
	}
}

func TestDiscoverFromParentDir(t *testing.T) {
	dir := t.TempDir()
	feed := writeFeed(t, dir, sampleFeed)

	childDir := filepath.Join(dir, "sub", "deep")
	if err := os.MkdirAll(childDir, 0o755); err != nil {
		t.Fatalf("MkdirAll child: %v", err)
	}
	t.Setenv(EnvFeed, "")

	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	os.Chdir(childDir)

	path, err := Discover("")
	if err != nil {
		t.Fatalf("Discover from parent: %v", err)
	}
	// Resolve symlinks for comparison (macOS /var -> /private/var).
	resolvedPath, _ := filepath.EvalSymlinks(path)
	resolvedExpect, _ := filepath.EvalSymlinks(feed)
	if resolvedPath != resolvedExpect {
		t.Errorf("Discover() = %q, want %q", path, feed)
	}
}

func TestDiscoverNoFeed(t *testing.T) {
	t.Setenv(EnvFeed, "")
	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	os.Chdir(t.TempDir())

	if _, err := Discover(""); err == nil {
		t.Error("Discover should fail when no feed exists")
	}
}

func TestLoad(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Device != "trainer_07" {
		t.Errorf("Device = %q, want %q", r.Device, "trainer_07")
	}
	if r.InstantSpeed == nil || *r.InstantSpeed != 27.4 {
		t.Errorf("InstantSpeed = %v, want 27.4", r.InstantSpeed)
	}
	if r.LastUpdate == nil {
		t.Error("LastUpdate should be parsed")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "  \n")

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Device != "" || r.LastUpdate != nil {
		t.Errorf("expected empty reading, got %+v", r)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeFeed(t, t.TempDir(), "{not json")
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestOpen(t *testing.T) {
	path := writeFeed(t, t.TempDir(), sampleFeed)
	t.Setenv(EnvFeed, "")

	r, got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != path {
		t.Errorf("Open path = %q, want %q", got, path)
	}
	if r.Device != "trainer_07" {
		t.Errorf("Device = %q", r.Device)
	}
}

func TestOpenFail(t *testing.T) {
	if _, _, err := Open("/nonexistent/path/feed.json"); err == nil {
		t.Error("Open should fail when no feed exists")
	}
}

func TestDefaultNamesPath(t *testing.T) {
	tests := []struct {
		feed, want string
	}{
		{"/home/u/.bikecard/feed.json", "/home/u/.bikecard/names.db"},
		{"/srv/feeds/bike.json", "/srv/feeds/.bikecard/names.db"},
	}
	for _, tt := range tests {
		if got := DefaultNamesPath(tt.feed); got != tt.want {
			t.Errorf("DefaultNamesPath(%q) = %q, want %q", tt.feed, got, tt.want)
		}
	}
}
