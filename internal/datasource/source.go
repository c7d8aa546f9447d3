// Package datasource discovers and reads the telemetry feed file.
//
// The feed is a single JSON object written by an external process each time
// a new reading arrives. This package only reads it; it never talks to
// sensors.
package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// EnvFeed overrides feed discovery.
const EnvFeed = "BIKECARD_FEED"

const (
	defaultDir  = ".bikecard"
	defaultFeed = ".bikecard/feed.json"
)

// Discover resolves the feed path. An explicit path wins and must exist;
// otherwise BIKECARD_FEED is consulted, then .bikecard/feed.json in the
// working directory or the nearest ancestor that has one.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("feed %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if env := os.Getenv(EnvFeed); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("%s=%q: %w", EnvFeed, env, os.ErrNotExist)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, defaultFeed)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no telemetry feed found (looked for %s)", defaultFeed)
		}
		dir = parent
	}
}

// Load reads one reading from the feed file at path. An empty file yields
// an empty reading, which renders as an inactive card.
func Load(path string) (*telemetry.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", path, err)
	}
	var r telemetry.Reading
	if len(bytes.TrimSpace(data)) == 0 {
		return &r, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", path, err)
	}
	return &r, nil
}

// Open resolves the feed via Discover and loads its current reading.
func Open(explicit string) (*telemetry.Reading, string, error) {
	path, err := Discover(explicit)
	if err != nil {
		return nil, "", err
	}
	r, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return r, path, nil
}

// DefaultNamesPath returns the names database path that sits next to the
// feed file.
func DefaultNamesPath(feedPath string) string {
	dir := filepath.Dir(feedPath)
	if filepath.Base(dir) != defaultDir {
		dir = filepath.Join(dir, defaultDir)
	}
	return filepath.Join(dir, "names.db")
}
