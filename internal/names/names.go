// Package names persists user-chosen display names for bike devices and
// drives the edit-mode state machine of a card's name field.
//
// Names are stored in a string key-value store under "bike_name_<device>".
// Two stores are provided: MemoryKV for tests and throwaway sessions, and
// SQLiteKV for names that survive restarts.
package names

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every stored name by device identifier.
const KeyPrefix = "bike_name_"

// ErrEmptyDevice is returned when a name is written for a reading that has
// no device identifier.
var ErrEmptyDevice = errors.New("names: empty device identifier")

// KV is the narrow string key-value store names are persisted in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Key returns the store key for a device.
func Key(device string) string {
	return KeyPrefix + device
}

// Names reads and writes display names keyed by device.
type Names struct {
	kv KV
}

// New wraps kv.
func New(kv KV) *Names {
	return &Names{kv: kv}
}

// Get returns the persisted name for device, or "" and false if none.
func (n *Names) Get(device string) (string, bool, error) {
	name, ok, err := n.kv.Get(Key(device))
	if err != nil {
		return "", false, fmt.Errorf("get name for %q: %w", device, err)
	}
	return name, ok, nil
}

// Set persists name for device. Any string is accepted as a name.
func (n *Names) Set(device, name string) error {
	if device == "" {
		return ErrEmptyDevice
	}
	if err := n.kv.Set(Key(device), name); err != nil {
		return fmt.Errorf("set name for %q: %w", device, err)
	}
	return nil
}
