package names

import (
	"errors"
	"strings"

	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// Mode is the state of a card's name field.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	}
	return "?"
}

// Editor holds the transient edit state of one card: the device it is
// bound to, the local override text and the current Mode. It is owned by a
// single renderer and is not safe for concurrent use.
type Editor struct {
	names  *Names
	device string
	text   string
	mode   Mode
}

// NewEditor returns an Editor in Viewing mode with no device bound.
func NewEditor(n *Names) *Editor {
	return &Editor{names: n}
}

// Load binds the editor to device, reading its persisted name into the
// local text. Any edit in progress is dropped.
func (e *Editor) Load(device string) error {
	e.device = device
	e.mode = Viewing
	return e.reset()
}

// Begin enters Editing mode. It is a no-op when already editing.
func (e *Editor) Begin() {
	e.mode = Editing
}

// SetText replaces the local text while editing.
func (e *Editor) SetText(s string) {
	e.text = s
}

// Commit leaves Editing mode. A non-blank text is trimmed and persisted; a
// blank one is not written and the local text falls back to whatever is
// already stored. The mode is Viewing on return even if the write failed,
// and a failed write also leaves the stored name in the local text.
func (e *Editor) Commit() error {
	e.mode = Viewing
	name := strings.TrimSpace(e.text)
	if name == "" {
		return e.reset()
	}
	if err := e.names.Set(e.device, name); err != nil {
		return errors.Join(err, e.reset())
	}
	e.text = name
	return nil
}

// Cancel leaves Editing mode, discarding unsaved keystrokes.
func (e *Editor) Cancel() error {
	e.mode = Viewing
	return e.reset()
}

func (e *Editor) reset() error {
	e.text = ""
	if e.device == "" {
		return nil
	}
	name, _, err := e.names.Get(e.device)
	if err != nil {
		return err
	}
	e.text = name
	return nil
}

// Mode reports the current state.
func (e *Editor) Mode() Mode { return e.mode }

// Device returns the bound device identifier.
func (e *Editor) Device() string { return e.device }

// Override returns the local override text, possibly empty.
func (e *Editor) Override() string { return e.text }

// DisplayName resolves the name shown on the card.
func (e *Editor) DisplayName() string {
	return telemetry.ResolveName(e.device, e.text)
}
