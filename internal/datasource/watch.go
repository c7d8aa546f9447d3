package datasource

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the feed file for new readings.
type Watcher struct {
	watcher  *fsnotify.Watcher
	feedPath string
	debounce time.Duration
	onChange chan struct{}
	onError  chan error
	done     chan struct{}
}

// NewWatcher starts watching feedPath. The parent directory is watched
// rather than the file so writers that replace the feed by rename are seen.
func NewWatcher(feedPath string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(feedPath)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		feedPath: feedPath,
		debounce: 100 * time.Millisecond,
		onChange: make(chan struct{}, 1),
		onError:  make(chan error, 1),
		done:     make(chan struct{}),
	}

	go watcher.loop()
	return watcher, nil
}

// Changes signals that a new reading may be in the feed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Errors returns a channel of watch errors. Errors are dropped while a
// previous one is still unread.
func (w *Watcher) Errors() <-chan error {
	return w.onError
}

// Close stops watching and releases the fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	base := filepath.Base(w.feedPath)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// A writer may touch the feed several times per reading; signal
			// once the burst settles.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case w.onChange <- struct{}{}:
				default: // a reload is already pending
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.onError <- err:
			default:
			}
		}
	}
}
