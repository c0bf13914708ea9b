// Package watch turns filesystem activity into debounced refresh ticks.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long a burst of events must settle before a tick fires.
const Debounce = 150 * time.Millisecond

// PollInterval is the fixed cadence of the fallback when the watch primitive
// is unavailable.
const PollInterval = 2 * time.Second

// Watcher emits one opaque tick per settled burst of filesystem events on
// the worktree, the index file and the HEAD file. Ticks coalesce: the
// channel holds at most one.
type Watcher struct {
	Ticks   chan struct{}
	Polling bool

	root string
	fw   *fsnotify.Watcher
	done chan struct{}
}

// New watches root recursively (skipping .git) plus .git/index and
// .git/HEAD. The returned error means the watch primitive failed to
// initialize; callers should fall back to NewPolling.
func New(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		Ticks: make(chan struct{}, 1),
		root:  root,
		fw:    fw,
		done:  make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	gitDir := filepath.Join(root, ".git")
	for _, p := range []string{filepath.Join(gitDir, "index"), filepath.Join(gitDir, "HEAD")} {
		if _, err := os.Stat(p); err == nil {
			_ = fw.Add(p)
		}
	}
	go w.run()
	return w, nil
}

// NewPolling emits a tick every PollInterval without watching anything.
func NewPolling() *Watcher {
	w := &Watcher{
		Ticks:   make(chan struct{}, 1),
		Polling: true,
		done:    make(chan struct{}),
	}
	go func() {
		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				w.signal()
			}
		}
	}()
	return w
}

// Close releases the OS watch resources and stops tick delivery.
func (w *Watcher) Close() {
	close(w.done)
	if w.fw != nil {
		_ = w.fw.Close()
	}
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(Debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.signal()

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.Ticks <- struct{}{}:
	default:
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != root {
			return filepath.SkipDir
		}
		if addErr := w.fw.Add(path); addErr != nil && path == root {
			return addErr
		}
		return nil
	})
}

// maybeWatchNewDir registers directories created under the worktree so
// events inside them keep arriving.
func (w *Watcher) maybeWatchNewDir(path string) {
	if strings.HasPrefix(filepath.Base(path), ".git") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = w.addTree(path)
}
