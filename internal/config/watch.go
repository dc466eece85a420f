package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watcher reports changes to a config file.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

// Watch calls onChange after the file at path is written, created or
// replaced. Bursts of events are coalesced. The parent directory is watched so
// editors that save by rename are still seen. onErr, if non-nil, receives
// watcher errors.
func Watch(path string, onChange func(), onErr func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	w := &Watcher{fs: fw, done: make(chan struct{})}
	go w.run(target, onChange, onErr)
	return w, nil
}

func (w *Watcher) run(target string, onChange func(), onErr func(error)) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule(onChange)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if onErr != nil {
				onErr(err)
			}
		}
	}
}

func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, onChange)
}

// Close stops watching and waits for the event loop to exit.
// A pending debounced callback is cancelled.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fs.Close()
		<-w.done

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}
