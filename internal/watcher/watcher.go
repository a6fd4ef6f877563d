package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/envlink/internal/log"
)

// activationFile is rewritten by `poetry env use`.
const activationFile = "envs.toml"

// Watcher calls onChange after environment changes in dir settle.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(context.Context) error

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Watcher. Nothing is watched until Start or Run.
func New(dir string, debounce time.Duration, onChange func(context.Context) error) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("onChange cannot be nil")
	}
	if dir == "" {
		return nil, errors.New("watch directory cannot be empty")
	}
	if debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %s", debounce)
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching dir. Callbacks receive ctx.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	log.Infof("watching %s for environment changes", w.dir)

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop halts the watcher and waits for a running callback to return. Calls
// after the first are no-ops.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	w.wg.Wait()
	return err
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				log.Tracef("ignoring %s", event)
				continue
			}
			log.Debugf("environment change: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher error: %v", err)

		case <-fire:
			fire = nil
			if err := w.onChange(ctx); err != nil {
				log.Errorf("relink failed: %v", err)
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether event can change which environment is active.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	return event.Has(fsnotify.Write) && filepath.Base(event.Name) == activationFile
}
