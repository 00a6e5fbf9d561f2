// Package watcher monitors workspace folders for ignore file changes and
// dispatches them to callbacks.
package watcher

import (
	"sync"

	"github.com/CageChen/hideme/internal/hidelist"
	"github.com/CageChen/hideme/internal/utils"
	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

// File system event types.
const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a change to an ignore file
type Event struct {
	Type EventType
	Path string
}

// Callback is a function called when an ignore file changes
type Callback func(Event)

// Watcher watches the top level of each workspace folder. Callbacks run one
// at a time on the watcher's event loop, in delivery order.
type Watcher struct {
	watcher    *fsnotify.Watcher
	roots      []string
	ignoreFile string
	log        utils.Logger
	callbacks  []Callback
	mu         sync.RWMutex
	done       chan struct{}
	stopOnce   sync.Once
}

// New creates a watcher for the given folder roots
func New(roots []string, ignoreFile string, log utils.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if ignoreFile == "" {
		ignoreFile = hidelist.DefaultFileName
	}
	if log == nil {
		log = utils.NoopLogger{}
	}

	return &Watcher{
		watcher:    w,
		roots:      roots,
		ignoreFile: ignoreFile,
		log:        log,
		done:       make(chan struct{}),
	}, nil
}

// OnChange registers a callback for ignore file events
func (w *Watcher) OnChange(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching all roots. A root that cannot be watched is logged
// and skipped.
func (w *Watcher) Start() error {
	for _, root := range w.roots {
		if err := w.watcher.Add(root); err != nil {
			w.log.Warn("Cannot watch %s: %v", root, err)
			continue
		}
		w.log.Debug("Watching %s", root)
	}

	go w.eventLoop()
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !hidelist.IsIgnoreFile(event.Name, w.ignoreFile) {
		return
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Has(fsnotify.Remove):
		eventType = EventRemove
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return
	}

	e := Event{
		Type: eventType,
		Path: event.Name,
	}
	w.log.Debug("%s %s", e.Type, e.Path)

	w.mu.RLock()
	callbacks := make([]Callback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}
