package autoload

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kestrel-mcp/corekit/pkg/mcplog"
)

// debounceWindow matches the pack's watcher example: enough to
// coalesce an editor's save-as-multiple-writes into one reload without
// feeling laggy to a human editing manifests.
const debounceWindow = 100 * time.Millisecond

// Watcher reloads a Loader's root directory whenever a manifest file
// under it changes, debounced per-path so a burst of writes to the
// same file collapses into a single reload.
type Watcher struct {
	loader  *Loader
	fsw     *fsnotify.Watcher
	log     mcplog.Logger
	mu      sync.Mutex
	timers  map[string]*time.Timer
	onLoad  func(tools, resources, prompts int)
	closeCh chan struct{}
}

// NewWatcher wraps loader with an fsnotify watch over its root
// directory's tools/resources/prompts subdirectories. onLoad, if
// non-nil, is called after every debounced reload with the new counts.
func NewWatcher(loader *Loader, log mcplog.Logger, onLoad func(tools, resources, prompts int)) (*Watcher, error) {
	if log == nil {
		log = mcplog.Noop{}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{loader: loader, fsw: fsw, log: log, timers: make(map[string]*time.Timer), onLoad: onLoad, closeCh: make(chan struct{})}
	for _, sub := range []string{"tools", "resources", "prompts"} {
		dir := loader.root + "/" + sub
		if err := fsw.Add(dir); err != nil {
			log.Debug("autoload: not watching %s: %v", dir, err)
		}
	}
	return w, nil
}

// Run processes filesystem events until Close is called.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("autoload: watch error: %v", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, exists := w.timers[path]; exists {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceWindow, func() {
		tools, resources, prompts := w.loader.Reload()
		w.log.Info("autoload: reloaded after change to %s (tools=%d resources=%d prompts=%d)", path, tools, resources, prompts)
		if w.onLoad != nil {
			w.onLoad(tools, resources, prompts)
		}
	})
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.closeCh)
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
