// Package watcher reloads snapshots when their source changes on disk. It
// watches a single file or a directory of candidate sources, using fsnotify
// where it works and stat polling on remote filesystems.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/stageboard/pkg/debug"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked with the changed path.
func WithOnChange(fn func(path string)) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// WithExtensions limits directory watches to files with these extensions
// (".json", ".db", ...). Ignored when watching a single file.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			w.exts[strings.ToLower(e)] = true
		}
	}
}

// Watcher monitors a snapshot file, or a directory of them, for changes.
type Watcher struct {
	path             string
	dirMode          bool
	exts             map[string]bool
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(string)
	onError          func(error)
	forcePoll        bool
	fsType           FilesystemType

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        stamp

	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan string
}

// stamp summarizes what polling compares between ticks.
type stamp struct {
	mtime  time.Time
	size   int64
	newest string
}

// New creates a watcher for path. A directory path watches every matching
// file inside it.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func(string) {},
		onError:          func(error) {},
		changeCh:         make(chan string, 1),
	}
	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		w.dirMode = true
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.useFallback = false
	w.fsType = DetectFilesystemType(w.path)
	forcePoll := w.forcePoll || envBool("STAGEBOARD_FORCE_POLL")
	if forcePoll || isRemoteFilesystem(w.fsType) {
		w.useFallback = true
	}

	st, err := w.stat()
	if err != nil && os.IsPermission(err) {
		w.cancel()
		return ErrPermission
	}
	// A missing file is fine; it may be created later.
	w.last = st

	if !w.useFallback {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// Watch the directory, not the file: exporters replace files atomically.
			dir := w.path
			if !w.dirMode {
				dir = filepath.Dir(w.path)
			}
			if err := fsw.Add(dir); err != nil {
				fsw.Close()
				w.useFallback = true
			} else {
				w.fsWatcher = fsw
				go w.watchFsnotify(ctx, fsw)
			}
		} else {
			w.useFallback = true
		}
	}

	if w.useFallback {
		go w.watchPolling(ctx)
	}

	debug.Log("watcher: %s (dir=%v fs=%s polling=%v)", w.path, w.dirMode, w.fsType, w.useFallback)
	w.started = true
	return nil
}

// Stop stops watching. The Changed channel stays open so a pending receiver
// never sees a spurious zero value.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed delivers the path of each debounced change.
func (w *Watcher) Changed() <-chan string {
	return w.changeCh
}

// Path returns the watched path.
func (w *Watcher) Path() string {
	return w.path
}

// IsDir reports whether a directory is being watched.
func (w *Watcher) IsDir() bool {
	return w.dirMode
}

// FilesystemType returns the best-effort filesystem classification for the watched path.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// matches reports whether an event for name concerns us.
func (w *Watcher) matches(name string) bool {
	if !w.dirMode {
		return filepath.Base(name) == filepath.Base(w.path)
	}
	if filepath.Dir(name) != w.path {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(name))]
}

// stat returns the file's stamp, or in directory mode the newest mtime and
// summed size over matching files.
func (w *Watcher) stat() (stamp, error) {
	if !w.dirMode {
		info, err := os.Stat(w.path)
		if err != nil {
			return stamp{}, err
		}
		return stamp{mtime: info.ModTime(), size: info.Size(), newest: w.path}, nil
	}

	entries, err := os.ReadDir(w.path)
	if err != nil {
		return stamp{}, err
	}
	var st stamp
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		full := filepath.Join(w.path, e.Name())
		if !w.matches(full) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.size += info.Size()
		if info.ModTime().After(st.mtime) {
			st.mtime = info.ModTime()
			st.newest = full
		}
	}
	return st, nil
}

func (w *Watcher) watchFsnotify(ctx context.Context, fsw *fsnotify.Watcher) {
	events := fsw.Events
	errs := fsw.Errors

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if !w.matches(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				if !w.dirMode {
					w.onError(ErrFileRemoved)
				}

			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				name := event.Name
				w.debouncer.Trigger(func() { w.notifyChange(name) })
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			st, err := w.stat()
			if err != nil {
				switch {
				case os.IsNotExist(err):
					w.mu.RLock()
					hadFile := !w.last.mtime.IsZero()
					w.mu.RUnlock()
					if hadFile {
						w.onError(ErrFileRemoved)
					}
				case os.IsPermission(err):
					w.onError(ErrPermission)
				default:
					w.onError(err)
				}
				continue
			}

			w.mu.Lock()
			changed := st.mtime.After(w.last.mtime) || st.size != w.last.size
			if changed {
				w.last = st
			}
			w.mu.Unlock()

			if changed {
				name := st.newest
				w.debouncer.Trigger(func() { w.notifyChange(name) })
			}
		}
	}
}

// notifyChange invokes the callback and signals the change channel.
func (w *Watcher) notifyChange(path string) {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Best-effort: a change racing Stop may still be delivered once.
	if !started {
		return
	}

	debug.Log("watcher: change %s", path)
	w.onChange(path)

	select {
	case w.changeCh <- path:
	default:
	}
}
