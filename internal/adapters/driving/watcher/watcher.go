// Package watcher ingests study documents dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// DefaultDelay is how long a file must stay quiet before it is ingested.
const DefaultDelay = 500 * time.Millisecond

// Ingester is the part of the document service the watcher drives.
type Ingester interface {
	Ingest(ctx context.Context, content []byte, filename string) (*domain.Document, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period merged events must wait.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithOnIngest registers a callback run after every successful ingest.
func WithOnIngest(fn func(domain.Document)) Option {
	return func(w *Watcher) {
		w.onIngest = fn
	}
}

// Watcher turns create and write events in a directory into ingests.
// Events for the same file are merged until it has been quiet for the
// configured delay, and files are ingested one at a time.
type Watcher struct {
	dir      string
	docs     Ingester
	delay    time.Duration
	onIngest func(domain.Document)

	mu      sync.Mutex
	pending map[string]time.Time
	done    chan struct{}
}

// New creates a watcher for dir.
func New(dir string, docs Ingester, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		docs:    docs,
		delay:   DefaultDelay,
		pending: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching in the background and returns once the
// directory is being observed. The loop stops when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.docs == nil {
		return fmt.Errorf("watcher: document service is required")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox %s: %w", w.dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("watching %s for new documents", w.dir)
	go w.loop(ctx, fsw)
	return nil
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer fsw.Close()

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.accept(event) {
				continue
			}
			logger.Debug("inbox event %s %s", event.Op, event.Name)
			w.mark(event.Name)
			timer.Reset(w.delay)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("inbox watcher: %v", err)

		case <-timer.C:
			if wait := w.flush(ctx); wait > 0 {
				timer.Reset(wait)
			}
		}
	}
}

// accept keeps create and write events for supported, non-hidden files.
func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	_, err := domain.DocumentTypeFromFilename(base)
	return err == nil
}

func (w *Watcher) mark(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// flush ingests every file that has been quiet for the delay and returns
// how long to wait for the rest, or zero when nothing is pending.
func (w *Watcher) flush(ctx context.Context) time.Duration {
	now := time.Now()
	var ready []string
	var wait time.Duration

	w.mu.Lock()
	for path, seen := range w.pending {
		age := now.Sub(seen)
		if age >= w.delay {
			ready = append(ready, path)
			delete(w.pending, path)
			continue
		}
		if left := w.delay - age; wait == 0 || left < wait {
			wait = left
		}
	}
	w.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		if ctx.Err() != nil {
			return 0
		}
		w.ingest(ctx, path)
	}
	return wait
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		// Removed or renamed before it settled.
		logger.Debug("skip %s: %v", path, err)
		return
	}

	doc, err := w.docs.Ingest(ctx, content, filepath.Base(path))
	if err != nil {
		logger.Warn("ingest %s: %v", path, err)
		return
	}

	logger.Info("ingested %s as %s (%d chunks)", doc.Filename, doc.ID, doc.ChunkCount)
	if w.onIngest != nil {
		w.onIngest(*doc)
	}
}
