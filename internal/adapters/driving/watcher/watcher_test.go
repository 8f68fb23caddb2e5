package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

type fakeIngester struct {
	mu       sync.Mutex
	calls    []string
	contents []string
	err      error
}

func (f *fakeIngester) Ingest(_ context.Context, content []byte, filename string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filename)
	f.contents = append(f.contents, string(content))
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-" + filename, Filename: filename, ChunkCount: 1}, nil
}

func (f *fakeIngester) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeIngester) lastContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.contents) == 0 {
		return ""
	}
	return f.contents[len(f.contents)-1]
}

func startWatcher(t *testing.T, docs Ingester, opts ...Option) (string, context.CancelFunc, *Watcher) {
	t.Helper()
	dir := t.TempDir()
	w := New(dir, docs, append([]Option{WithDelay(50 * time.Millisecond)}, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Watch(ctx))
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})
	return dir, cancel, w
}

func TestWatcher_IngestsSupportedFiles(t *testing.T) {
	docs := &fakeIngester{}
	dir, _, _ := startWatcher(t, docs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("cells"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		return len(docs.getCalls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"notes.txt"}, docs.getCalls())
}

func TestWatcher_MergesRapidWrites(t *testing.T) {
	docs := &fakeIngester{}
	dir, _, _ := startWatcher(t, docs, WithDelay(200*time.Millisecond))

	path := filepath.Join(dir, "lecture.txt")
	for _, content := range []string{"one", "one two", "one two three"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return len(docs.getCalls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Len(t, docs.getCalls(), 1)
	assert.Equal(t, "one two three", docs.lastContent())
}

func TestWatcher_ContinuesAfterIngestError(t *testing.T) {
	docs := &fakeIngester{err: errors.New("extract failed")}
	dir, _, _ := startWatcher(t, docs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	assert.Eventually(t, func() bool {
		return len(docs.getCalls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	assert.Eventually(t, func() bool {
		return len(docs.getCalls()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_OnIngestCallback(t *testing.T) {
	docs := &fakeIngester{}
	got := make(chan domain.Document, 1)
	dir, _, _ := startWatcher(t, docs, WithOnIngest(func(d domain.Document) { got <- d }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides.pptx"), []byte("pptx"), 0o644))

	select {
	case doc := <-got:
		assert.Equal(t, "slides.pptx", doc.Filename)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for ingest")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	_, cancel, w := startWatcher(t, &fakeIngester{})
	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Watch_Errors(t *testing.T) {
	t.Run("nil ingester", func(t *testing.T) {
		w := New(t.TempDir(), nil)
		assert.Error(t, w.Watch(context.Background()))
	})

	t.Run("creates missing inbox", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "inbox")
		ctx, cancel := context.WithCancel(context.Background())
		w := New(dir, &fakeIngester{})
		require.NoError(t, w.Watch(ctx))
		cancel()
		<-w.Done()

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestWatcher_Accept(t *testing.T) {
	w := New("/tmp", &fakeIngester{})

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create pdf", fsnotify.Event{Name: "/in/a.pdf", Op: fsnotify.Create}, true},
		{"write docx", fsnotify.Event{Name: "/in/a.DOCX", Op: fsnotify.Write}, true},
		{"remove", fsnotify.Event{Name: "/in/a.txt", Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: "/in/a.txt", Op: fsnotify.Chmod}, false},
		{"unsupported", fsnotify.Event{Name: "/in/a.md", Op: fsnotify.Create}, false},
		{"office lock file", fsnotify.Event{Name: "/in/~$a.docx", Op: fsnotify.Create}, false},
		{"hidden", fsnotify.Event{Name: "/in/.a.txt", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.accept(tt.event))
		})
	}
}
