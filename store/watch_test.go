package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Daily"), 0o755))
	target := filepath.Join(dir, "Daily", "2026-10-19.md")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	w, err := NewWatcher(dir, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Daily", "ignored.png"), []byte("x"), 0o644))

	ev := waitEvent(t, w.Events())
	assert.Equal(t, "Daily/2026-10-19.md", ev.Path)
	assert.Equal(t, OpModified, ev.Op)

	select {
	case extra := <-w.Events():
		t.Fatalf("unexpected extra event %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_NewFolderAndDelete(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	sub := filepath.Join(dir, "Journal")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// the folder watch is added asynchronously
	time.Sleep(100 * time.Millisecond)

	note := filepath.Join(sub, "entry.md")
	require.NoError(t, os.WriteFile(note, []byte("x"), 0o644))
	ev := waitEvent(t, w.Events())
	assert.Equal(t, "Journal/entry.md", ev.Path)
	assert.Equal(t, OpCreated, ev.Op)

	require.NoError(t, os.Remove(note))
	ev = waitEvent(t, w.Events())
	assert.Equal(t, "Journal/entry.md", ev.Path)
	assert.Equal(t, OpDeleted, ev.Op)
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}

func TestMergeOps(t *testing.T) {
	assert.Equal(t, OpCreated, mergeOps(OpCreated, OpModified))
	assert.Equal(t, OpDeleted, mergeOps(OpCreated, OpDeleted))
	assert.Equal(t, OpCreated, mergeOps(OpDeleted, OpCreated))
	assert.Equal(t, "deleted", OpDeleted.String())
}

func TestNewWatcher_RequiresRoot(t *testing.T) {
	_, err := NewWatcher("  ")
	assert.Error(t, err)
}

func TestWatcher_FullBufferDeliversEveryChange(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), WithDebounce(time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	total := watchBuffer + 10
	for i := 0; i < total; i++ {
		w.schedule(fmt.Sprintf("Daily/%03d.md", i), OpDeleted)
	}
	// let every debounce timer fire while nobody reads
	time.Sleep(100 * time.Millisecond)

	seen := make(map[string]bool, total)
	for len(seen) < total {
		ev := waitEvent(t, w.Events())
		assert.Equal(t, OpDeleted, ev.Op)
		seen[ev.Path] = true
	}
	assert.Len(t, seen, total)
}

func TestWatcher_StopReleasesBlockedSends(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), WithDebounce(time.Millisecond))
	require.NoError(t, err)

	for i := 0; i < watchBuffer+5; i++ {
		w.schedule(fmt.Sprintf("n%03d.md", i), OpModified)
	}
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on undelivered events")
	}

	n := 0
	for range w.Events() {
		n++
	}
	assert.Equal(t, watchBuffer, n, "buffered events remain readable after Stop")
}
