package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewWatcher(t *testing.T) {
	w, err := New(Config{
		Directories: []string{t.TempDir()},
		Debounce:    100,
	}, func(string) (int, error) { return 0, nil })
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected non-nil watcher")
	}
	w.watcher.Close()
}

func TestProcessFileRecordsEvent(t *testing.T) {
	w, _ := New(Config{}, func(path string) (int, error) {
		return 3, nil
	})
	defer w.watcher.Close()

	w.processFile("/tmp/budget.xlsx", "WRITE")

	events := w.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Status != "processed" || e.Comments != 3 {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestProcessFileRecordsError(t *testing.T) {
	w, _ := New(Config{}, func(path string) (int, error) {
		return 0, os.ErrNotExist
	})
	defer w.watcher.Close()

	w.processFile("/tmp/gone.xlsx", "WRITE")

	events := w.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Status != "error" || events[0].Error == "" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestWatcherPicksUpWrite(t *testing.T) {
	dir := t.TempDir()

	processed := make(chan string, 1)
	w, err := New(Config{Directories: []string{dir}, Debounce: 50}, func(path string) (int, error) {
		processed <- path
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "budget.xlsx")
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-processed:
		if filepath.Base(got) != "budget.xlsx" {
			t.Errorf("processed %q", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the watcher to process the file")
	}
}

func TestWatcherIgnoresNonWorkbooks(t *testing.T) {
	w, _ := New(Config{Debounce: 10}, func(path string) (int, error) {
		t.Errorf("handler should not run for %s", path)
		return 0, nil
	})
	defer w.watcher.Close()

	w.handleEvent(eventFor("/tmp/notes.txt"))
	w.handleEvent(eventFor("/tmp/~$budget.xlsx"))

	time.Sleep(100 * time.Millisecond)
	if len(w.Events()) != 0 {
		t.Errorf("expected no events, got %+v", w.Events())
	}
}

func eventFor(path string) fsnotify.Event {
	return fsnotify.Event{Name: path, Op: fsnotify.Write}
}
