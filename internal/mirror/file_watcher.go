package mirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rjeczalik/notify"
)

const (
	watcherBufferSize      = 64
	defaultWatcherDebounce = 200 * time.Millisecond
	watchedEvents          = notify.Create | notify.Remove | notify.Write | notify.Rename
)

// FileWatcher turns file system events in the top level of a directory
// into early polls. Bursts of events are merged into one call.
type FileWatcher struct {
	dir      string
	ignore   *IgnoreList
	debounce time.Duration
	onEvent  func()

	events chan notify.EventInfo
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewFileWatcher(dir string, ignore *IgnoreList, onEvent func()) *FileWatcher {
	return &FileWatcher{
		dir:      dir,
		ignore:   ignore,
		debounce: defaultWatcherDebounce,
		onEvent:  onEvent,
	}
}

func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.events = make(chan notify.EventInfo, watcherBufferSize)
	fw.done = make(chan struct{})
	if err := notify.Watch(fw.dir, fw.events, watchedEvents); err != nil {
		return err
	}
	slog.Info("file watcher start", "dir", fw.dir)

	fw.wg.Add(1)
	go fw.loop(ctx)
	return nil
}

func (fw *FileWatcher) Stop() {
	if fw.events == nil {
		return
	}
	notify.Stop(fw.events)
	close(fw.done)
	fw.wg.Wait()
	fw.events = nil
	slog.Info("file watcher stopped", "dir", fw.dir)
}

func (fw *FileWatcher) loop(ctx context.Context) {
	defer fw.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case event := <-fw.events:
			if fw.ignore.ShouldIgnore(event.Path()) {
				continue
			}
			slog.Debug("file watcher", "event", event.Event(), "path", event.Path())
			if pending == nil {
				pending = time.After(fw.debounce)
			}
		case <-pending:
			pending = nil
			fw.onEvent()
		}
	}
}
