package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Ermachok/yandex-drive-sych/internal/remote"
	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

var ErrLocked = errors.New("directory is mirrored by another process")

type ManagerConfig struct {
	LocalDir    string
	Interval    time.Duration
	CallTimeout time.Duration
	LockFile    string
	Watch       bool
	Ignore      []string
	IgnoreJunk  bool

	// Fs and Clock default to the real ones.
	Fs    afero.Fs
	Clock clockwork.Clock
}

// Status is the state reported by the control plane.
type Status struct {
	Running  bool          `json:"running"`
	Provider string        `json:"provider"`
	Dir      string        `json:"dir"`
	Interval time.Duration `json:"interval"`
	Files    int           `json:"files"`
	Polls    uint64        `json:"polls"`
	LastPoll time.Time     `json:"lastPoll"`
	Stats    StatsSnapshot `json:"stats"`
}

// Manager wires the monitor to the controller. Batches reach the controller
// over an unbuffered channel and are handled one at a time.
type Manager struct {
	config     *ManagerConfig
	controller *Controller
	monitor    *Monitor
	watcher    *FileWatcher
	lock       *flock.Flock
	batches    chan []Change
}

func NewManager(config *ManagerConfig, storage remote.Storage) (*Manager, error) {
	if config.LocalDir == "" {
		return nil, fmt.Errorf("local dir is required")
	}
	if storage == nil {
		return nil, fmt.Errorf("remote storage is required")
	}

	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ignore := NewIgnoreList(IgnorePatterns(config.IgnoreJunk, config.Ignore)...)
	scanner := NewScanner(config.Fs, ignore)

	m := &Manager{
		config:     config,
		controller: NewController(config.LocalDir, storage, scanner, WithCallTimeout(config.CallTimeout)),
		monitor:    NewMonitor(config.LocalDir, scanner, WithInterval(config.Interval), WithClock(clock)),
		batches:    make(chan []Change),
	}

	if config.LockFile != "" {
		m.lock = flock.New(config.LockFile)
	}

	if config.Watch {
		m.watcher = NewFileWatcher(config.LocalDir, ignore, m.monitor.Trigger)
	}

	return m, nil
}

func (m *Manager) Controller() *Controller {
	return m.controller
}

func (m *Manager) Monitor() *Monitor {
	return m.monitor
}

// Run mirrors the directory until ctx is cancelled. A batch being handled
// when ctx ends is finished before Run returns.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	m.controller.SyncInitialState(ctx)
	if ctx.Err() != nil {
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		m.dispatch(context.WithoutCancel(egCtx))
		return nil
	})

	if err := m.monitor.Start(m.enqueue); err != nil {
		close(m.batches)
		_ = eg.Wait()
		return fmt.Errorf("start monitor: %w", err)
	}

	if m.watcher != nil {
		if err := m.watcher.Start(egCtx); err != nil {
			slog.Warn("file watcher unavailable, polling only", "dir", m.config.LocalDir, "error", err)
			m.watcher = nil
		}
	}

	eg.Go(func() error {
		<-egCtx.Done()
		if m.watcher != nil {
			m.watcher.Stop()
		}
		m.monitor.Stop()
		close(m.batches)
		return nil
	})

	return eg.Wait()
}

// Trigger requests an immediate poll.
func (m *Manager) Trigger() {
	m.monitor.Trigger()
}

func (m *Manager) CurrentState() Snapshot {
	return m.monitor.CurrentState()
}

func (m *Manager) Status() *Status {
	state := m.monitor.CurrentState()
	polls, lastPoll := m.monitor.Polls()
	return &Status{
		Running:  m.monitor.Running(),
		Provider: m.controller.Storage().Name(),
		Dir:      m.config.LocalDir,
		Interval: m.monitor.interval,
		Files:    len(state),
		Polls:    polls,
		LastPoll: lastPoll,
		Stats:    m.controller.Stats().Snapshot(),
	}
}

func (m *Manager) enqueue(changes []Change) {
	m.batches <- changes
}

func (m *Manager) dispatch(ctx context.Context) {
	for changes := range m.batches {
		m.controller.HandleChanges(ctx, changes)
	}
}

func (m *Manager) acquire() error {
	if m.lock == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(m.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	locked, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, m.lock.Path())
	}
	return nil
}

func (m *Manager) release() {
	if m.lock == nil || !m.lock.Locked() {
		return
	}
	if err := m.lock.Unlock(); err != nil {
		slog.Warn("release lock", "path", m.lock.Path(), "error", err)
		return
	}
	_ = os.Remove(m.lock.Path())
}
