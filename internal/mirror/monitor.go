package mirror

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultInterval = 10 * time.Second

var ErrMonitorRunning = errors.New("monitor already running")

// ChangeHandler receives every non-empty batch of changes. It runs on the
// monitor goroutine; the next poll waits until it returns.
type ChangeHandler func(changes []Change)

type MonitorOption func(*Monitor)

func WithClock(clock clockwork.Clock) MonitorOption {
	return func(m *Monitor) { m.clock = clock }
}

func WithInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// Monitor polls a directory and reports the difference between consecutive
// snapshots.
type Monitor struct {
	dir      string
	scanner  *Scanner
	interval time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	state   Snapshot
	polls   uint64
	lastRun time.Time

	trigger chan struct{}
}

func NewMonitor(dir string, scanner *Scanner, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		dir:      dir,
		scanner:  scanner,
		interval: DefaultInterval,
		clock:    clockwork.NewRealClock(),
		trigger:  make(chan struct{}, 1),
		state:    Snapshot{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Start(onChange ChangeHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrMonitorRunning
	}

	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	slog.Info("monitor start", "dir", m.dir, "interval", m.interval)
	go m.run(onChange, m.stop, m.done)
	return nil
}

// Stop halts the loop and waits for the running poll to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		slog.Warn("monitor is not running", "dir", m.dir)
		return
	}
	m.running = false
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	<-done
	slog.Info("monitor stopped", "dir", m.dir)
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// CurrentState returns a copy of the most recent snapshot.
func (m *Monitor) CurrentState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Trigger asks for a poll without waiting for the interval. Requests made
// while one is pending are merged.
func (m *Monitor) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

func (m *Monitor) Polls() (uint64, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls, m.lastRun
}

func (m *Monitor) run(onChange ChangeHandler, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var previous Snapshot

	// a timer and not a ticker, slow handlers must not queue ticks
	var timer clockwork.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		current := m.poll()

		if previous != nil {
			if changes := Diff(previous, current); len(changes) > 0 {
				slog.Debug("monitor changes", "dir", m.dir, "count", len(changes))
				if onChange != nil {
					onChange(changes)
				}
			}
		}
		previous = current

		if timer == nil {
			timer = m.clock.NewTimer(m.interval)
		} else {
			timer.Reset(m.interval)
		}

		select {
		case <-stop:
			return
		case <-m.trigger:
			timer.Stop()
		case <-timer.Chan():
		}

		select {
		case <-stop:
			return
		default:
		}
	}
}

func (m *Monitor) poll() Snapshot {
	current, err := m.scanner.Scan(m.dir)
	if err != nil {
		slog.Error("monitor scan", "dir", m.dir, "error", err)
		current = Snapshot{}
	}

	m.mu.Lock()
	m.state = current
	m.polls++
	m.lastRun = m.clock.Now()
	m.mu.Unlock()

	return current
}
