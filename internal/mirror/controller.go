package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Ermachok/yandex-drive-sych/internal/remote"
	"github.com/google/uuid"
)

const DefaultCallTimeout = 60 * time.Second

// Controller replays local changes against remote storage and performs the
// initial full mirror.
type Controller struct {
	dir         string
	storage     remote.Storage
	scanner     *Scanner
	actions     map[ChangeKind]*Action
	callTimeout time.Duration
	stats       *SyncStats
	log         *slog.Logger
}

type ControllerOption func(*Controller)

// WithCallTimeout bounds every remote call. Zero disables the bound.
func WithCallTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.callTimeout = d }
}

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

func NewController(dir string, storage remote.Storage, scanner *Scanner, opts ...ControllerOption) *Controller {
	c := &Controller{
		dir:         dir,
		storage:     storage,
		scanner:     scanner,
		actions:     defaultActions(),
		callTimeout: DefaultCallTimeout,
		stats:       &SyncStats{},
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Stats() *SyncStats {
	return c.stats
}

func (c *Controller) Storage() remote.Storage {
	return c.storage
}

// SyncInitialState deletes everything in the remote folder and uploads every
// local file. Item failures are logged and do not stop the pass.
func (c *Controller) SyncInitialState(ctx context.Context) *ReconcileReport {
	report := &ReconcileReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := c.log.With("reconcile", report.ID)
	log.Info("initial sync start", "dir", c.dir, "remote", c.storage.Name())

	entries, err := c.listRemote(ctx)
	if err != nil {
		log.Error("remote list failed, skipping deletes", "error", err)
		report.ListFailed = true
	} else {
		deleteAction := *c.actions[ChangeDeleted]
		deleteAction.Call = deleteEntryOp
		for _, entry := range entries {
			change := Change{Path: entry.Name, Kind: ChangeDeleted}
			outcome := c.apply(ctx, log, &deleteAction, change)
			report.Deletes.add(outcome)
		}
	}

	snap, err := c.scanner.Scan(c.dir)
	if err != nil {
		log.Error("local scan failed, skipping uploads", "dir", c.dir, "error", err)
		report.ScanFailed = true
	} else {
		paths := snap.Paths().ToSlice()
		sort.Strings(paths)

		uploadAction := c.actions[ChangeNew]
		for _, path := range paths {
			outcome := c.apply(ctx, log, uploadAction, Change{Path: path, Kind: ChangeNew})
			report.Uploads.add(outcome)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	c.stats.setReconcile(report)

	log.Info("initial sync done",
		"deleted", report.Deletes.Succeeded+report.Deletes.Accepted,
		"deleteErrors", report.Deletes.Failed,
		"uploaded", report.Uploads.Succeeded,
		"uploadErrors", report.Uploads.Failed,
		"took", report.Duration,
	)
	return report
}

// HandleChanges replays a batch in order. One item failing never stops the
// rest of the batch.
func (c *Controller) HandleChanges(ctx context.Context, changes []Change) *BatchReport {
	report := &BatchReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Changes:   len(changes),
	}
	log := c.log.With("batch", report.ID)

	for _, change := range changes {
		action, ok := c.actions[change.Kind]
		if !ok {
			log.Warn("unknown change kind", "path", change.Path, "kind", change.Kind)
			report.Skipped++
			continue
		}
		report.Counts.add(c.apply(ctx, log, action, change))
	}

	report.Duration = time.Since(report.StartedAt)
	c.stats.setBatch(report)

	log.Debug("batch done",
		"changes", report.Changes,
		"succeeded", report.Succeeded,
		"accepted", report.Accepted,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"took", report.Duration,
	)
	return report
}

// apply runs one remote call and logs its outcome.
func (c *Controller) apply(ctx context.Context, log *slog.Logger, action *Action, change Change) Outcome {
	result, err := c.call(ctx, action, change)
	if err != nil {
		log.Error(action.ErrorMsg, "op", action.Op, "path", change.Path, "kind", change.Kind, "error", err)
		return OutcomeError
	}

	outcome := action.Classify(result.StatusCode)
	switch outcome {
	case OutcomeSuccess:
		log.Info(action.SuccessMsg, "op", action.Op, "path", change.Path, "status", result.StatusCode)
	case OutcomeAccepted:
		log.Info(action.AltMsg, "op", action.Op, "path", change.Path, "status", result.StatusCode)
		if href := result.Href(); href != "" {
			log.Info("Link to check status", "path", change.Path, "href", href)
		}
	default:
		log.Error(action.ErrorMsg, "op", action.Op, "path", change.Path, "kind", change.Kind, "status", result.StatusCode, "body", string(result.Body))
	}
	return outcome
}

func (c *Controller) call(ctx context.Context, action *Action, change Change) (result *remote.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%s panicked: %v", action.Op, r)
		}
	}()

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	result, err = action.Call(ctx, c.storage, change)
	if err == nil && result == nil {
		err = fmt.Errorf("%s returned no result", action.Op)
	}
	return result, err
}

func (c *Controller) listRemote(ctx context.Context) ([]*remote.Entry, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return c.storage.List(ctx)
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.callTimeout)
}
