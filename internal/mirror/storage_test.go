package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Ermachok/yandex-drive-sych/internal/remote"
)

type storageCall struct {
	Op   string
	Path string
}

// fakeStorage records every call. Responses are looked up by "op:path";
// unmatched calls answer with the success code of the operation.
type fakeStorage struct {
	mu      sync.Mutex
	calls   []storageCall
	results map[string]*remote.Result
	errs    map[string]error
	entries []*remote.Entry
	listErr error
	onCall  func(op, path string)
}

var _ remote.Storage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		results: make(map[string]*remote.Result),
		errs:    make(map[string]error),
	}
}

func (f *fakeStorage) Name() string { return "fake" }

func (f *fakeStorage) Upload(ctx context.Context, localPath string) (*remote.Result, error) {
	return f.record("upload", localPath, http.StatusCreated)
}

func (f *fakeStorage) Update(ctx context.Context, localPath string) (*remote.Result, error) {
	return f.record("update", localPath, http.StatusCreated)
}

func (f *fakeStorage) Delete(ctx context.Context, name string) (*remote.Result, error) {
	return f.record("delete", name, http.StatusNoContent)
}

func (f *fakeStorage) List(ctx context.Context) ([]*remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, storageCall{Op: "list"})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeStorage) respond(op, path string, result *remote.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[op+":"+path] = result
}

func (f *fakeStorage) fail(op, path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op+":"+path] = err
}

func (f *fakeStorage) Calls() []storageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storageCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeStorage) CallsFor(op string) []string {
	var paths []string
	for _, c := range f.Calls() {
		if c.Op == op {
			paths = append(paths, c.Path)
		}
	}
	return paths
}

func (f *fakeStorage) record(op, path string, okCode int) (*remote.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, storageCall{Op: op, Path: path})
	key := op + ":" + path
	err := f.errs[key]
	result, ok := f.results[key]
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(op, path)
	}
	if err != nil {
		return nil, err
	}
	if ok {
		return result, nil
	}
	return &remote.Result{StatusCode: okCode}, nil
}

var errNetwork = errors.New("connection reset")

func entries(names ...string) []*remote.Entry {
	out := make([]*remote.Entry, 0, len(names))
	for _, name := range names {
		out = append(out, &remote.Entry{Name: name, Path: fmt.Sprintf("disk:/backup/%s", name), Type: "file"})
	}
	return out
}
