package remote

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider = errors.New("remote: unknown provider")
	ErrNoUploadLink    = errors.New("remote: upload link missing")
	ErrFileNotFound    = errors.New("remote: local file not found")
)

// Storage is the capability surface every remote backend implements.
// Upload and Update take a local file path, Delete takes the remote entry name.
type Storage interface {
	Name() string
	Upload(ctx context.Context, localPath string) (*Result, error)
	Update(ctx context.Context, localPath string) (*Result, error)
	Delete(ctx context.Context, name string) (*Result, error)
	List(ctx context.Context) ([]*Entry, error)
}

// Result is the outcome of a remote call that reached the backend.
// Transport failures are returned as errors instead.
type Result struct {
	StatusCode int
	Body       []byte
}

// Href returns the operation link carried in the body, if any.
func (r *Result) Href() string {
	if r == nil || len(r.Body) == 0 {
		return ""
	}

	var link operationLink
	if err := jsonUnmarshal(r.Body, &link); err != nil {
		return ""
	}
	return link.Href
}

func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d %s", r.StatusCode, r.Body)
}

// Entry describes one item in the remote folder.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

type operationLink struct {
	Href      string `json:"href"`
	Method    string `json:"method,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

// jsonResult builds a Result with a JSON encoded body. Used by backends
// whose SDKs do not expose the raw response.
func jsonResult(status int, v any) *Result {
	body, err := jsonMarshal(v)
	if err != nil {
		body = nil
	}
	return &Result{StatusCode: status, Body: body}
}
