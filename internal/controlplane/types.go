package controlplane

import (
	"time"

	"github.com/Ermachok/yandex-drive-sych/internal/mirror"
)

const (
	CodeOK              = "OK"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type StatusResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"ts"`
	Version   string         `json:"version"`
	Revision  string         `json:"revision"`
	Mirror    *mirror.Status `json:"mirror"`
}

type FileState struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mtime"`
}

type StateResponse struct {
	Count int          `json:"count"`
	Files []*FileState `json:"files"`
}

type SyncResponse struct {
	Code string `json:"code"`
}
