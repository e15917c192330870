package controlplane

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ermachok/yandex-drive-sych/internal/version"
)

type handler struct {
	mirror Mirror
}

func (h *handler) Status(c *gin.Context) {
	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Version,
		Revision:  version.Revision,
		Mirror:    h.mirror.Status(),
	})
}

func (h *handler) State(c *gin.Context) {
	state := h.mirror.CurrentState()

	files := make([]*FileState, 0, len(state))
	for path, mtime := range state {
		files = append(files, &FileState{Path: path, ModTime: mtime})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	c.PureJSON(http.StatusOK, &StateResponse{Count: len(files), Files: files})
}

// Sync asks for an immediate poll. The changes are handled asynchronously.
func (h *handler) Sync(c *gin.Context) {
	h.mirror.Trigger()
	c.PureJSON(http.StatusAccepted, &SyncResponse{Code: CodeOK})
}
