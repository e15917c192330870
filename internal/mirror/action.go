package mirror

import (
	"context"
	"net/http"

	"github.com/Ermachok/yandex-drive-sych/internal/remote"
)

// Operation performs one remote call for a change.
type Operation func(ctx context.Context, storage remote.Storage, change Change) (*remote.Result, error)

// Action describes how a change kind is replayed remotely and how the
// response is judged.
type Action struct {
	Op          string
	Call        Operation
	SuccessCode int
	AltCode     int
	SuccessMsg  string
	AltMsg      string
	ErrorMsg    string
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAccepted
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAccepted:
		return "accepted"
	default:
		return "error"
	}
}

// Classify matches a status code against the action's expected codes.
// The alternate code only counts when the action declares one.
func (a *Action) Classify(status int) Outcome {
	switch {
	case status == a.SuccessCode:
		return OutcomeSuccess
	case a.AltCode != 0 && status == a.AltCode:
		return OutcomeAccepted
	default:
		return OutcomeError
	}
}

func uploadOp(ctx context.Context, storage remote.Storage, change Change) (*remote.Result, error) {
	return storage.Upload(ctx, change.Path)
}

func updateOp(ctx context.Context, storage remote.Storage, change Change) (*remote.Result, error) {
	return storage.Update(ctx, change.Path)
}

func deleteOp(ctx context.Context, storage remote.Storage, change Change) (*remote.Result, error) {
	return storage.Delete(ctx, change.Name())
}

// deleteEntryOp deletes a listed remote entry by its name as returned by List,
// which may include a sub-path.
func deleteEntryOp(ctx context.Context, storage remote.Storage, change Change) (*remote.Result, error) {
	return storage.Delete(ctx, change.Path)
}

func defaultActions() map[ChangeKind]*Action {
	return map[ChangeKind]*Action{
		ChangeNew: {
			Op:          "upload",
			Call:        uploadOp,
			SuccessCode: http.StatusCreated,
			SuccessMsg:  "File uploaded",
			ErrorMsg:    "Upload error",
		},
		ChangeModified: {
			Op:          "update",
			Call:        updateOp,
			SuccessCode: http.StatusCreated,
			SuccessMsg:  "Cloud updated",
			ErrorMsg:    "Update error",
		},
		ChangeDeleted: {
			Op:          "delete",
			Call:        deleteOp,
			SuccessCode: http.StatusNoContent,
			AltCode:     http.StatusAccepted,
			SuccessMsg:  "File deleted",
			AltMsg:      "Removing began",
			ErrorMsg:    "Deletion error",
		},
	}
}
