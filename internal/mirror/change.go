package mirror

import (
	"fmt"
	"path/filepath"
)

type ChangeKind int

const (
	ChangeNew ChangeKind = iota + 1
	ChangeModified
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func ParseChangeKind(s string) (ChangeKind, error) {
	switch s {
	case "new":
		return ChangeNew, nil
	case "modified":
		return ChangeModified, nil
	case "deleted":
		return ChangeDeleted, nil
	}
	return 0, fmt.Errorf("unknown change kind %q", s)
}

// Change is one difference between two consecutive snapshots.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

func (c Change) Name() string {
	return filepath.Base(c.Path)
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Path)
}
