package mirror

import (
	"sort"
)

// Diff returns the changes that turn previous into current, sorted by path.
// Comparing a snapshot with itself yields no changes.
func Diff(previous, current Snapshot) []Change {
	prevPaths := previous.Paths()
	currPaths := current.Paths()

	changes := make([]Change, 0)

	for path := range prevPaths.Difference(currPaths).Iter() {
		changes = append(changes, Change{Path: path, Kind: ChangeDeleted})
	}

	for path := range currPaths.Difference(prevPaths).Iter() {
		changes = append(changes, Change{Path: path, Kind: ChangeNew})
	}

	for path := range prevPaths.Intersect(currPaths).Iter() {
		if !previous[path].Equal(current[path]) {
			changes = append(changes, Change{Path: path, Kind: ChangeModified})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})

	return changes
}
