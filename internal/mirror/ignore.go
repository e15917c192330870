package mirror

import (
	"log/slog"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// JunkPatterns are OS and editor leftovers. They are only skipped when
// ignore_junk is enabled; by default every regular file is mirrored.
var JunkPatterns = []string{
	// OS-specific
	".DS_Store",
	"Thumbs.db",
	// editors
	"*.swp",
	"*.swo",
	"*.tmp",
	`~\$*`,
	".~lock.*",
}

// IgnoreList drops files from snapshots. Patterns use gitignore syntax
// and are matched against the file's base name. An empty list keeps
// everything.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
	rules  int
}

func NewIgnoreList(patterns ...string) *IgnoreList {
	lines := make([]string, 0, len(patterns))
	for _, line := range patterns {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	l := &IgnoreList{rules: len(lines)}
	if len(lines) > 0 {
		slog.Debug("ignore list", "rules", len(lines))
		l.ignore = gitignore.CompileIgnoreLines(lines...)
	}
	return l
}

// IgnorePatterns combines the optional junk patterns with user patterns.
func IgnorePatterns(junk bool, extra []string) []string {
	var patterns []string
	if junk {
		patterns = append(patterns, JunkPatterns...)
	}
	return append(patterns, extra...)
}

func (l *IgnoreList) ShouldIgnore(path string) bool {
	if l == nil || l.ignore == nil {
		return false
	}
	return l.ignore.MatchesPath(filepath.Base(path))
}

func (l *IgnoreList) Rules() int {
	if l == nil {
		return 0
	}
	return l.rules
}
