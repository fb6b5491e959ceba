package watcher

import (
	"maps"
	"slices"
	"strings"
)

// Op is the kind of change seen for a path.
type Op uint8

const (
	Created Op = iota + 1
	Changed
	Removed
	// ConfigChanged marks a .snapfind.yaml or .snapfind.yml anywhere in
	// the tree, whatever happened to it.
	ConfigChanged
)

var opNames = [...]string{"unknown", "created", "changed", "removed", "config"}

func (o Op) String() string {
	if int(o) >= len(opNames) {
		return opNames[0]
	}
	return opNames[o]
}

// Change is one path that differs since the last batch. Path is relative
// to the watched root and slash-separated.
type Change struct {
	Path  string
	Op    Op
	IsDir bool
}

// merge folds next into prev for the same path. ok is false when the two
// cancel out, e.g. a temp file created and removed within one batch.
func merge(prev, next Change) (merged Change, ok bool) {
	switch {
	case prev.Op == Created && next.Op == Removed:
		return Change{}, false
	case prev.Op == Created:
		return prev, true
	case prev.Op == Removed && next.Op == Created:
		next.Op = Changed
		return next, true
	}
	return next, true
}

// changeSet accumulates merged changes keyed by path.
type changeSet map[string]Change

func (s changeSet) add(c Change) {
	prev, seen := s[c.Path]
	if !seen {
		s[c.Path] = c
		return
	}
	if merged, ok := merge(prev, c); ok {
		s[c.Path] = merged
	} else {
		delete(s, c.Path)
	}
}

// sorted returns the set ordered by path.
func (s changeSet) sorted() []Change {
	out := slices.Collect(maps.Values(s))
	slices.SortFunc(out, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })
	return out
}
