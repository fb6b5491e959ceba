package search

import (
	"strings"

	"github.com/gobwas/glob"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// patternSet is a query compiled as case-insensitive filename globs.
type patternSet struct {
	globs    []glob.Glob
	wildcard bool
}

// compilePatterns compiles each whitespace part of query as a glob over
// lowercased paths. The full gobwas syntax applies ('*', '?', "[...]",
// "{a,b}" and '\' escapes) with no separators, so '*' also matches '/'.
// A part with an inner '*' but no leading one is anchored with a
// leading '*', so "main*.go" finds "cmd/main_test.go". A part that does
// not compile fails the whole query.
func compilePatterns(query string, maxPatterns int) (*patternSet, error) {
	parts := strings.Fields(query)
	if len(parts) > maxPatterns {
		return nil, snaperrors.TooManyPatterns(len(parts), maxPatterns)
	}

	ps := &patternSet{
		globs:    make([]glob.Glob, 0, len(parts)),
		wildcard: strings.Contains(query, "*"),
	}
	for _, part := range parts {
		p := strings.ToLower(part)
		if strings.Contains(p, "*") && !strings.HasPrefix(p, "*") {
			p = "*" + p
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, snaperrors.InvalidQuery("bad pattern "+part, err)
		}
		ps.globs = append(ps.globs, g)
	}
	return ps, nil
}

// match reports whether any pattern matches the lowercased path.
func (ps *patternSet) match(lowerPath string) bool {
	for _, g := range ps.globs {
		if g.Match(lowerPath) {
			return true
		}
	}
	return false
}
