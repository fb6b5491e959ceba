package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Aman-CERP/snapfind/internal/bounded"
	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/limits"
)

// Engine is a fixed-capacity document store with ranked search.
// An Engine has a single owner; callers that share one across
// goroutines must serialize access.
type Engine struct {
	limits  limits.Limits
	docs    *bounded.Vec[entry]
	scores  *bounded.Vec[scored]
	matcher *matcher
}

// NewEngine creates an empty engine sized by l.
func NewEngine(l limits.Limits) *Engine {
	return &Engine{
		limits:  l,
		docs:    bounded.NewVec[entry](l.MaxDocuments),
		scores:  bounded.NewVec[scored](l.MaxDocuments),
		matcher: newMatcher(l.MaxTermLength, max(l.MaxContentLength, l.MaxPathBytes)),
	}
}

// Limits returns the bounds the engine was built with.
func (e *Engine) Limits() limits.Limits { return e.limits }

// Len returns the number of stored documents.
func (e *Engine) Len() int { return e.docs.Len() }

// Document returns the i-th document in insertion order.
func (e *Engine) Document(i int) Document { return e.docs.At(i).doc }

// Documents returns a copy of the stored documents in insertion order.
func (e *Engine) Documents() []Document {
	out := make([]Document, e.docs.Len())
	for i, en := range e.docs.Items() {
		out[i] = en.doc
	}
	return out
}

// AddDocument stores a copy of content under path. The path length is
// checked when the engine is saved, not here.
func (e *Engine) AddDocument(path string, content []byte) error {
	if len(content) > e.limits.MaxContentLength {
		return snaperrors.ContentTooLarge(len(content), e.limits.MaxContentLength).
			WithDetail("path", path)
	}
	if e.docs.Full() {
		return snaperrors.TooManyDocuments(e.limits.MaxDocuments).
			WithDetail("path", path)
	}

	e.docs.Push(entry{
		doc: Document{
			Path:    path,
			Content: slices.Clone(content),
		},
		lowerPath: strings.ToLower(path),
	})
	return nil
}

// TermMatches reports whether term appears in content as a whole word,
// ignoring ASCII case. Operands longer than the engine's term or
// content bounds never match.
func (e *Engine) TermMatches(term string, content []byte) bool {
	return termMatches(e.matcher, term, content)
}

// CalculateScore returns the term relevance of doc for query in [0,100].
// Each of the first MaxQueryTerms terms earns 0.6 for a path match and
// 0.4 for a content match; the sum is averaged over the terms.
func (e *Engine) CalculateScore(query string, doc Document) float32 {
	var total float32
	n := eachTerm(query, e.limits.MaxQueryTerms, func(term string) {
		if termMatches(e.matcher, term, doc.Path) {
			total += pathWeight
		}
		if termMatches(e.matcher, term, doc.Content) {
			total += contentWeight
		}
	})
	if n == 0 {
		return 0
	}
	return min(total/float32(n)*100, maxScore)
}

// ValidateQuery rejects queries the engine will not evaluate: empty,
// longer than MaxTermLength bytes, or containing NUL or non-ASCII bytes.
func (e *Engine) ValidateQuery(query string) error {
	return validateQuery(query, e.limits.MaxTermLength)
}

func validateQuery(query string, maxLen int) error {
	if query == "" {
		return snaperrors.InvalidQuery("query is empty", nil)
	}
	if len(query) > maxLen {
		return snaperrors.InvalidQuery(fmt.Sprintf("query is %d bytes, limit is %d", len(query), maxLen), nil)
	}
	for i := 0; i < len(query); i++ {
		switch b := query[i]; {
		case b == 0:
			return snaperrors.InvalidQuery("query contains a NUL byte", nil)
		case b >= 0x80:
			return snaperrors.InvalidQuery("query must be ASCII", nil)
		}
	}
	return nil
}

// Search ranks every document against query and returns at most
// MaxResults matches ordered by descending score, ties broken by
// insertion order. Documents scoring zero are omitted.
//
// A query containing '*' is a filename filter: documents whose path
// matches one of its patterns score 100 and all others are dropped.
// Otherwise a glob match on the path multiplies the term score by 1.5.
func (e *Engine) Search(query string) ([]SearchResult, error) {
	if err := e.ValidateQuery(query); err != nil {
		return nil, err
	}
	patterns, err := compilePatterns(query, e.limits.MaxPatterns)
	if err != nil {
		return nil, err
	}

	e.scores.Reset()
	for i, en := range e.docs.Items() {
		score := e.score(query, patterns, en)
		if score <= 0 {
			continue
		}
		if !e.scores.Push(scored{score: score, index: i}) {
			panic(fmt.Sprintf("search: score buffer overflow at %d documents", e.scores.Cap()))
		}
	}

	ranked := e.scores.Items()
	slices.SortFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.index - b.index
		}
	})

	n := min(len(ranked), e.limits.MaxResults)
	results := make([]SearchResult, n)
	for i := range n {
		results[i] = SearchResult{
			Path:  e.docs.At(ranked[i].index).doc.Path,
			Score: ranked[i].score,
		}
	}
	return results, nil
}

func (e *Engine) score(query string, patterns *patternSet, en entry) float32 {
	if patterns.wildcard {
		if patterns.match(en.lowerPath) {
			return maxScore
		}
		return 0
	}
	s := e.CalculateScore(query, en.doc)
	if s > 0 && patterns.match(en.lowerPath) {
		s = min(s*globBoost, maxScore)
	}
	return s
}
