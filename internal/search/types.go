// Package search provides the SnapFind document store and query engine.
//
// An Engine holds at most limits.MaxDocuments documents in insertion
// order, persists them in the SNAP binary format, and ranks documents
// against a query with word-boundary term matching and filename globs.
package search

// Document is an indexed file: its path and a bounded copy of its content.
type Document struct {
	Path    string
	Content []byte
}

// SearchResult is one ranked match.
type SearchResult struct {
	Path  string  `json:"path"`
	Score float32 `json:"score"`
}

// Scoring weights.
const (
	pathWeight    = 0.6
	contentWeight = 0.4
	globBoost     = 1.5
	maxScore      = 100
)

// entry is a stored document plus its lowercased path for glob matching.
type entry struct {
	doc       Document
	lowerPath string
}

// scored pairs a score with the document's insertion index.
type scored struct {
	score float32
	index int
}
