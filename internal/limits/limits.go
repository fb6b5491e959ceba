// Package limits defines the resource bounds every SnapFind component
// is constructed with.
package limits

import (
	"fmt"
	"math"
	"strings"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// Profile names accepted by Profile.
const (
	ProfileDefault = "default"
	ProfileFree    = "free"
)

// Limits bounds traversal, storage, and query processing.
// All values are positive; Validate enforces it.
type Limits struct {
	// MaxDepth is the maximum directory nesting below the root. Also the
	// capacity of the crawler's pending-directory stack.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// MaxFiles is the maximum number of files a crawl may accept.
	MaxFiles int `yaml:"max_files" json:"max_files"`

	// MaxFileSize is the largest file, in bytes, the crawler accepts.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`

	// MaxPathLength bounds crawled paths, in bytes.
	MaxPathLength int `yaml:"max_path_length" json:"max_path_length"`

	// MaxDocuments is the engine's document store capacity.
	MaxDocuments int `yaml:"max_documents" json:"max_documents"`

	// MaxContentLength bounds stored document content, in bytes.
	MaxContentLength int `yaml:"max_content_length" json:"max_content_length"`

	// MaxPathBytes bounds persisted document paths, in bytes.
	MaxPathBytes int `yaml:"max_path_bytes" json:"max_path_bytes"`

	// MaxTermLength bounds a single query term and the whole query string.
	MaxTermLength int `yaml:"max_term_length" json:"max_term_length"`

	// MaxQueryTerms is the number of whitespace terms scored per query.
	MaxQueryTerms int `yaml:"max_query_terms" json:"max_query_terms"`

	// MaxPatterns is the number of glob parts a query may carry.
	MaxPatterns int `yaml:"max_patterns" json:"max_patterns"`

	// MaxResults caps the number of ranked results returned.
	MaxResults int `yaml:"max_results" json:"max_results"`
}

// Default returns the generous profile.
func Default() Limits {
	return Limits{
		MaxDepth:         1000,
		MaxFiles:         1_000_000,
		MaxFileSize:      10 * 1024 * 1024,
		MaxPathLength:    255,
		MaxDocuments:     10_000,
		MaxContentLength: math.MaxUint16,
		MaxPathBytes:     1024,
		MaxTermLength:    50,
		MaxQueryTerms:    10,
		MaxPatterns:      10,
		MaxResults:       100,
	}
}

// FreeTier returns the constrained profile.
func FreeTier() Limits {
	l := Default()
	l.MaxFiles = 100
	l.MaxFileSize = 1024
	l.MaxDocuments = 100
	l.MaxContentLength = 1000
	return l
}

// Profile resolves a named profile. The empty name means default.
func Profile(name string) (Limits, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileDefault:
		return Default(), nil
	case ProfileFree:
		return FreeTier(), nil
	default:
		return Limits{}, snaperrors.ConfigError(
			fmt.Sprintf("unknown profile %q (want %q or %q)", name, ProfileDefault, ProfileFree), nil)
	}
}

// Merge returns l with every non-zero field of override applied.
func (l Limits) Merge(override Limits) Limits {
	if override.MaxDepth != 0 {
		l.MaxDepth = override.MaxDepth
	}
	if override.MaxFiles != 0 {
		l.MaxFiles = override.MaxFiles
	}
	if override.MaxFileSize != 0 {
		l.MaxFileSize = override.MaxFileSize
	}
	if override.MaxPathLength != 0 {
		l.MaxPathLength = override.MaxPathLength
	}
	if override.MaxDocuments != 0 {
		l.MaxDocuments = override.MaxDocuments
	}
	if override.MaxContentLength != 0 {
		l.MaxContentLength = override.MaxContentLength
	}
	if override.MaxPathBytes != 0 {
		l.MaxPathBytes = override.MaxPathBytes
	}
	if override.MaxTermLength != 0 {
		l.MaxTermLength = override.MaxTermLength
	}
	if override.MaxQueryTerms != 0 {
		l.MaxQueryTerms = override.MaxQueryTerms
	}
	if override.MaxPatterns != 0 {
		l.MaxPatterns = override.MaxPatterns
	}
	if override.MaxResults != 0 {
		l.MaxResults = override.MaxResults
	}
	return l
}

// Validate checks that every bound is positive and that the bounds
// persisted in the index file fit its 16-bit length fields.
func (l Limits) Validate() error {
	positive := []struct {
		name  string
		value int64
	}{
		{"max_depth", int64(l.MaxDepth)},
		{"max_files", int64(l.MaxFiles)},
		{"max_file_size", l.MaxFileSize},
		{"max_path_length", int64(l.MaxPathLength)},
		{"max_documents", int64(l.MaxDocuments)},
		{"max_content_length", int64(l.MaxContentLength)},
		{"max_path_bytes", int64(l.MaxPathBytes)},
		{"max_term_length", int64(l.MaxTermLength)},
		{"max_query_terms", int64(l.MaxQueryTerms)},
		{"max_patterns", int64(l.MaxPatterns)},
		{"max_results", int64(l.MaxResults)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return snaperrors.ConfigError(
				fmt.Sprintf("limits.%s must be positive, got %d", p.name, p.value), nil)
		}
	}

	if l.MaxContentLength > math.MaxUint16 {
		return snaperrors.ConfigError(
			fmt.Sprintf("limits.max_content_length must be at most %d, got %d", math.MaxUint16, l.MaxContentLength), nil)
	}
	if l.MaxPathBytes > math.MaxUint16 {
		return snaperrors.ConfigError(
			fmt.Sprintf("limits.max_path_bytes must be at most %d, got %d", math.MaxUint16, l.MaxPathBytes), nil)
	}
	if int64(l.MaxDocuments) > math.MaxUint32 {
		return snaperrors.ConfigError(
			fmt.Sprintf("limits.max_documents must be at most %d, got %d", uint32(math.MaxUint32), l.MaxDocuments), nil)
	}
	return nil
}
