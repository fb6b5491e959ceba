package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/snapfind/internal/search"
)

// FormatSearchResults renders results as markdown for clients that
// display tool text directly.
func FormatSearchResults(query string, results []search.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search Results for %q\n\n", query)

	if len(results) == 0 {
		sb.WriteString("No matching documents.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Found %d document(s).\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. `%s` (score: %.1f)\n", i+1, r.Path, r.Score)
	}
	return sb.String()
}

// clampLimit returns def for limit <= 0, otherwise limit bounded to [1, max].
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return min(def, max)
	}
	return min(limit, max)
}

func toOutput(results []search.SearchResult) []SearchResultOutput {
	out := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResultOutput{
			Path:     r.Path,
			Score:    r.Score,
			MIMEType: MimeTypeForPath(r.Path),
			URI:      documentURI(r.Path),
		})
	}
	return out
}
