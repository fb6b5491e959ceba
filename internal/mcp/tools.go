package mcp

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"search terms; '*' patterns such as '*.go' filter and boost by path"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchOutput defines the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"matching documents, best first"`
	Cached  bool                 `json:"cached" jsonschema:"true if served from the query cache"`
}

// SearchResultOutput is a single search hit.
type SearchResultOutput struct {
	Path     string  `json:"path" jsonschema:"document path relative to the indexed root"`
	Score    float32 `json:"score" jsonschema:"relevance score from 0 to 100"`
	MIMEType string  `json:"mime_type" jsonschema:"MIME type guessed from the file name"`
	URI      string  `json:"uri" jsonschema:"resource URI for reading the indexed content"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	RootPath       string `json:"root_path"`
	IndexPath      string `json:"index_path"`
	Documents      int    `json:"documents"`
	MaxDocuments   int    `json:"max_documents"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
	LastIndexed    string `json:"last_indexed,omitempty"`
	Watching       bool   `json:"watching"`
	CacheEntries   int    `json:"cache_entries"`
	LastError      string `json:"last_error,omitempty"`
}

// ReindexInput defines the input schema for the reindex tool (no parameters).
type ReindexInput struct{}

// ReindexOutput defines the output schema for the reindex tool.
type ReindexOutput struct {
	Files      int   `json:"files"`
	Skipped    int   `json:"skipped"`
	Oversized  int   `json:"oversized"`
	Errors     int   `json:"errors"`
	DurationMS int64 `json:"duration_ms"`
	Saved      bool  `json:"saved"`
}
