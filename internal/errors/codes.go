// Package errors provides structured error handling for SnapFind.
//
// Codes have the form ERR_<NNN>_<NAME>. The hundreds digit selects the
// category: 1 config, 2 I/O and the index file, 3 resource limits,
// 4 validation and 5 internal.
package errors

// Category groups codes by their hundreds digit.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryLimit      Category = "LIMIT" // a configured bound was hit
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells callers whether to abort, report or carry on.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	ErrCodeIO                 = "ERR_201_IO"
	ErrCodeNotFound           = "ERR_202_NOT_FOUND"
	ErrCodeNotADirectory      = "ERR_203_NOT_A_DIRECTORY"
	ErrCodeInvalidIndexFormat = "ERR_205_INVALID_INDEX_FORMAT"
	ErrCodeIndexNotFound      = "ERR_206_INDEX_NOT_FOUND"

	ErrCodeDepthExceeded     = "ERR_301_DEPTH_EXCEEDED"
	ErrCodeFileCountExceeded = "ERR_302_FILE_COUNT_EXCEEDED"
	ErrCodeFileSizeExceeded  = "ERR_303_FILE_SIZE_EXCEEDED"
	ErrCodePathTooLong       = "ERR_304_PATH_TOO_LONG"
	ErrCodeContentTooLarge   = "ERR_305_CONTENT_TOO_LARGE"
	ErrCodeTooManyDocuments  = "ERR_306_TOO_MANY_DOCUMENTS"
	ErrCodeTooManyPatterns   = "ERR_307_TOO_MANY_PATTERNS"

	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQuery = "ERR_402_INVALID_QUERY"
	ErrCodeQueryEmpty   = "ERR_403_QUERY_EMPTY"

	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeIndexFailed = "ERR_502_INDEX_FAILED"
)

// codeInfo is what New fills in for a code. A zero severity means
// SeverityError.
type codeInfo struct {
	severity Severity
	hint     string
}

const (
	hintRebuild   = "Run 'snapfind index' to rebuild the index"
	hintCheckPath = "Check the directory path and try again"
	hintSimplify  = "Try simplifying your search"
)

var codeTable = map[string]codeInfo{
	ErrCodeConfigInvalid: {hint: "Fix the configuration file or run 'snapfind config init'"},

	ErrCodeIO:                 {hint: "Check file permissions and try again"},
	ErrCodeNotFound:           {hint: hintCheckPath},
	ErrCodeNotADirectory:      {hint: hintCheckPath},
	ErrCodeInvalidIndexFormat: {severity: SeverityFatal, hint: hintRebuild},
	// Search rebuilds a missing index on the fly.
	ErrCodeIndexNotFound: {severity: SeverityWarning, hint: "Run 'snapfind index' first"},

	ErrCodeDepthExceeded:     {hint: "Try indexing a shallower directory"},
	ErrCodeFileCountExceeded: {hint: "Try indexing a smaller directory"},
	ErrCodeFileSizeExceeded:  {hint: "Large files are skipped during indexing; raise limits.max_file_size to include them"},
	ErrCodePathTooLong:       {hint: "Try moving files to a shorter path"},
	ErrCodeContentTooLarge:   {hint: "Raise limits.max_content_length or exclude the file"},
	ErrCodeTooManyDocuments:  {hint: "Try indexing a smaller directory or raise limits.max_documents"},
	ErrCodeTooManyPatterns:   {hint: "Use fewer space-separated glob patterns"},

	ErrCodeInvalidQuery: {hint: hintSimplify},
	ErrCodeQueryEmpty:   {hint: hintSimplify},
}

func categoryFromCode(code string) Category {
	// "ERR_" then the hundreds digit.
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryLimit
	case '4':
		return CategoryValidation
	}
	return CategoryInternal
}

func severityFromCode(code string) Severity {
	if s := codeTable[code].severity; s != "" {
		return s
	}
	return SeverityError
}

func defaultSuggestion(code string) string {
	return codeTable[code].hint
}
