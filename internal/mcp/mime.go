package mcp

import (
	"path"
	"strings"
)

// mimeByExt maps a lower-case extension to the MIME type reported for
// document resources.
var mimeByExt = func() map[string]string {
	groups := []struct{ mime, exts string }{
		{"text/x-go", ".go"},
		{"text/x-rust", ".rs"},
		{"text/x-python", ".py"},
		{"text/typescript", ".ts .tsx"},
		{"text/javascript", ".js .mjs"},
		{"text/x-c", ".c .h"},
		{"text/x-c++", ".cpp .cc .hpp"},
		{"text/x-java", ".java"},
		{"text/x-ruby", ".rb"},
		{"text/x-sh", ".sh .bash"},
		{"text/x-sql", ".sql"},
		{"text/html", ".html .htm"},
		{"text/css", ".css"},
		{"application/json", ".json"},
		{"text/x-yaml", ".yaml .yml"},
		{"text/x-toml", ".toml"},
		{"text/xml", ".xml"},
		{"text/markdown", ".md"},
		{"text/x-rst", ".rst"},
		{"text/csv", ".csv"},
	}
	m := make(map[string]string)
	for _, g := range groups {
		for _, ext := range strings.Fields(g.exts) {
			m[ext] = g.mime
		}
	}
	return m
}()

// MimeTypeForPath returns the MIME type for a slash-separated document
// path. Indexed documents are text, so unknown types are text/plain.
func MimeTypeForPath(p string) string {
	base := path.Base(p)
	switch base {
	case "Dockerfile":
		return "text/x-dockerfile"
	case "Makefile", "GNUmakefile":
		return "text/x-makefile"
	}
	if mime, ok := mimeByExt[strings.ToLower(path.Ext(base))]; ok {
		return mime
	}
	return "text/plain"
}
