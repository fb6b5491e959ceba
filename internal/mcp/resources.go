package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DocumentURIPrefix prefixes the URI of every indexed document.
const DocumentURIPrefix = "snapfind://doc/"

func documentURI(path string) string {
	return DocumentURIPrefix + path
}

// registerResources exposes indexed content through one URI template,
// so rebuilding the engine needs no re-registration.
func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "document",
		URITemplate: DocumentURIPrefix + "{+path}",
		Description: "Content of an indexed document as stored in the index",
	}, s.readResourceHandler)
}

func (s *Server) readResourceHandler(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return s.readDocument(ctx, req.Params.URI)
}

// readDocument serves a document from the index, not from disk, so
// clients see exactly what was searched.
func (s *Server) readDocument(_ context.Context, uri string) (*mcp.ReadResourceResult, error) {
	path, ok := strings.CutPrefix(uri, DocumentURIPrefix)
	if !ok || path == "" {
		return nil, NewInvalidParamsError(fmt.Sprintf("invalid document URI: %s", uri))
	}

	s.mu.Lock()
	var content []byte
	found := false
	for i := range s.engine.Len() {
		if d := s.engine.Document(i); d.Path == path {
			content, found = d.Content, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return nil, &MCPError{Code: ErrCodeDocumentNotFound, Message: fmt.Sprintf("document not indexed: %s", path)}
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: MimeTypeForPath(path),
			Text:     strings.ToValidUTF8(string(content), "�"),
		}},
	}, nil
}
