package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/snapfind/internal/index"
)

func TestServer_ReadDocument(t *testing.T) {
	s := newTestServer(t, newTestEngine(t, defaultDocs()), index.RunnerConfig{})

	res, err := s.readDocument(context.Background(), "snapfind://doc/src/main.go")

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "snapfind://doc/src/main.go", res.Contents[0].URI)
	assert.Equal(t, "text/x-go", res.Contents[0].MIMEType)
	assert.Equal(t, "package main\nfunc main() {}", res.Contents[0].Text)
}

func TestServer_ReadDocument_Errors(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantCode int
	}{
		{"wrong scheme", "file:///etc/passwd", ErrCodeInvalidParams},
		{"empty path", "snapfind://doc/", ErrCodeInvalidParams},
		{"not indexed", "snapfind://doc/missing.txt", ErrCodeDocumentNotFound},
	}

	s := newTestServer(t, newTestEngine(t, defaultDocs()), index.RunnerConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.readDocument(context.Background(), tt.uri)

			var me *MCPError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.wantCode, me.Code)
		})
	}
}

func TestDocumentURI(t *testing.T) {
	assert.Equal(t, "snapfind://doc/a/b.txt", documentURI("a/b.txt"))
}
