// Package mcp implements the Model Context Protocol server for SnapFind.
package mcp

import (
	"context"
	"errors"
	"fmt"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// JSON-RPC error codes. The -3200x range is SnapFind's own.
const (
	ErrCodeIndexNotFound    = -32001 // missing or unreadable index
	ErrCodeLimitExceeded    = -32002
	ErrCodeTimeout          = -32003 // deadline passed or request cancelled
	ErrCodeDocumentNotFound = -32004

	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError is the error returned to MCP clients.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("Tool '%s' not found.", name)}
}

// Codes that do not follow their category. A query with too many glob
// parts is the caller's to fix, so it is reported as a bad parameter.
var rpcCodeBySnapCode = map[string]int{
	snaperrors.ErrCodeTooManyPatterns:    ErrCodeInvalidParams,
	snaperrors.ErrCodeIndexNotFound:      ErrCodeIndexNotFound,
	snaperrors.ErrCodeInvalidIndexFormat: ErrCodeIndexNotFound,
}

var rpcCodeByCategory = map[snaperrors.Category]int{
	snaperrors.CategoryValidation: ErrCodeInvalidParams,
	snaperrors.CategoryLimit:      ErrCodeLimitExceeded,
}

// MapError converts err into the MCPError sent to clients. An MCPError
// anywhere in the chain is returned as is. SnapFind errors keep their
// message and suggestion. Anything else is reported without detail.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	var me *MCPError
	if errors.As(err, &me) {
		return me
	}

	if se, ok := snaperrors.As(err); ok {
		msg := se.Message
		if se.Suggestion != "" {
			msg += " " + se.Suggestion
		}
		code, ok := rpcCodeBySnapCode[se.Code]
		if !ok {
			code, ok = rpcCodeByCategory[se.Category]
		}
		if !ok {
			code = ErrCodeInternalError
		}
		return &MCPError{Code: code, Message: msg}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
}
