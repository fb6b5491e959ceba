package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
	"github.com/Aman-CERP/snapfind/internal/index"
	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/pkg/version"
)

// ServerName is reported to MCP clients.
const ServerName = "SnapFind"

const defaultSearchLimit = 10

// Options configures a Server.
type Options struct {
	// CacheSize is the number of distinct queries whose results are kept.
	CacheSize int

	// Watching is reported by index_status.
	Watching bool
}

type cacheKey struct {
	query string
	limit int
}

// Server is the MCP server for SnapFind. It owns one engine at a time;
// every engine access happens under mu because Search reuses the
// engine's scratch buffers.
type Server struct {
	mcp    *mcp.Server
	runner *index.Runner
	cfg    index.RunnerConfig
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	engine      *search.Engine
	cache       *lru.Cache[cacheKey, []search.SearchResult]
	lastIndexed time.Time
	lastErr     error
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        "search",
		Description: "Search the indexed directory. Terms match whole words in file paths (weight 0.6) and contents (weight 0.4); a '*' pattern such as '*.md' or 'src/*' restricts results to matching paths and boosts them. Returns up to 'limit' paths with scores from 0 to 100.",
	},
	{
		Name:        "index_status",
		Description: "Report the indexed root, document count, index size and when the index was last rebuilt.",
	},
	{
		Name:        "reindex",
		Description: "Rebuild the index from disk and save it. Use after files change when the server is not watching.",
	},
}

// NewServer creates an MCP server serving engine. runner and cfg are
// used by the reindex tool.
func NewServer(engine *search.Engine, runner *index.Runner, cfg index.RunnerConfig, opts Options) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if runner == nil {
		runner = index.NewRunner(nil)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}

	cache, err := lru.New[cacheKey, []search.SearchResult](opts.CacheSize)
	if err != nil {
		return nil, snaperrors.InternalError("failed to create query cache", err)
	}

	s := &Server{
		runner:      runner,
		cfg:         cfg,
		opts:        opts,
		logger:      slog.Default(),
		engine:      engine,
		cache:       cache,
		lastIndexed: indexModTime(cfg.IndexPath),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version.Get().Version}, nil)
	s.registerTools()
	s.registerResources()
	return s, nil
}

func indexModTime(path string) time.Time {
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Get().Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return tools
}

// CallTool invokes a tool by name. search returns markdown; the other
// tools return their output structs.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "search":
		in := SearchInput{}
		in.Query, _ = args["query"].(string)
		switch l := args["limit"].(type) {
		case int:
			in.Limit = l
		case float64:
			in.Limit = int(l)
		}
		out, err := s.search(ctx, in)
		if err != nil {
			return nil, err
		}
		results := make([]search.SearchResult, len(out.Results))
		for i, r := range out.Results {
			results[i] = search.SearchResult{Path: r.Path, Score: r.Score}
		}
		return FormatSearchResults(in.Query, results), nil
	case "index_status":
		return s.indexStatus(ctx)
	case "reindex":
		return s.reindex(ctx)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

// ReplaceEngine swaps in a rebuilt engine and drops cached results.
// It has the index.OnReindex signature so a watch loop can feed it.
func (s *Server) ReplaceEngine(engine *search.Engine, result *index.RunnerResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.logger.Warn("reindex_failed", snaperrors.LogAttr(err))
		return
	}
	s.engine = engine
	s.lastErr = nil
	s.lastIndexed = time.Now()
	s.cache.Purge()
	if result != nil {
		s.logger.Info("engine_replaced",
			slog.Int("documents", engine.Len()),
			slog.Duration("duration", result.Duration))
	}
}

func (s *Server) search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}
	if err := ctx.Err(); err != nil {
		return SearchOutput{}, MapError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit := clampLimit(in.Limit, defaultSearchLimit, s.engine.Limits().MaxResults)
	key := cacheKey{query: in.Query, limit: limit}
	if hit, ok := s.cache.Get(key); ok {
		return SearchOutput{Results: toOutput(hit), Cached: true}, nil
	}

	results, err := s.engine.Search(in.Query)
	if err != nil {
		s.logger.Debug("search_rejected", slog.String("query", in.Query), snaperrors.LogAttr(err))
		return SearchOutput{}, MapError(err)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	s.cache.Add(key, results)

	s.logger.Debug("search",
		slog.String("query", in.Query),
		slog.Int("results", len(results)))
	return SearchOutput{Results: toOutput(results)}, nil
}

func (s *Server) indexStatus(_ context.Context) (*IndexStatusOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &IndexStatusOutput{
		RootPath:     s.cfg.RootDir,
		IndexPath:    s.cfg.IndexPath,
		Documents:    s.engine.Len(),
		MaxDocuments: s.engine.Limits().MaxDocuments,
		Watching:     s.opts.Watching,
		CacheEntries: s.cache.Len(),
	}
	if info, err := os.Stat(s.cfg.IndexPath); err == nil {
		out.IndexSizeBytes = info.Size()
	}
	if !s.lastIndexed.IsZero() {
		out.LastIndexed = s.lastIndexed.Format(time.RFC3339)
	}
	if s.lastErr != nil {
		out.LastError = s.lastErr.Error()
	}
	return out, nil
}

func (s *Server) reindex(ctx context.Context) (*ReindexOutput, error) {
	engine, result, err := s.runner.Reindex(ctx, s.cfg)
	s.ReplaceEngine(engine, result, err)
	if err != nil {
		return nil, MapError(err)
	}
	return &ReindexOutput{
		Files:      result.Files,
		Skipped:    result.Skipped,
		Oversized:  result.Oversized,
		Errors:     result.Errors,
		DurationMS: result.Duration.Milliseconds(),
		Saved:      result.IndexPath != "",
	}, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpSearchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpIndexStatusHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpReindexHandler)
	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	out, err := s.search(ctx, input)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) mcpIndexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	out, err := s.indexStatus(ctx)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpReindexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ReindexInput) (
	*mcp.CallToolResult,
	*ReindexOutput,
	error,
) {
	out, err := s.reindex(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

// Serve runs the server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_starting", slog.String("root", s.cfg.RootDir))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp_server_stopped", snaperrors.LogAttr(err))
		return err
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}
