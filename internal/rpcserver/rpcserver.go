// Package rpcserver implements the RPC/MCP surface (A2): it wraps the
// dispatch table (C11) behind the MCP Go SDK's stdio transport. The
// spec explicitly delegates JSON-RPC framing to an existing
// implementation; this package only supplies the tool table.
package rpcserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/directory-indexer/directory-indexer/internal/dispatch"
	"github.com/directory-indexer/directory-indexer/internal/errs"
)

// Server wraps a Dispatcher behind an MCP stdio server.
type Server struct {
	dispatcher *dispatch.Dispatcher
	mcp        *mcp.Server
}

// New builds a Server and registers its five tools.
func New(d *dispatch.Dispatcher, version string) *Server {
	s := &Server{
		dispatcher: d,
		mcp:        mcp.NewServer(&mcp.Implementation{Name: "directory-indexer", Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Run enters the line-delimited JSON-RPC loop over stdio. It
// terminates on EOF of stdin.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index",
		Description: "Index one or more directory trees into the semantic search index.",
	}, s.handleIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Search the index for files semantically similar to a query.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "similar_files",
		Description: "Find files similar to a given indexed file.",
	}, s.handleSimilar)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_content",
		Description: "Retrieve the raw content of a file, optionally restricted to a chunk range.",
	}, s.handleGetContent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "server_info",
		Description: "Report the server's configured embedding provider, model, and collection.",
	}, s.handleServerInfo)
}

// IndexInput is the index tool's input schema.
type IndexInput struct {
	Paths []string `json:"paths" jsonschema:"the directory paths to index"`
}

// IndexOutput is the index tool's output schema.
type IndexOutput struct {
	Indexed int      `json:"indexed"`
	Skipped int      `json:"skipped"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Server) handleIndex(ctx context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, IndexOutput, error) {
	res, err := s.dispatcher.Index(ctx, dispatch.IndexArgs{Roots: input.Paths})
	if err != nil {
		return nil, IndexOutput{}, mapToolError(err)
	}
	return nil, IndexOutput{Indexed: res.Indexed, Skipped: res.Skipped, Deleted: res.Deleted, Failed: res.Failed, Errors: res.Errors}, nil
}

// SearchInput is the search tool's input schema.
type SearchInput struct {
	Query      string  `json:"query" jsonschema:"the search query text"`
	Limit      int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, max 100"`
	Workspace  string  `json:"workspace,omitempty" jsonschema:"restrict results to a named workspace"`
	MinScore   float64 `json:"min_score,omitempty" jsonschema:"minimum cosine similarity score"`
	PathPrefix string  `json:"path_prefix,omitempty" jsonschema:"restrict results to a literal path prefix"`
}

// SearchResultItem is one file-level hit in SearchOutput.
type SearchResultItem struct {
	FilePath    string  `json:"file_path"`
	Score       float64 `json:"score"`
	Size        int64   `json:"size"`
	TotalChunks int     `json:"total_chunks"`
}

// SearchOutput is the search tool's output schema.
type SearchOutput struct {
	Results []SearchResultItem `json:"results"`
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.dispatcher.SearchQuery(ctx, dispatch.SearchArgs{
		Query: input.Query, Limit: input.Limit, Workspace: input.Workspace,
		MinScore: input.MinScore, PathPrefix: input.PathPrefix,
	})
	if err != nil {
		return nil, SearchOutput{}, mapToolError(err)
	}
	out := SearchOutput{Results: make([]SearchResultItem, len(results))}
	for i, r := range results {
		out.Results[i] = SearchResultItem{FilePath: r.FilePath, Score: r.Score, Size: r.Size, TotalChunks: r.TotalChunks}
	}
	return nil, out, nil
}

// SimilarInput is the similar_files tool's input schema.
type SimilarInput struct {
	FilePath string `json:"file_path" jsonschema:"the indexed file to find similar files for"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

func (s *Server) handleSimilar(ctx context.Context, _ *mcp.CallToolRequest, input SimilarInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.dispatcher.Similar(ctx, dispatch.SimilarArgs{FilePath: input.FilePath, Limit: input.Limit})
	if err != nil {
		return nil, SearchOutput{}, mapToolError(err)
	}
	out := SearchOutput{Results: make([]SearchResultItem, len(results))}
	for i, r := range results {
		out.Results[i] = SearchResultItem{FilePath: r.FilePath, Score: r.Score, Size: r.Size, TotalChunks: r.TotalChunks}
	}
	return nil, out, nil
}

// GetContentInput is the get_content tool's input schema.
type GetContentInput struct {
	FilePath string `json:"file_path" jsonschema:"the file to retrieve content from"`
	Chunks   string `json:"chunks,omitempty" jsonschema:"a 1-based chunk range, e.g. '2' or '2-4'"`
}

// GetContentOutput is the get_content tool's output schema.
type GetContentOutput struct {
	Content string `json:"content"`
}

func (s *Server) handleGetContent(ctx context.Context, _ *mcp.CallToolRequest, input GetContentInput) (*mcp.CallToolResult, GetContentOutput, error) {
	content, err := s.dispatcher.Get(ctx, dispatch.GetArgs{FilePath: input.FilePath, Chunks: input.Chunks})
	if err != nil {
		return nil, GetContentOutput{}, mapToolError(err)
	}
	return nil, GetContentOutput{Content: content}, nil
}

// ServerInfoInput is the server_info tool's (empty) input schema.
type ServerInfoInput struct{}

// ServerInfoOutput is the server_info tool's output schema.
type ServerInfoOutput struct {
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
	Dimensions        int    `json:"dimensions"`
	CollectionName    string `json:"collection_name"`
}

func (s *Server) handleServerInfo(ctx context.Context, _ *mcp.CallToolRequest, _ ServerInfoInput) (*mcp.CallToolResult, ServerInfoOutput, error) {
	info, err := s.dispatcher.ServerInfo(ctx)
	if err != nil {
		return nil, ServerInfoOutput{}, mapToolError(err)
	}
	return nil, ServerInfoOutput{
		EmbeddingProvider: info.EmbeddingProvider,
		EmbeddingModel:    info.EmbeddingModel,
		Dimensions:        info.Dimensions,
		CollectionName:    info.CollectionName,
	}, nil
}

// Standard JSON-RPC error codes. mapToolError returns only the last
// two; method-not-found is produced by the SDK, not by this package.
const (
	errCodeMethodNotFound = -32601
	errCodeInvalidParams  = -32602
	errCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string { return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message) }

// mapToolError converts an errs.Error's Kind to the JSON-RPC code
// table: NotFound/UserInput -> invalid params, everything else ->
// internal error. Unknown tool names are mapped by the SDK itself to
// method-not-found before a handler is ever invoked.
func mapToolError(err error) error {
	switch errs.KindOf(err) {
	case errs.KindNotFound, errs.KindUserInput:
		return &MCPError{Code: errCodeInvalidParams, Message: err.Error()}
	default:
		return &MCPError{Code: errCodeInternalError, Message: err.Error()}
	}
}
