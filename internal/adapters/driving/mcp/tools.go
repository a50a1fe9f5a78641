package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragcore/internal/connectors/filesystem"
	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query           string `json:"query" jsonschema:"the question or search text"`
	TopK            int    `json:"top_k,omitempty" jsonschema:"number of chunks to consider (default 3)"`
	MaxContextChars int    `json:"max_context_chars,omitempty" jsonschema:"character budget for the assembled context (default 2000)"`
	Source          string `json:"source,omitempty" jsonschema:"only consider chunks from this document"`
	FileType        string `json:"file_type,omitempty" jsonschema:"only consider chunks from documents of this type (pdf, docx, txt)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Context string          `json:"context"`
	Sources []domain.Source `json:"sources"`
	Count   int             `json:"count"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path      string `json:"path" jsonschema:"local path or file:// URI of a pdf, docx or txt file"`
	ChunkSize int    `json:"chunk_size,omitempty" jsonschema:"target chunk length in characters (default 1000)"`
	Overlap   int    `json:"overlap,omitempty" jsonschema:"characters shared by consecutive chunks (default 200)"`
}

// IngestFileOutput is the output schema for the ingest_file tool.
type IngestFileOutput struct {
	Source            string   `json:"source"`
	TotalChunks       int      `json:"total_chunks"`
	Accepted          int      `json:"accepted"`
	SkippedDuplicates int      `json:"skipped_duplicates"`
	Errors            []string `json:"errors,omitempty"`
}

// CollectionInfoInput is the (empty) input schema for the collection_info tool.
type CollectionInfoInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve context relevant to a question from the ingested documents, with citations",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Extract, chunk, embed and store a local pdf, docx or txt file",
	}, s.handleIngestFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "collection_info",
		Description: "Describe the collection: name, record count, location and embedding model",
	}, s.handleCollectionInfo)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	defaults := s.ports.defaults()

	req := domain.RetrieveRequest{
		Query:           input.Query,
		TopK:            input.TopK,
		MaxContextChars: input.MaxContextChars,
		Filter:          domain.MetadataFilter{Source: input.Source},
	}
	if req.TopK <= 0 {
		req.TopK = defaults.TopK
	}
	if req.MaxContextChars <= 0 {
		req.MaxContextChars = defaults.MaxContextChars
	}
	if input.FileType != "" {
		ft, err := domain.ParseFileType(input.FileType)
		if err != nil {
			return nil, RetrieveOutput{}, err
		}
		req.Filter.FileType = ft
	}

	result, err := s.ports.RAG.Retrieve(ctx, req)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Context: result.Context,
		Sources: result.Sources,
		Count:   len(result.Sources),
	}, nil
}

// handleIngestFile handles the ingest_file tool invocation.
func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, IngestFileOutput, error) {
	if input.Path == "" {
		return nil, IngestFileOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	req, err := filesystem.LoadFile(filesystem.ResolvePath(input.Path))
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	defaults := s.ports.defaults()
	req.ChunkSize, req.Overlap = input.ChunkSize, input.Overlap
	if req.ChunkSize == 0 && req.Overlap == 0 {
		req.ChunkSize, req.Overlap = defaults.ChunkSize, defaults.Overlap
	}

	report, err := s.ports.RAG.Ingest(ctx, req)
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	output := IngestFileOutput{
		Source:            report.Source,
		TotalChunks:       report.TotalChunks,
		Accepted:          report.Accepted,
		SkippedDuplicates: report.SkippedDuplicates,
	}
	for _, e := range report.Errors {
		output.Errors = append(output.Errors, e.Error())
	}

	return nil, output, nil
}

// handleCollectionInfo handles the collection_info tool invocation.
func (s *Server) handleCollectionInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CollectionInfoInput,
) (*mcp.CallToolResult, domain.CollectionInfo, error) {
	info, err := s.ports.RAG.CollectionInfo(ctx)
	if err != nil {
		return nil, domain.CollectionInfo{}, err
	}
	return nil, info, nil
}
