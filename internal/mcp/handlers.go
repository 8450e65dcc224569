// ABOUTME: MCP tool handler implementations for the document QA server
// ABOUTME: Wraps agent operations and serializes results as tool responses
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat-labs/docchat/internal/agent"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	agent *agent.Agent
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	answer, err := h.agent.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// SearchDocuments handles the search_documents tool
func (h *Handlers) SearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", 3)

	results, err := h.agent.Search(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type excerpt struct {
		Content    string  `json:"content"`
		Filename   string  `json:"filename"`
		ChunkIndex int     `json:"chunk_index"`
		Distance   float64 `json:"distance"`
	}

	excerpts := make([]excerpt, 0, len(results))
	for _, r := range results {
		excerpts = append(excerpts, excerpt{
			Content:    r.Content,
			Filename:   r.Metadata.Filename,
			ChunkIndex: r.Metadata.ChunkIndex,
			Distance:   r.Distance,
		})
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"query":   query,
		"results": excerpts,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results failed: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ClearMemory handles the clear_memory tool
func (h *Handlers) ClearMemory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.agent.ClearMemory()
	return mcp.NewToolResultText(`{"cleared": true}`), nil
}

// CorpusStatus handles the corpus_status tool
func (h *Handlers) CorpusStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.agent.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding status failed: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
