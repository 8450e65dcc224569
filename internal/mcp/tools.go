// ABOUTME: MCP tool definitions and registration for the document QA server
// ABOUTME: Defines JSON schemas for the ask, search, memory, and status tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docchat-labs/docchat/internal/agent"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, qa *agent.Agent) *Handlers {
	handlers := &Handlers{agent: qa}

	// 1. ask_question - full retrieval-augmented answer with memory
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question from the indexed document corpus. Answers are grounded in retrieved document excerpts and recorded into conversation memory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer from the documents",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskQuestion)

	// 2. search_documents - raw retrieval without answer generation
	server.AddTool(mcp.Tool{
		Name:        "search_documents",
		Description: "Search the document index and return the most relevant excerpts with their source metadata. Does not generate an answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of excerpts to return (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchDocuments)

	// 3. clear_memory - reset the conversation window and summary
	server.AddTool(mcp.Tool{
		Name:        "clear_memory",
		Description: "Clear the conversation memory for this session: the recent turn window and the rolling summary.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ClearMemory)

	// 4. corpus_status - index and session state
	server.AddTool(mcp.Tool{
		Name:        "corpus_status",
		Description: "Report the corpus status: chunk count, retrieval mode, embedding model, and conversation length.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CorpusStatus)

	return handlers
}
