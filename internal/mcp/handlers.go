package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vietcare/health-rag/internal/chat"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// makeSearchHandler creates the search_knowledge tool handler. It runs the
// same retrieval path the chatbot uses: embed the query, rank by similarity,
// drop results below the threshold.
func makeSearchHandler(r *retriever.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchKnowledgeInput,
) (*mcp.CallToolResult, SearchKnowledgeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchKnowledgeInput) (
		*mcp.CallToolResult, SearchKnowledgeOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 5
		}

		results, err := r.RetrieveWithThreshold(ctx, input.Query, input.MinScore, maxResults)
		if err != nil {
			return nil, SearchKnowledgeOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			return nil, SearchKnowledgeOutput{
				Results: []SearchResult{},
				Message: "No matching knowledge found. Try broader search terms.",
			}, nil
		}

		out := make([]SearchResult, len(results))
		for i, res := range results {
			out[i] = SearchResult{
				Content: res.Content,
				Source:  res.Metadata.Source,
				Score:   res.Similarity,
				Rank:    res.Rank,
			}
		}
		return nil, SearchKnowledgeOutput{Results: out}, nil
	}
}

// makeAskHandler creates the ask_health tool handler: a stateless one-shot
// pass through the full RAG chain, no conversation history.
func makeAskHandler(chain *chat.Chain) func(
	context.Context, *mcp.CallToolRequest, AskHealthInput,
) (*mcp.CallToolResult, AskHealthOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskHealthInput) (
		*mcp.CallToolResult, AskHealthOutput, error,
	) {
		answer := chain.Ask(ctx, input.Question, nil)
		return nil, AskHealthOutput{Answer: answer}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(index vectorstore.Index) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		stats, err := index.Stats(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("index stats: %w", err)
		}
		return nil, StatusOutput{
			TotalChunks: stats.Count,
			Dimension:   stats.Dimension,
			Backend:     stats.Backend,
		}, nil
	}
}
