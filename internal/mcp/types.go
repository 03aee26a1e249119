// Package mcp exposes the health knowledge base over the Model Context
// Protocol: semantic search, one-shot question answering, and index status.
package mcp

// SearchKnowledgeInput defines the input parameters for the search_knowledge tool.
type SearchKnowledgeInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant health knowledge"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
	// MinScore is the minimum similarity threshold (0-1).
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum=0,maximum=1,default=0,description=Minimum similarity score threshold (0-1)"`
}

// SearchKnowledgeOutput contains the search results.
type SearchKnowledgeOutput struct {
	// Results is the list of matching chunks ordered by relevance.
	Results []SearchResult `json:"results"`
	// Message provides informational context when there are no results.
	Message string `json:"message,omitempty"`
}

// SearchResult is a single chunk match from semantic search.
type SearchResult struct {
	// Content is the chunk text.
	Content string `json:"content"`
	// Source identifies where the chunk came from.
	Source string `json:"source"`
	// Score is the similarity score (0-1).
	Score float64 `json:"score"`
	// Rank is the 1-based position in the full result ordering.
	Rank int `json:"rank"`
}

// AskHealthInput defines the input parameters for the ask_health tool.
type AskHealthInput struct {
	// Question is the health question to answer.
	Question string `json:"question" jsonschema:"required,description=The health question to answer from the knowledge base"`
}

// AskHealthOutput contains the generated answer.
type AskHealthOutput struct {
	// Answer is the grounded natural-language answer, sources included.
	Answer string `json:"answer"`
}

// StatusInput defines the input parameters for the get_index_status tool.
// The tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the vector index.
type StatusOutput struct {
	// TotalChunks is the number of indexed chunks.
	TotalChunks int `json:"total_chunks"`
	// Dimension is the embedding dimensionality.
	Dimension int `json:"dimension"`
	// Backend names the index implementation in use.
	Backend string `json:"backend"`
}
