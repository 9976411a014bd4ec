package api

import "encoding/json"

// ChatRequest represents the request body for the /chat endpoint.
// SessionID is serialized as null until the backend has assigned one.
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// Source represents a citation returned alongside a chat answer
type Source struct {
	ID           string `json:"id,omitempty"`
	Content      string `json:"content,omitempty"`
	SourceURL    string `json:"source_url"`
	SectionTitle string `json:"section_title,omitempty"`
}

// ChatResponse represents the response from the /chat endpoint
type ChatResponse struct {
	Response        string   `json:"response"`
	SessionID       string   `json:"session_id,omitempty"`
	Sources         []Source `json:"sources,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// HealthResponse represents the response from the /health endpoint.
// Raw keeps the full payload since the backend is free to add fields.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Service   string          `json:"service"`
	Raw       json.RawMessage `json:"-"`
}

// ProcessURLRequest represents the request body for the /process-url endpoint
type ProcessURLRequest struct {
	URL string `json:"url"`
}

// ProcessURLResponse represents the ingestion acknowledgment from /process-url
type ProcessURLResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ChunksProcessed *int   `json:"chunks_processed,omitempty"`
}

// RetrieveRequest represents the request body for the /retrieve endpoint
type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RetrievedChunk represents a ranked context snippet
type RetrievedChunk struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	SimilarityScore float64        `json:"similarity_score"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// RetrieveResponse represents the response from the /retrieve endpoint
type RetrieveResponse struct {
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
}
