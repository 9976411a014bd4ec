// Package stub serves a local stand-in for the book question-answering backend.
// Answers are canned and deterministic so the widget can be developed and
// tested without the hosted service.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/rs/zerolog/log"
)

const (
	// PathPrefix is where the API is mounted, matching the hosted backend
	PathPrefix = "/api/v1"

	ServiceName       = "RAG Chatbot API"
	DefaultConfidence = 0.87
)

// Option configures a Server
type Option func(*Server)

// WithToken makes every endpoint except /health require the given bearer token
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithChatStatus makes /chat fail with the given HTTP status
func WithChatStatus(status int) Option {
	return func(s *Server) {
		s.chatStatus = status
	}
}

// Server holds the stub backend state
type Server struct {
	token      string
	chatStatus int

	mu        sync.Mutex
	sessions  map[string]int
	chatCalls []api.ChatRequest
	ingested  []string
}

// NewServer creates a new stub backend
func NewServer(opts ...Option) *Server {
	s := &Server{
		sessions: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with the API mounted under PathPrefix
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route(PathPrefix, func(v1 chi.Router) {
		v1.Get("/health", s.handleHealth)
		v1.Group(func(protected chi.Router) {
			protected.Use(s.requireToken)
			protected.Post("/chat", s.handleChat)
			protected.Post("/process-url", s.handleProcessURL)
			protected.Post("/retrieve", s.handleRetrieve)
		})
	})
	return r
}

// ChatRequests returns the /chat request bodies received so far, oldest first
func (s *Server) ChatRequests() []api.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]api.ChatRequest, len(s.chatCalls))
	copy(calls, s.chatCalls)
	return calls
}

// Ingested returns the URLs received on /process-url
func (s *Server) Ingested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ingested...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Service:   ServiceName,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	s.chatCalls = append(s.chatCalls, req)
	var sessionID string
	if req.SessionID != nil && *req.SessionID != "" {
		sessionID = *req.SessionID
	} else {
		sessionID = uuid.New().String()
	}
	s.sessions[sessionID]++
	turn := s.sessions[sessionID]
	s.mu.Unlock()

	if s.chatStatus != 0 {
		respondError(w, s.chatStatus, http.StatusText(s.chatStatus))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	confidence := DefaultConfidence
	respondJSON(w, http.StatusOK, api.ChatResponse{
		Response:  answerFor(req.Message, turn),
		SessionID: sessionID,
		Sources: []api.Source{
			{
				ID:           "chunk-1",
				Content:      "Physical AI systems perceive, reason and act in the physical world.",
				SourceURL:    "https://book.example.com/docs/intro",
				SectionTitle: "Introduction to Physical AI",
			},
		},
		ConfidenceScore: &confidence,
	})
}

func (s *Server) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	var req api.ProcessURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	s.mu.Lock()
	s.ingested = append(s.ingested, req.URL)
	s.mu.Unlock()

	chunks := 3
	respondJSON(w, http.StatusOK, api.ProcessURLResponse{
		Status:          "success",
		Message:         fmt.Sprintf("Processed %s", req.URL),
		ChunksProcessed: &chunks,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req api.RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		respondError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = api.DefaultTopK
	}

	chunks := make([]api.RetrievedChunk, 0, topK)
	for i := 0; i < topK; i++ {
		chunks = append(chunks, api.RetrievedChunk{
			ID:              fmt.Sprintf("chunk-%d", i+1),
			Content:         fmt.Sprintf("Passage %d about %q.", i+1, req.Query),
			SimilarityScore: 1 - float64(i)*0.1,
			Metadata: map[string]any{
				"source_url": fmt.Sprintf("https://book.example.com/docs/chapter-%d", i+1),
			},
		})
	}
	respondJSON(w, http.StatusOK, api.RetrieveResponse{RetrievedChunks: chunks})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func answerFor(question string, turn int) string {
	return fmt.Sprintf("**Answer %d**\n\nYou asked: _%s_\n\n- The book covers this in the introduction.\n- See the sources below.",
		turn, strings.TrimSpace(question))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("stub request")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
