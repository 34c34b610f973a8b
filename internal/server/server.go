// Package server exposes the summarization service over MCP (stdio) and a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/service"
	"github.com/localrivet/textsummarizer/internal/store"
	"github.com/localrivet/textsummarizer/internal/tools"
)

// ServerName is announced to MCP clients.
const ServerName = "textsummarizer"

// DefaultToolTimeout bounds a single tool call.
const DefaultToolTimeout = 2 * time.Minute

// MCPToolServer implements ToolServer for MCP clients on stdio.
type MCPToolServer struct {
	svc       *service.Service
	logger    *slog.Logger
	timeout   time.Duration
	mcpServer server.Server

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMCPToolServer creates a new MCPToolServer instance.
func NewMCPToolServer(svc *service.Service, logger *slog.Logger) *MCPToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MCPToolServer{
		svc:     svc,
		logger:  logger.With("component", "mcp"),
		timeout: DefaultToolTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Initialize registers the tools.
func (s *MCPToolServer) Initialize() error {
	s.logger.Info("Initializing MCP tool server")

	if s.svc == nil {
		return errortypes.ConfigError(errors.New("missing dependencies"), "server initialization failed")
	}

	srv := server.NewServer(ServerName)

	srv = srv.Tool(tools.ToolSummarizeText, "Summarize text by extracting its most central sentences",
		s.handleSummarizeText)
	srv = srv.Tool(tools.ToolSummarizeTopic, "Generate text about a topic with an LLM and summarize it",
		s.handleSummarizeTopic)
	srv = srv.Tool(tools.ToolSummarizeFile, "Summarize a .txt, .md, .html or .docx file on disk",
		s.handleSummarizeFile)
	srv = srv.Tool(tools.ToolGetSummary, "Fetch a stored summary by ID",
		s.handleGetSummary)
	srv = srv.Tool(tools.ToolSearchSummaries, "Find stored summaries that share words with a query",
		s.handleSearchSummaries)
	srv = srv.Tool(tools.ToolDeleteSummary, "Delete a stored summary by ID",
		s.handleDeleteSummary)
	srv = srv.Tool(tools.ToolClearSummaries, "Delete every stored summary",
		s.handleClearSummaries)
	srv = srv.Tool(tools.ToolHealth, "Report service health and metrics",
		s.handleHealth)

	s.mcpServer = srv
	s.logger.Info("MCP tool server initialized successfully", "tool_count", 8)
	return nil
}

// Start serves MCP on stdio until stdin closes.
func (s *MCPToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(errors.New("server not initialized"), "cannot start server")
	}
	s.logger.Info("Starting MCP tool server")
	return s.mcpServer.AsStdio().Run()
}

// Stop cancels in-flight tool calls. The stdio loop exits when stdin is closed.
func (s *MCPToolServer) Stop() error {
	s.logger.Info("Stopping MCP tool server")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	return nil
}

// callContext derives the context for one tool call.
func (s *MCPToolServer) callContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return context.WithTimeout(s.ctx, s.timeout)
}

func summaryResponse(resp *service.Response) tools.SummaryResponse {
	out := tools.SummaryResponse{
		Status:           tools.StatusSuccess,
		ID:               resp.ID,
		Summary:          resp.Summary,
		OriginalText:     resp.OriginalText,
		SignLanguageData: resp.SignLanguageData,
		Iterations:       resp.Iterations,
		Converged:        resp.Converged,
		Warnings:         resp.Warnings,
	}
	for _, rs := range resp.Sentences {
		out.Sentences = append(out.Sentences, tools.Sentence{
			Index: rs.Index,
			Text:  rs.Text,
			Score: rs.Score,
			Rank:  rs.Rank,
		})
	}
	return out
}

func storedSummary(r store.Record, similarity float64) tools.StoredSummary {
	return tools.StoredSummary{
		ID:            r.ID,
		SourceKind:    r.SourceKind,
		Summary:       r.Summary,
		SourceText:    r.SourceText,
		SentenceCount: r.SentenceCount,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		Similarity:    similarity,
	}
}

func (s *MCPToolServer) process(req service.Request) tools.SummaryResponse {
	ctx, cancel := s.callContext()
	defer cancel()

	resp, err := s.svc.Process(ctx, req)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.SummaryResponse{Status: tools.StatusError, Error: err.Error()}
	}
	return summaryResponse(resp)
}

// handleSummarizeText handles the summarize_text MCP tool call.
func (s *MCPToolServer) handleSummarizeText(_ *server.Context, req tools.SummarizeTextRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_text request", "text_length", len(req.Text), "num_sentences", req.NumSentences)
	return s.process(service.Request{Text: req.Text, NumSentences: req.NumSentences, Order: req.Order}), nil
}

// handleSummarizeTopic handles the summarize_topic MCP tool call.
func (s *MCPToolServer) handleSummarizeTopic(_ *server.Context, req tools.SummarizeTopicRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_topic request", "topic", req.Topic, "num_sentences", req.NumSentences)
	if req.Topic == "" {
		return tools.SummaryResponse{Status: tools.StatusError, Error: "topic is required"}, nil
	}
	return s.process(service.Request{Topic: req.Topic, NumSentences: req.NumSentences, Order: req.Order}), nil
}

// handleSummarizeFile handles the summarize_file MCP tool call.
func (s *MCPToolServer) handleSummarizeFile(_ *server.Context, req tools.SummarizeFileRequest) (tools.SummaryResponse, error) {
	s.logger.Info("Processing summarize_file request", "path", req.Path, "num_sentences", req.NumSentences)

	ctx, cancel := s.callContext()
	defer cancel()

	resp, err := s.svc.SummarizePath(ctx, req.Path, req.NumSentences, req.Order)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.SummaryResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return summaryResponse(resp), nil
}

// handleGetSummary handles the get_summary MCP tool call.
func (s *MCPToolServer) handleGetSummary(_ *server.Context, req tools.GetSummaryRequest) (tools.GetSummaryResponse, error) {
	s.logger.Info("Processing get_summary request", "id", req.ID)

	record, err := s.svc.GetSummary(req.ID)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.GetSummaryResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	summary := storedSummary(*record, 0)
	return tools.GetSummaryResponse{Status: tools.StatusSuccess, Summary: &summary}, nil
}

// handleSearchSummaries handles the search_summaries MCP tool call.
func (s *MCPToolServer) handleSearchSummaries(_ *server.Context, req tools.SearchSummariesRequest) (tools.SearchSummariesResponse, error) {
	s.logger.Info("Processing search_summaries request", "query", req.Query, "limit", req.Limit)

	results, err := s.svc.SearchSummaries(req.Query, req.Limit)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.SearchSummariesResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}

	response := tools.SearchSummariesResponse{Status: tools.StatusSuccess, Results: []tools.StoredSummary{}}
	for _, r := range results {
		item := storedSummary(r.Record, r.Similarity)
		item.SourceText = ""
		response.Results = append(response.Results, item)
	}
	s.logger.Info("Search completed", "count", len(response.Results))
	return response, nil
}

// handleDeleteSummary handles the delete_summary MCP tool call.
func (s *MCPToolServer) handleDeleteSummary(_ *server.Context, req tools.DeleteSummaryRequest) (tools.DeleteSummaryResponse, error) {
	s.logger.Info("Processing delete_summary request", "id", req.ID)

	if err := s.svc.DeleteSummary(req.ID); err != nil {
		errortypes.LogError(s.logger, err)
		return tools.DeleteSummaryResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return tools.DeleteSummaryResponse{Status: tools.StatusSuccess}, nil
}

// handleClearSummaries handles the clear_summaries MCP tool call.
func (s *MCPToolServer) handleClearSummaries(_ *server.Context, req tools.ClearSummariesRequest) (tools.ClearSummariesResponse, error) {
	s.logger.Info("Processing clear_summaries request")

	if req.Confirmation != tools.ConfirmPhrase {
		s.logger.Warn("Clear summaries rejected: missing confirmation")
		return tools.ClearSummariesResponse{
			Status: tools.StatusError,
			Error:  "Confirmation required. Set confirmation to 'confirm' to delete every stored summary",
		}, nil
	}

	count, err := s.svc.ClearSummaries()
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.ClearSummariesResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return tools.ClearSummariesResponse{Status: tools.StatusSuccess, DeletedCount: count}, nil
}

// handleHealth handles the health MCP tool call.
func (s *MCPToolServer) handleHealth(_ *server.Context, req tools.HealthRequest) (tools.HealthResponse, error) {
	ctx, cancel := s.callContext()
	defer cancel()

	report, err := s.svc.Health(ctx, req.CheckProviders)
	if err != nil {
		return tools.HealthResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return tools.HealthResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}
	return tools.HealthResponse{Status: string(report.Status), Report: string(data)}, nil
}
