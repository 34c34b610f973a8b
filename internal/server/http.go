package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/service"
	"github.com/localrivet/textsummarizer/internal/tools"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// shutdownTimeout bounds graceful shutdown in Stop.
const shutdownTimeout = 10 * time.Second

// TextRequest is the JSON body of the summarize endpoints.
type TextRequest struct {
	Text  string `json:"text,omitempty"`
	Topic string `json:"topic,omitempty"`
	// NumSentences defaults to the configured count when absent.
	NumSentences *int   `json:"num_sentences,omitempty"`
	Order        string `json:"order,omitempty"`
}

// HTTPServer implements ToolServer as a JSON HTTP API.
type HTTPServer struct {
	svc        *service.Service
	addr       string
	maxUpload  int64
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server
}

// NewHTTPServer creates an HTTP API server listening on addr.
func NewHTTPServer(svc *service.Service, addr string, maxUploadBytes int64, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &HTTPServer{
		svc:       svc,
		addr:      addr,
		maxUpload: maxUploadBytes,
		logger:    logger.With("component", "http"),
	}
}

// Initialize builds the routes.
func (s *HTTPServer) Initialize() error {
	if s.svc == nil {
		return errortypes.ConfigError(errors.New("missing dependencies"), "server initialization failed")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /summarize/text", s.handleSummarizeText)
	mux.HandleFunc("POST /summarize/topic", s.handleSummarizeTopic)
	mux.HandleFunc("POST /summarize/file", s.handleSummarizeFile)
	mux.HandleFunc("GET /summaries", s.handleListSummaries)
	mux.HandleFunc("DELETE /summaries", s.handleClearSummaries)
	mux.HandleFunc("GET /summaries/{id}", s.handleGetSummary)
	mux.HandleFunc("DELETE /summaries/{id}", s.handleDeleteSummary)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.logRequests(cors(mux))
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Handler returns the routed handler. Initialize must have been called.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start listens until Stop is called.
func (s *HTTPServer) Start() error {
	if s.httpServer == nil {
		return errortypes.ConfigError(errors.New("server not initialized"), "cannot start server")
	}
	s.logger.Info("Starting HTTP API", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errortypes.NetworkError(err, "HTTP server failed").WithField("addr", s.addr)
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *HTTPServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping HTTP API")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// cors allows every origin, as browser front ends call the API directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *HTTPServer) decodeTextRequest(w http.ResponseWriter, r *http.Request) (*TextRequest, error) {
	var req TextRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errortypes.InvalidInputError(err, "invalid JSON body")
	}
	return &req, nil
}

// sentenceCount resolves an optional count, rejecting explicit values below
// one. An absent count becomes zero, which the service replaces with its default.
func sentenceCount(n *int) (int, error) {
	if n == nil {
		return 0, nil
	}
	if *n <= 0 {
		return 0, errortypes.InvalidInputError(errors.New("num_sentences must be positive"), "invalid num_sentences").
			WithField("num_sentences", *n)
	}
	return *n, nil
}

func (s *HTTPServer) summarize(w http.ResponseWriter, r *http.Request, topic bool) {
	req, err := s.decodeTextRequest(w, r)
	if err != nil {
		HandleError(w, err)
		return
	}
	n, err := sentenceCount(req.NumSentences)
	if err != nil {
		HandleError(w, err)
		return
	}

	sreq := service.Request{Text: req.Text, NumSentences: n, Order: req.Order}
	if topic {
		if req.Topic == "" {
			HandleError(w, errortypes.InvalidInputError(errors.New("empty topic"), "topic is required"))
			return
		}
		sreq = service.Request{Topic: req.Topic, NumSentences: n, Order: req.Order}
	}

	resp, err := s.svc.Process(r.Context(), sreq)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleSummarizeText(w http.ResponseWriter, r *http.Request) {
	s.summarize(w, r, false)
}

func (s *HTTPServer) handleSummarizeTopic(w http.ResponseWriter, r *http.Request) {
	s.summarize(w, r, true)
}

// handleSummarizeFile accepts a multipart upload in the "file" field.
// num_sentences and order may come from the query string or the form.
func (s *HTTPServer) handleSummarizeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(w, err)
			return
		}
		HandleError(w, errortypes.InvalidInputError(err, "a multipart \"file\" field is required"))
		return
	}
	defer file.Close()

	var count *int
	if raw := r.FormValue("num_sentences"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			HandleError(w, errortypes.InvalidInputError(err, "invalid num_sentences").WithField("num_sentences", raw))
			return
		}
		count = &v
	}
	n, err := sentenceCount(count)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp, err := s.svc.SummarizeFile(r.Context(), header.Filename, file, n, r.FormValue("order"))
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	record, err := s.svc.GetSummary(r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleListSummaries lists the history, or searches it when q is set.
func (s *HTTPServer) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			HandleError(w, errortypes.InvalidInputError(errors.New("limit must be a non-negative integer"), "invalid limit").
				WithField("limit", raw))
			return
		}
		limit = v
	}

	if q := r.URL.Query().Get("q"); q != "" {
		results, err := s.svc.SearchSummaries(q, limit)
		if err != nil {
			HandleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": tools.StatusSuccess, "results": results})
		return
	}

	records, err := s.svc.ListSummaries(limit)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": tools.StatusSuccess, "results": records})
}

func (s *HTTPServer) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSummary(r.PathValue("id")); err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": tools.StatusSuccess})
}

func (s *HTTPServer) handleClearSummaries(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirmation") != tools.ConfirmPhrase {
		HandleError(w, errortypes.InvalidInputError(errors.New("missing confirmation"),
			"Confirmation required. Add ?confirmation=confirm to delete every stored summary"))
		return
	}
	n, err := s.svc.ClearSummaries()
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": tools.StatusSuccess, "deleted_count": n})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	check, _ := strconv.ParseBool(r.URL.Query().Get("check_providers"))
	report, err := s.svc.Health(r.Context(), check)
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
