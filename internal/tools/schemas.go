// Package tools defines the request and response schemas of the
// textsummarizer MCP tools.
package tools

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolSummarizeTopic is the name of the summarize_topic MCP tool
	ToolSummarizeTopic = "summarize_topic"

	// ToolSummarizeFile is the name of the summarize_file MCP tool
	ToolSummarizeFile = "summarize_file"

	// ToolGetSummary is the name of the get_summary MCP tool
	ToolGetSummary = "get_summary"

	// ToolSearchSummaries is the name of the search_summaries MCP tool
	ToolSearchSummaries = "search_summaries"

	// ToolDeleteSummary is the name of the delete_summary MCP tool
	ToolDeleteSummary = "delete_summary"

	// ToolClearSummaries is the name of the clear_summaries MCP tool
	ToolClearSummaries = "clear_summaries"

	// ToolHealth is the name of the health MCP tool
	ToolHealth = "health"

	// ConfirmPhrase must be sent with clear_summaries
	ConfirmPhrase = "confirm"

	// Response statuses
	StatusSuccess = "success"
	StatusError   = "error"
)

// SummarizeTextRequest defines the input schema for summarize_text tool
type SummarizeTextRequest struct {
	Text string `json:"text"`

	// NumSentences is the summary length. Zero means the default of 3.
	NumSentences int `json:"num_sentences,omitempty"`

	// Order is "score" (most central first) or "source" (reading order).
	Order string `json:"order,omitempty"`
}

// SummarizeTopicRequest defines the input schema for summarize_topic tool
type SummarizeTopicRequest struct {
	// Topic is expanded into text by the configured LLM before summarizing
	Topic string `json:"topic"`

	// NumSentences is the summary length. Zero means the default of 3.
	NumSentences int `json:"num_sentences,omitempty"`

	// Order is "score" (most central first) or "source" (reading order).
	Order string `json:"order,omitempty"`
}

// SummarizeFileRequest defines the input schema for summarize_file tool
type SummarizeFileRequest struct {
	// Path of a .txt, .md, .html or .docx file readable by the server
	Path string `json:"path"`

	// NumSentences is the summary length. Zero means the default of 3.
	NumSentences int `json:"num_sentences,omitempty"`

	// Order is "score" (most central first) or "source" (reading order).
	Order string `json:"order,omitempty"`
}

// SummaryResponse is returned by every summarize tool.
type SummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ID of the stored summary, empty when history is disabled
	ID string `json:"id,omitempty"`

	Summary          string         `json:"summary,omitempty"`
	OriginalText     string         `json:"original_text,omitempty"`
	Sentences        []Sentence     `json:"sentences,omitempty"`
	SignLanguageData map[string]any `json:"sign_language_data,omitempty"`
	Iterations       int            `json:"iterations,omitempty"`
	Converged        bool           `json:"converged,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// Sentence is one selected sentence with its rank.
type Sentence struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// GetSummaryRequest defines the input schema for get_summary tool
type GetSummaryRequest struct {
	ID string `json:"id"`
}

// StoredSummary is a summary from the history.
type StoredSummary struct {
	ID            string  `json:"id"`
	SourceKind    string  `json:"source_kind"`
	Summary       string  `json:"summary"`
	SourceText    string  `json:"source_text,omitempty"`
	SentenceCount int     `json:"sentence_count"`
	CreatedAt     string  `json:"created_at"`
	Similarity    float64 `json:"similarity,omitempty"`
}

// GetSummaryResponse defines the output schema for get_summary tool
type GetSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status  string         `json:"status"`
	Summary *StoredSummary `json:"summary,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SearchSummariesRequest defines the input schema for search_summaries tool
type SearchSummariesRequest struct {
	// Query is matched against stored summaries by word overlap
	Query string `json:"query"`

	// Limit is the maximum number of results to return
	Limit int `json:"limit,omitempty"`
}

// SearchSummariesResponse defines the output schema for search_summaries tool
type SearchSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status  string          `json:"status"`
	Results []StoredSummary `json:"results"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// DeleteSummaryRequest defines the input schema for delete_summary tool
type DeleteSummaryRequest struct {
	ID string `json:"id"`
}

// DeleteSummaryResponse defines the output schema for delete_summary tool
type DeleteSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ClearSummariesRequest defines the input schema for clear_summaries tool
type ClearSummariesRequest struct {
	// Confirmation must be set to "confirm" to prevent accidental clearing
	Confirmation string `json:"confirmation"`
}

// ClearSummariesResponse defines the output schema for clear_summaries tool
type ClearSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status       string `json:"status"`
	DeletedCount int    `json:"deleted_count"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// HealthRequest defines the input schema for health tool
type HealthRequest struct {
	// CheckProviders calls every LLM provider once
	CheckProviders bool `json:"check_providers,omitempty"`
}

// HealthResponse defines the output schema for health tool
type HealthResponse struct {
	// Status is the overall health: healthy, degraded or unhealthy
	Status string `json:"status"`

	// Report is the JSON health report
	Report string `json:"report,omitempty"`

	// Error contains an error message if the report could not be built
	Error string `json:"error,omitempty"`
}
