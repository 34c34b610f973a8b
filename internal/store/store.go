// Package store persists produced summaries so they can be fetched, searched
// and deleted later.
package store

import (
	"time"
)

// Source kinds recorded with each summary.
const (
	SourceText  = "text"
	SourceTopic = "topic"
	SourceFile  = "file"
)

// Record is one stored summary.
type Record struct {
	ID            string    `json:"id"`
	ContentHash   string    `json:"content_hash"`
	SourceKind    string    `json:"source_kind"`
	SourceText    string    `json:"source_text"`
	Summary       string    `json:"summary"`
	SentenceCount int       `json:"sentence_count"`
	Requested     int       `json:"requested"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchResult is a record with its similarity to a search query.
type SearchResult struct {
	Record
	Similarity float64 `json:"similarity"`
}

// Store defines the interface for storing and retrieving summaries.
type Store interface {
	// Initialize opens the store at path, creating it if needed.
	Initialize(path string) error

	// Close releases any resources.
	Close() error

	// Save inserts or replaces a record. Missing ids, hashes and timestamps are filled in.
	Save(record *Record) error

	// Get returns the record with the given id.
	Get(id string) (*Record, error)

	// FindByHash returns the newest record whose source has the given content hash.
	FindByHash(hash string) (*Record, error)

	// List returns up to limit records, newest first. A limit <= 0 returns all.
	List(limit int) ([]Record, error)

	// Search ranks records by the similarity of their summaries to query.
	Search(query string, limit int) ([]SearchResult, error)

	// Delete removes the record with the given id.
	Delete(id string) error

	// Clear removes every record and returns how many were deleted.
	Clear() (int, error)
}
