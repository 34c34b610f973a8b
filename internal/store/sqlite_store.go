package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/google/uuid"
	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/textrank"
	"github.com/localrivet/textsummarizer/internal/util"
)

const recordColumns = `id, content_hash, source_kind, source_text, summary, sentence_count, requested, created_at`

// SQLiteStore is an implementation of Store that uses SQLite. A single
// connection is shared and guarded by a mutex.
type SQLiteStore struct {
	mu         sync.Mutex
	conn       *sqlite.Conn
	dbPath     string
	vectorizer *textrank.Vectorizer
}

// NewSQLiteStore creates a new SQLiteStore. A nil vectorizer uses the
// built-in English stopwords for search.
func NewSQLiteStore(vectorizer *textrank.Vectorizer) *SQLiteStore {
	if vectorizer == nil {
		vectorizer = textrank.NewVectorizer(nil)
	}
	return &SQLiteStore{vectorizer: vectorizer}
}

// Initialize opens the database at dbPath and creates the schema.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").WithField("path", dbPath)
	}
	s.conn = conn
	s.dbPath = dbPath

	if err := s.createSchema(); err != nil {
		s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) createSchema() error {
	for _, query := range []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			source_kind TEXT NOT NULL,
			source_text TEXT NOT NULL,
			summary TEXT NOT NULL,
			sentence_count INTEGER NOT NULL,
			requested INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS summaries_content_hash ON summaries (content_hash);`,
	} {
		if err := s.exec(query, nil); err != nil {
			return errortypes.DatabaseError(err, "failed to create schema")
		}
	}
	return nil
}

// exec runs a statement that returns no rows.
func (s *SQLiteStore) exec(query string, bind func(stmt *sqlite.Stmt)) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Reset()
	defer stmt.ClearBindings()

	if bind != nil {
		bind(stmt)
	}
	_, err = stmt.Step()
	return err
}

// query runs a statement and calls row for each result row.
func (s *SQLiteStore) query(query string, bind func(stmt *sqlite.Stmt), row func(stmt *sqlite.Stmt)) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Reset()
	defer stmt.ClearBindings()

	if bind != nil {
		bind(stmt)
	}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return err
		}
		if !hasRow {
			return nil
		}
		row(stmt)
	}
}

func (s *SQLiteStore) checkOpen() error {
	if s.conn == nil {
		return errortypes.DatabaseError(errors.New("store not initialized"), "store not initialized")
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return errortypes.DatabaseError(err, "failed to close database")
	}
	return nil
}

// Save inserts or replaces record, filling in its id, content hash and
// creation time when they are unset.
func (s *SQLiteStore) Save(record *Record) error {
	if record == nil {
		return errortypes.InvalidInputError(errors.New("nil record"), "record is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ContentHash == "" {
		record.ContentHash = util.ContentHash(record.SourceText)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := s.exec(`INSERT OR REPLACE INTO summaries (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		func(stmt *sqlite.Stmt) {
			stmt.BindText(1, record.ID)
			stmt.BindText(2, record.ContentHash)
			stmt.BindText(3, record.SourceKind)
			stmt.BindText(4, record.SourceText)
			stmt.BindText(5, record.Summary)
			stmt.BindInt64(6, int64(record.SentenceCount))
			stmt.BindInt64(7, int64(record.Requested))
			stmt.BindInt64(8, record.CreatedAt.UnixNano())
		})
	if err != nil {
		return errortypes.DatabaseError(err, "failed to save summary").WithField("id", record.ID)
	}
	return nil
}

func scanRecord(stmt *sqlite.Stmt) Record {
	return Record{
		ID:            stmt.ColumnText(0),
		ContentHash:   stmt.ColumnText(1),
		SourceKind:    stmt.ColumnText(2),
		SourceText:    stmt.ColumnText(3),
		Summary:       stmt.ColumnText(4),
		SentenceCount: int(stmt.ColumnInt64(5)),
		Requested:     int(stmt.ColumnInt64(6)),
		CreatedAt:     time.Unix(0, stmt.ColumnInt64(7)).UTC(),
	}
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(id string) (*Record, error) {
	return s.findOne(`SELECT `+recordColumns+` FROM summaries WHERE id = ?;`, id, "id")
}

// FindByHash returns the newest record with the given content hash.
func (s *SQLiteStore) FindByHash(hash string) (*Record, error) {
	return s.findOne(`SELECT `+recordColumns+` FROM summaries WHERE content_hash = ?
		ORDER BY created_at DESC LIMIT 1;`, hash, "content_hash")
}

func (s *SQLiteStore) findOne(query, key, field string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var found *Record
	err := s.query(query,
		func(stmt *sqlite.Stmt) { stmt.BindText(1, key) },
		func(stmt *sqlite.Stmt) {
			if found == nil {
				r := scanRecord(stmt)
				found = &r
			}
		})
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to query summary").WithField(field, key)
	}
	if found == nil {
		return nil, errortypes.NotFoundError(errors.New("no such summary"), "summary not found").WithField(field, key)
	}
	return found, nil
}

// List returns up to limit records, newest first.
func (s *SQLiteStore) List(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.list(limit)
}

func (s *SQLiteStore) list(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	var records []Record
	err := s.query(`SELECT `+recordColumns+` FROM summaries ORDER BY created_at DESC, rowid DESC LIMIT ?;`,
		func(stmt *sqlite.Stmt) { stmt.BindInt64(1, int64(limit)) },
		func(stmt *sqlite.Stmt) { records = append(records, scanRecord(stmt)) })
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to list summaries")
	}
	return records, nil
}

// Search scores every stored summary by cosine similarity between its
// token vector and the query's, and returns the best matches. Records that
// share no word with the query are left out.
func (s *SQLiteStore) Search(query string, limit int) ([]SearchResult, error) {
	queryVec := s.vectorizer.Vector(query)
	if len(queryVec) == 0 {
		return nil, errortypes.InvalidInputError(errors.New("query has no searchable words"), "search query is empty").
			WithField("query", query)
	}

	s.mu.Lock()
	records, err := func() ([]Record, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		return s.list(0)
	}()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, r := range records {
		sim := textrank.CosineSimilarity(queryVec, s.vectorizer.Vector(r.Summary))
		if sim > 0 {
			results = append(results, SearchResult{Record: r, Similarity: sim})
		}
	}

	// Records arrive newest first; the stable sort keeps that order among equal scores.
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes the record with the given id.
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	err := s.exec(`DELETE FROM summaries WHERE id = ?;`, func(stmt *sqlite.Stmt) { stmt.BindText(1, id) })
	if err != nil {
		return errortypes.DatabaseError(err, "failed to delete summary").WithField("id", id)
	}
	if s.conn.Changes() == 0 {
		return errortypes.NotFoundError(errors.New("no such summary"), "summary not found").WithField("id", id)
	}
	return nil
}

// Clear removes every record.
func (s *SQLiteStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	if err := s.exec(`DELETE FROM summaries;`, nil); err != nil {
		return 0, errortypes.DatabaseError(err, "failed to clear summaries")
	}
	return s.conn.Changes(), nil
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbPath
}
