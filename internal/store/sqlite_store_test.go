package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/util"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(nil)
	if err := s.Initialize(filepath.Join(t.TempDir(), "summaries.db")); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := openStore(t)

	record := &Record{
		SourceKind:    SourceText,
		SourceText:    "Rivers carry water. Cities grow near rivers.",
		Summary:       "Rivers carry water.",
		SentenceCount: 1,
		Requested:     1,
	}
	if err := s.Save(record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if record.ID == "" || record.CreatedAt.IsZero() {
		t.Fatalf("Save() did not fill id/timestamp: %+v", record)
	}
	if record.ContentHash != util.ContentHash(record.SourceText) {
		t.Errorf("ContentHash = %q", record.ContentHash)
	}

	got, err := s.Get(record.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Summary != record.Summary || got.SourceKind != SourceText || got.SentenceCount != 1 {
		t.Errorf("Get() = %+v", got)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, record.CreatedAt)
	}

	byHash, err := s.FindByHash(record.ContentHash)
	if err != nil || byHash.ID != record.ID {
		t.Errorf("FindByHash() = %+v, %v", byHash, err)
	}

	if _, err := s.Get("missing"); !errortypes.IsNotFoundError(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
	if _, err := s.FindByHash("missing"); !errortypes.IsNotFoundError(err) {
		t.Errorf("FindByHash(missing) error = %v, want not found", err)
	}
}

func TestSQLiteStore_ListDeleteClear(t *testing.T) {
	s := openStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, summary := range []string{"first", "second", "third"} {
		if err := s.Save(&Record{
			ID:         summary,
			SourceKind: SourceText,
			SourceText: summary,
			Summary:    summary,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
		t.Errorf("List(0) = %+v", all)
	}

	two, err := s.List(2)
	if err != nil || len(two) != 2 {
		t.Errorf("List(2) = %d records, %v", len(two), err)
	}

	if err := s.Delete("second"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("second"); !errortypes.IsNotFoundError(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}

	n, err := s.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v, want 2", n, err)
	}
	if all, _ := s.List(0); len(all) != 0 {
		t.Errorf("List after Clear = %+v", all)
	}
}

func TestSQLiteStore_Search(t *testing.T) {
	s := openStore(t)
	for _, r := range []*Record{
		{ID: "rivers", Summary: "Rivers carry fresh water to the sea."},
		{ID: "museum", Summary: "The museum opens at nine."},
		{ID: "farms", Summary: "Farms need fresh water."},
	} {
		r.SourceKind = SourceText
		r.SourceText = r.Summary
		if err := s.Save(r); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.Search("fresh water rivers", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2: %+v", len(results), results)
	}
	if results[0].ID != "rivers" || results[1].ID != "farms" {
		t.Errorf("Search() order = %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Similarity <= results[1].Similarity {
		t.Errorf("similarities not descending: %v, %v", results[0].Similarity, results[1].Similarity)
	}

	limited, err := s.Search("fresh water", 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("Search(limit 1) = %d results, %v", len(limited), err)
	}

	if _, err := s.Search("the of and", 5); !errortypes.IsInvalidInputError(err) {
		t.Errorf("stopword-only query error = %v, want invalid input", err)
	}
}

func TestSQLiteStore_NotInitialized(t *testing.T) {
	s := NewSQLiteStore(nil)
	if err := s.Save(&Record{Summary: "x"}); errortypes.TypeOf(err) != errortypes.ErrorTypeDatabase {
		t.Errorf("Save() error = %v, want database error", err)
	}
	if _, err := s.Get("x"); errortypes.TypeOf(err) != errortypes.ErrorTypeDatabase {
		t.Errorf("Get() error = %v, want database error", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on unopened store = %v", err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.db")
	s := NewSQLiteStore(nil)
	if err := s.Initialize(path); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(&Record{ID: "kept", SourceKind: SourceFile, SourceText: "a", Summary: "a"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened := NewSQLiteStore(nil)
	if err := reopened.Initialize(path); err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, err := reopened.Get("kept"); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
	if reopened.Path() != path {
		t.Errorf("Path() = %q", reopened.Path())
	}
}
