package stopwords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnglish(t *testing.T) {
	set := English()
	if set.Len() != 179 {
		t.Errorf("English() has %d words, want 179", set.Len())
	}

	for _, w := range []string{"the", "is", "are", "don't", "ourselves"} {
		if !set.Contains(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"sky", "blue", "cats", "mammals"} {
		if set.Contains(w) {
			t.Errorf("did not expect %q to be a stopword", w)
		}
	}

	// Same instance on every call.
	if again := English(); len(again) != len(set) {
		t.Errorf("English() returned a different set on second call")
	}
}

func TestLoad(t *testing.T) {
	input := "# comment\nFoo\n\n  bar  \nfoo\n"
	set, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Load() len = %d, want 2", set.Len())
	}
	if !set.Contains("foo") || !set.Contains("bar") {
		t.Errorf("Load() = %v, want foo and bar", set)
	}
}

func TestResolve(t *testing.T) {
	t.Run("no extra path", func(t *testing.T) {
		set, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if set.Len() != English().Len() {
			t.Errorf("Resolve(\"\") len = %d, want %d", set.Len(), English().Len())
		}
	})

	t.Run("extra file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "extra.txt")
		if err := os.WriteFile(path, []byte("lorem\nipsum\nthe\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		set, err := Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if set.Len() != English().Len()+2 {
			t.Errorf("Resolve() len = %d, want %d", set.Len(), English().Len()+2)
		}
		if English().Contains("lorem") {
			t.Errorf("Resolve must not mutate the built-in set")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Resolve(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Errorf("expected error for missing file")
		}
	})
}
