// Package stopwords provides the stopword sets excluded from sentence
// similarity. The built-in English list is embedded and parsed once per
// process; sets are never mutated after construction.
package stopwords

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed english.txt
var englishList string

var (
	english     Set
	englishOnce sync.Once
)

// Set is an immutable collection of lower-cased stopwords.
type Set map[string]struct{}

// Contains reports whether word is a stopword. Word must already be lower-cased.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of stopwords in the set.
func (s Set) Len() int {
	return len(s)
}

// English returns the built-in English stopword set.
func English() Set {
	englishOnce.Do(func() {
		set, err := Load(strings.NewReader(englishList))
		if err != nil {
			// The embedded list is plain text; a read error here means the binary is broken.
			panic(fmt.Sprintf("stopwords: embedded english list: %v", err))
		}
		english = set
	})
	return english
}

// Load reads one stopword per line. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (Set, error) {
	set := make(Set)
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		w := strings.ToLower(strings.TrimSpace(scan.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		set[w] = struct{}{}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return set, nil
}

// LoadFile loads a stopword list from disk.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopword file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Merge returns a new set holding the union of sets.
func Merge(sets ...Set) Set {
	size := 0
	for _, s := range sets {
		size += len(s)
	}
	out := make(Set, size)
	for _, s := range sets {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}

// Resolve returns the English set, extended with the words in extraPath when
// extraPath is not empty.
func Resolve(extraPath string) (Set, error) {
	if extraPath == "" {
		return English(), nil
	}
	extra, err := LoadFile(extraPath)
	if err != nil {
		return nil, err
	}
	return Merge(English(), extra), nil
}
