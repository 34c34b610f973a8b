package textrank

import (
	"strings"
	"unicode"

	"github.com/localrivet/textsummarizer/internal/stopwords"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TokenVector is the filtered token sequence of one sentence. It may be empty.
type TokenVector []string

// Vectorizer turns sentences into token vectors. It holds only the
// read-only stopword set and is safe for concurrent use.
type Vectorizer struct {
	stopwords stopwords.Set
}

// NewVectorizer creates a Vectorizer. A nil set means the built-in English list.
func NewVectorizer(set stopwords.Set) *Vectorizer {
	if set == nil {
		set = stopwords.English()
	}
	return &Vectorizer{stopwords: set}
}

// Vectorize builds one token vector per sentence, in sentence order.
func (v *Vectorizer) Vectorize(sents []Sentence) []TokenVector {
	// cases.Caser keeps state between calls, so each call gets its own.
	caser := cases.Lower(language.Und)
	out := make([]TokenVector, len(sents))
	for i, s := range sents {
		out[i] = v.vector(caser, s.Text)
	}
	return out
}

// Vectorize is shorthand for NewVectorizer(set).Vectorize(sents).
func Vectorize(sents []Sentence, set stopwords.Set) []TokenVector {
	return NewVectorizer(set).Vectorize(sents)
}

// Vector builds the token vector of a single piece of text.
func (v *Vectorizer) Vector(text string) TokenVector {
	return v.vector(cases.Lower(language.Und), text)
}

func (v *Vectorizer) vector(caser cases.Caser, text string) TokenVector {
	var vec TokenVector
	for _, tok := range Tokenize(caser.String(norm.NFC.String(text))) {
		if !isAlnum(tok) || v.stopwords.Contains(tok) {
			continue
		}
		vec = append(vec, tok)
	}
	return vec
}

// Tokenize splits lower-cased text into word tokens. Punctuation separates
// words even without surrounding spaces ("solar,wind" yields "solar" and
// "wind"). Hyphenated words and digit groups such as "1,000" stay whole, and
// English contractions are cut at the apostrophe ("don't" yields "do").
func Tokenize(text string) []string {
	var out []string
	for _, field := range strings.Fields(text) {
		for _, piece := range splitWords(field) {
			if tok := wordCore(piece); tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// splitWords cuts a whitespace-free field at every rune that cannot belong
// to a word.
func splitWords(field string) []string {
	runes := []rune(field)
	var pieces []string
	start := 0
	for i, r := range runes {
		if isWordRune(r) || (r == ',' || r == '.') && betweenDigits(runes, i) {
			continue
		}
		if i > start {
			pieces = append(pieces, string(runes[start:i]))
		}
		start = i + 1
	}
	if start < len(runes) {
		pieces = append(pieces, string(runes[start:]))
	}
	return pieces
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' || r == '’'
}

func betweenDigits(runes []rune, i int) bool {
	return i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

// wordCore trims non-alphanumeric edges and applies the contraction rule.
func wordCore(piece string) string {
	core := strings.TrimFunc(piece, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if core == "" {
		return ""
	}
	core = strings.ReplaceAll(core, "’", "'")
	if stem, ok := strings.CutSuffix(core, "n't"); ok && stem != "" {
		core = stem
	} else if i := strings.IndexByte(core, '\''); i > 0 {
		core = core[:i]
	}
	return core
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// termFrequencies counts occurrences of each token.
func termFrequencies(vec TokenVector) map[string]int {
	tf := make(map[string]int, len(vec))
	for _, w := range vec {
		tf[w]++
	}
	return tf
}
