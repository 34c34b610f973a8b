// Package extract pulls plain text out of uploaded documents so it can be
// summarized. Supported formats are plain text, Markdown, HTML and DOCX.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/russross/blackfriday/v2"
)

// Format identifies a supported document type.
type Format string

// Supported formats
const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
)

var extensions = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".docx":     FormatDOCX,
}

// DefaultMaxExpandedBytes caps the decompressed size of a DOCX body when no
// limit is given.
const DefaultMaxExpandedBytes = 100 << 20

// blockSelector lists the HTML elements whose text forms a paragraph.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, td, th, dt, dd, figcaption"

// DetectFormat returns the format implied by the file extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return "", errortypes.UnsupportedError(fmt.Errorf("unsupported file format %s", ext), "unsupported file format").
		WithField("filename", filepath.Base(filename))
}

// Extract reads r and returns its text according to the format implied by
// filename. Paragraphs are separated by newlines.
func Extract(filename string, r io.Reader) (string, error) {
	return ExtractLimit(filename, r, DefaultMaxExpandedBytes)
}

// ExtractLimit is Extract with a cap on the decompressed size of archive
// formats. A non-positive maxExpanded means DefaultMaxExpandedBytes.
func ExtractLimit(filename string, r io.Reader, maxExpanded int64) (string, error) {
	if maxExpanded <= 0 {
		maxExpanded = DefaultMaxExpandedBytes
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errortypes.ProcessingError(err, "failed to read file").WithField("filename", filepath.Base(filename))
	}

	var text string
	switch format {
	case FormatText:
		text, err = plainText(data)
	case FormatMarkdown:
		text, err = markdownText(data)
	case FormatHTML:
		text, err = htmlText(bytes.NewReader(data))
	case FormatDOCX:
		text, err = docxText(data, maxExpanded)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", errortypes.InvalidInputError(errors.New("no text found"), "file contains no text").
			WithField("filename", filepath.Base(filename))
	}
	return text, nil
}

// ExtractFile opens path and extracts its text. Unsupported extensions are
// rejected before the file is opened.
func ExtractFile(path string) (string, error) {
	return ExtractFileLimit(path, DefaultMaxExpandedBytes)
}

// ExtractFileLimit is ExtractFile with the decompression cap of ExtractLimit.
func ExtractFileLimit(path string, maxExpanded int64) (string, error) {
	if _, err := DetectFormat(path); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errortypes.NotFoundError(err, "file not found").WithField("path", path)
		}
		return "", errortypes.ProcessingError(err, "failed to open file").WithField("path", path)
	}
	defer f.Close()
	return ExtractLimit(path, f, maxExpanded)
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errortypes.InvalidInputError(errors.New("file is not valid UTF-8"), "failed to decode text file")
	}
	return string(data), nil
}

// markdownText renders Markdown to HTML and reads the text back out, so
// markup and link targets never reach the summary.
func markdownText(data []byte) (string, error) {
	text, err := plainText(data)
	if err != nil {
		return "", err
	}
	rendered := blackfriday.Run([]byte(text), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return htmlText(bytes.NewReader(rendered))
}

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errortypes.ProcessingError(err, "failed to parse HTML")
	}
	doc.Find("script, style, noscript, template, head").Remove()

	var paragraphs []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are covered by their outermost ancestor.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := collapseSpace(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) == 0 {
		if t := collapseSpace(doc.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxText reads the paragraphs of word/document.xml, refusing bodies that
// inflate past limit bytes.
func docxText(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errortypes.InvalidInputError(err, "file is not a valid DOCX archive")
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errortypes.InvalidInputError(errors.New("word/document.xml missing"), "file is not a valid DOCX archive")
	}
	if doc.UncompressedSize64 > uint64(limit) {
		return "", docxTooLarge(limit)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", errortypes.ProcessingError(err, "failed to open DOCX body")
	}
	defer rc.Close()

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	body := &io.LimitedReader{R: rc, N: limit + 1}
	dec := xml.NewDecoder(body)
	for {
		tok, err := dec.Token()
		if body.N <= 0 {
			return "", docxTooLarge(limit)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errortypes.ProcessingError(err, "failed to parse DOCX body")
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab", "br", "cr":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return strings.Join(paragraphs, "\n"), nil
}

func docxTooLarge(limit int64) error {
	return errortypes.InvalidInputError(fmt.Errorf("document body exceeds %d bytes", limit), "DOCX body too large").
		WithField("limit", limit)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
