package docload

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Format is the declared type of an uploaded document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatDOCX Format = "docx"
)

var (
	// ErrUnsupportedFormat marks a user-correctable upload with an
	// extension outside {pdf, txt, docx}.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtraction marks an unreadable or corrupt file.
	ErrExtraction = errors.New("document extraction failed")
)

// ParseFormat derives the format from a filename extension.
func ParseFormat(filename string) (Format, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	f := Format(ext)
	switch f {
	case FormatPDF, FormatTXT, FormatDOCX:
		return f, true
	}
	return f, false
}

// Load extracts plain text blocks from the file at path: one block per
// PDF page, one per DOCX paragraph, the whole file for TXT.
func Load(path string, format Format) ([]string, error) {
	switch format {
	case FormatPDF:
		return loadPDF(path)
	case FormatTXT:
		return loadTXT(path)
	case FormatDOCX:
		return loadDOCX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func loadTXT(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return []string{string(data)}, nil
}

func loadPDF(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// loadDOCX reads word/document.xml out of the docx zip and collects the
// text runs of each paragraph. Empty paragraphs are skipped.
func loadDOCX(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: word/document.xml missing", ErrExtraction)
	}
	defer doc.Close()

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	dec := xml.NewDecoder(doc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(current.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		}
	}
	return paragraphs, nil
}
