// Package pdfutil checks documents returned by the render service.
package pdfutil

import (
	"bytes"
	"errors"
	"fmt"

	pdf "github.com/ledongthuc/pdf"
)

// ErrEmptyDocument is returned for a PDF without pages.
var ErrEmptyDocument = errors.New("pdf has no pages")

// Inspect parses data and returns its page count. A body that is not a PDF,
// or a PDF without pages, is an error.
func Inspect(data []byte) (pages int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, fmt.Errorf("not a pdf document")
	}
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("new pdf reader: %w", err)
	}
	pages = doc.NumPage()
	if pages < 1 {
		return 0, ErrEmptyDocument
	}
	return pages, nil
}
