// Package pdf extracts page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageSeparator is placed between the text of consecutive pages.
const PageSeparator = "\n\n"

var errNoText = errors.New("no page yielded text")

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}

// Normalise returns page texts in page order joined by PageSeparator.
// Pages the decoder cannot read are skipped; the document fails only when
// no page yields text.
func (n *Normaliser) Normalise(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := openReader(doc.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailure, doc.SourceName, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	skipped := 0

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := pageText(reader, i)
		if err != nil {
			logger.Warn("pdf %s: skipping page %d: %v", doc.SourceName, i, err)
			skipped++
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}

	logger.Debug("pdf %s: %d/%d pages with text, %d unreadable", doc.SourceName, len(pages), numPages, skipped)

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailure, doc.SourceName, errNoText)
	}

	return strings.Join(pages, PageSeparator), nil
}

// openReader parses the PDF cross-reference structure.
// The decoder panics on some malformed inputs, which is reported as an error.
func openReader(content []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// pageText decodes one page, converting decoder panics into errors.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page: %v", r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}

	return page.GetPlainText(nil)
}
