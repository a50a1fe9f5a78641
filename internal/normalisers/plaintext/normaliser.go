// Package plaintext extracts text from plain text uploads.
package plaintext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeTXT}
}

// Normalise decodes the document as UTF-8.
// Bytes that are not valid UTF-8 are decoded as Windows-1252 one byte at a
// time, so no input is ever dropped and decoding never fails.
func (n *Normaliser) Normalise(_ context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(doc.Content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}

	logger.Debug("plaintext %s: invalid UTF-8, decoding leniently", doc.SourceName)
	return decodeLenient(content), nil
}

// decodeLenient keeps every valid UTF-8 sequence and maps each stray byte
// through Windows-1252, which assigns a rune to all 256 byte values.
func decodeLenient(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			r = charmap.Windows1252.DecodeByte(b[0])
		}
		sb.WriteRune(r)
		b = b[size:]
	}

	return sb.String()
}
