package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	// Add word/document.xml
	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

// wordXML wraps paragraphs in a document body.
func wordXML(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString(p)
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func newDoc(content []byte) *domain.Document {
	return &domain.Document{
		SourceName: "report.docx",
		FileType:   domain.FileTypeDOCX,
		ByteSize:   int64(len(content)),
		Content:    content,
	}
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []domain.FileType{domain.FileTypeDOCX}, New().SupportedTypes())
}

func TestNormalise_Success(t *testing.T) {
	data := createTestDOCX(wordXML(`<w:p><w:r><w:t>Hello, DOCX world.</w:t></w:r></w:p>`))

	text, err := New().Normalise(context.Background(), newDoc(data))
	require.NoError(t, err)
	assert.Equal(t, "Hello, DOCX world.", text)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_InvalidZip(t *testing.T) {
	_, err := New().Normalise(context.Background(), newDoc([]byte("not a zip file")))
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.Contains(t, err.Error(), "report.docx")
}

func TestNormalise_MissingDocumentPart(t *testing.T) {
	_, err := New().Normalise(context.Background(), newDoc(createTestDOCX("")))
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestNormalise_MalformedXML(t *testing.T) {
	_, err := New().Normalise(context.Background(), newDoc(createTestDOCX("<w:document><w:body>")))
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}

func TestNormalise_MultipleParagraphs(t *testing.T) {
	data := createTestDOCX(wordXML(
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`,
		`<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>`,
		`<w:p><w:r><w:t>Third paragraph.</w:t></w:r></w:p>`,
	))

	text, err := New().Normalise(context.Background(), newDoc(data))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.\nThird paragraph.", text)
}

func TestNormalise_MultipleRuns(t *testing.T) {
	data := createTestDOCX(wordXML(
		`<w:p><w:r><w:t xml:space="preserve">Bold </w:t></w:r><w:r><w:t>and plain</w:t></w:r></w:p>`,
	))

	text, err := New().Normalise(context.Background(), newDoc(data))
	require.NoError(t, err)
	assert.Equal(t, "Bold and plain", text)
}

func TestNormalise_EmptyParagraphsKeepLines(t *testing.T) {
	data := createTestDOCX(wordXML(
		`<w:p><w:r><w:t>Above</w:t></w:r></w:p>`,
		`<w:p></w:p>`,
		`<w:p><w:r><w:t>Below</w:t></w:r></w:p>`,
	))

	text, err := New().Normalise(context.Background(), newDoc(data))
	require.NoError(t, err)
	assert.Equal(t, "Above\n\nBelow", text)
}

func TestNormalise_EmptyDocument(t *testing.T) {
	text, err := New().Normalise(context.Background(), newDoc(createTestDOCX(wordXML())))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkNormalise(b *testing.B) {
	paras := make([]string, 200)
	for i := range paras {
		paras[i] = `<w:p><w:r><w:t>Benchmark paragraph content.</w:t></w:r></w:p>`
	}
	doc := newDoc(createTestDOCX(wordXML(paras...)))
	normaliser := New()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = normaliser.Normalise(ctx, doc)
	}
}
