package domain

import (
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// FileType identifies a supported upload format.
type FileType string

// Supported file types.
const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	return slices.Contains(AllFileTypes(), t)
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// AllFileTypes returns every supported file type.
func AllFileTypes() []FileType {
	return []FileType{FileTypePDF, FileTypeDOCX, FileTypeTXT}
}

func supportedFileTypes() string {
	names := make([]string, 0, len(AllFileTypes()))
	for _, t := range AllFileTypes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

// ParseFileType parses a file type name such as "pdf" or ".PDF".
func ParseFileType(s string) (FileType, error) {
	t := FileType(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if t == "text" || t == "md" {
		t = FileTypeTXT
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, s, supportedFileTypes())
	}
	return t, nil
}

// FileTypeFromName derives the file type from a file name's extension.
func FileTypeFromName(name string) (FileType, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFileType(ext)
}

// Document is an uploaded artifact awaiting extraction.
// It is consumed entirely by extraction and never persisted.
type Document struct {
	// SourceName identifies the document within a collection (usually the file name).
	SourceName string

	// FileType selects the extractor.
	FileType FileType

	// ByteSize is the size of the raw upload.
	ByteSize int64

	// Content is the raw uploaded bytes.
	Content []byte
}

// ChunkMetadata is the fixed metadata carried by every chunk and record.
type ChunkMetadata struct {
	// Source is the originating document name.
	Source string `json:"source"`

	// FileType is the originating document type.
	FileType FileType `json:"file_type"`

	// FileSize is the originating document size in bytes.
	FileSize int64 `json:"file_size"`

	// ChunkIndex is the 0-based position within the document's chunk sequence.
	ChunkIndex int `json:"chunk_index"`

	// ChunkSize is the character length of the chunk text.
	ChunkSize int `json:"chunk_size"`

	// ContentHash is the dedupe key, see ContentHash.
	ContentHash string `json:"content_hash"`
}

// Chunk is a contiguous substring of a document's normalised text.
// Chunks are immutable once created.
type Chunk struct {
	// Text is the chunk content. Never empty.
	Text string

	// Metadata describes where the chunk came from.
	Metadata ChunkMetadata
}

// ContentHash returns the lowercase hex SHA-1 digest of the exact text.
// It is case and whitespace sensitive.
func ContentHash(text string) string {
	sum := sha1.Sum([]byte(text)) //nolint:gosec // content addressing, not security
	return hex.EncodeToString(sum[:])
}

// EmbeddingRecord is the persisted unit of the vector store, one per accepted chunk.
type EmbeddingRecord struct {
	// ID is the store's record identifier.
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Chunk is the embedded chunk with its metadata.
	Chunk Chunk
}

// EmbeddingModel identifies the vector space a collection lives in.
type EmbeddingModel struct {
	// Name is the model name reported by the embedding service.
	Name string

	// Dimensions is the vector size.
	Dimensions int
}

// Matches returns true if both models describe the same vector space.
func (m EmbeddingModel) Matches(other EmbeddingModel) bool {
	return m.Name == other.Name && m.Dimensions == other.Dimensions
}

// String returns a display form such as "text-embedding-3-small (1536d)".
func (m EmbeddingModel) String() string {
	return fmt.Sprintf("%s (%dd)", m.Name, m.Dimensions)
}
