package domain

import "fmt"

// ChunkOptions controls how normalised text is windowed into chunks.
type ChunkOptions struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the number of characters consecutive chunk windows share.
	Overlap int
}

// Validate returns ErrInvalidConfig unless 0 <= Overlap < Size.
func (o ChunkOptions) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, o.Size)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, o.Overlap)
	}
	if o.Overlap >= o.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			ErrInvalidConfig, o.Overlap, o.Size)
	}
	return nil
}

// Stride is the distance between consecutive chunk starts.
func (o ChunkOptions) Stride() int {
	return o.Size - o.Overlap
}

// MetadataFilter narrows a query to records whose metadata equals every set field.
// Zero-valued fields do not constrain.
type MetadataFilter struct {
	Source   string
	FileType FileType
}

// IsEmpty returns true if the filter matches everything.
func (f MetadataFilter) IsEmpty() bool {
	return f.Source == "" && f.FileType == ""
}

// Matches reports whether the metadata satisfies the filter.
func (f MetadataFilter) Matches(m ChunkMetadata) bool {
	if f.Source != "" && m.Source != f.Source {
		return false
	}
	if f.FileType != "" && m.FileType != f.FileType {
		return false
	}
	return true
}

// QueryResult is one ranked hit from the vector store.
type QueryResult struct {
	// Text is the stored chunk text.
	Text string

	// Metadata is the stored chunk metadata.
	Metadata ChunkMetadata

	// Distance is the dissimilarity in [0,1]; lower is closer.
	Distance float64
}

// Relevance is 1 - Distance, clamped to [0,1].
func (r QueryResult) Relevance() float64 {
	rel := 1 - r.Distance
	if rel < 0 {
		return 0
	}
	if rel > 1 {
		return 1
	}
	return rel
}

// Less orders results by distance, then source, then chunk index.
// Used as the stable ranking key across all stores.
func (r QueryResult) Less(other QueryResult) bool {
	if r.Distance != other.Distance {
		return r.Distance < other.Distance
	}
	if r.Metadata.Source != other.Metadata.Source {
		return r.Metadata.Source < other.Metadata.Source
	}
	return r.Metadata.ChunkIndex < other.Metadata.ChunkIndex
}

// Source is the citation for a chunk included in assembled context.
type Source struct {
	SourceName string  `json:"source_name"`
	ChunkIndex int     `json:"chunk_index"`
	Relevance  float64 `json:"relevance"`
}

// RetrieveRequest asks for context relevant to a query.
type RetrieveRequest struct {
	Query           string
	TopK            int
	MaxContextChars int
	Filter          MetadataFilter
}

// RetrievalResult is the assembled context plus its citations.
type RetrievalResult struct {
	// Context is the assembled context string, never longer than MaxContextChars.
	Context string `json:"context"`

	// Sources lists the included chunks in append order.
	Sources []Source `json:"sources"`

	// Results are the raw ranked hits before assembly.
	Results []QueryResult `json:"-"`
}

// IngestRequest carries one uploaded document and its chunking parameters.
type IngestRequest struct {
	Content   []byte
	FileName  string
	FileType  FileType
	ChunkSize int
	Overlap   int
}

// IngestError records a document or chunk level failure.
type IngestError struct {
	// Source is the document the failure belongs to.
	Source string

	// ChunkIndex is the failing chunk, or -1 for document-level failures.
	ChunkIndex int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e IngestError) Error() string {
	if e.ChunkIndex < 0 {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s chunk %d: %v", e.Source, e.ChunkIndex, e.Err)
}

// Unwrap returns the underlying error.
func (e IngestError) Unwrap() error {
	return e.Err
}

// IngestReport summarises one document's ingestion.
type IngestReport struct {
	Source            string        `json:"source"`
	TotalChunks       int           `json:"total_chunks"`
	Accepted          int           `json:"accepted"`
	SkippedDuplicates int           `json:"skipped_duplicates"`
	Errors            []IngestError `json:"-"`
}

// HasErrors returns true if any document or chunk failed.
func (r *IngestReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// IngestProgress is emitted once per document by batch ingestion.
type IngestProgress struct {
	// Index is the 0-based position of the document in the batch.
	Index int

	// Total is the batch size.
	Total int

	// Report is the finished document's report.
	Report *IngestReport
}

// ProgressFunc receives per-document progress notifications.
type ProgressFunc func(IngestProgress)

// AddResult reports what a store did with a batch of records.
type AddResult struct {
	// Added is the number of records persisted.
	Added int

	// Duplicates is the number of records ignored because their hash already existed.
	Duplicates int
}

// CollectionInfo describes a collection.
type CollectionInfo struct {
	Name           string         `json:"name"`
	Backend        string         `json:"backend"`
	Location       string         `json:"location"`
	Count          int            `json:"count"`
	EmbeddingModel EmbeddingModel `json:"embedding_model"`
}
