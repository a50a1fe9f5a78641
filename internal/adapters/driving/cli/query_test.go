package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

func sampleRetrieval() *domain.RetrievalResult {
	return &domain.RetrievalResult{
		Context: "[Document: a.txt, Chunk 0]\nalpha",
		Sources: []domain.Source{{SourceName: "a.txt", ChunkIndex: 0, Relevance: 0.875}},
	}
}

func TestQueryCmd_UsesSettingsDefaults(t *testing.T) {
	rag, settings := setupTestServices(t)
	settings.settings.RAG.TopK = 5
	settings.settings.RAG.MaxContextChars = 1500

	_, err := execute(t, "query", "what", "is", "alpha")
	require.NoError(t, err)

	require.Len(t, rag.retrieved, 1)
	req := rag.retrieved[0]
	assert.Equal(t, "what is alpha", req.Query)
	assert.Equal(t, 5, req.TopK)
	assert.Equal(t, 1500, req.MaxContextChars)
	assert.True(t, req.Filter.IsEmpty())
}

func TestQueryCmd_FlagsOverrideSettings(t *testing.T) {
	rag, _ := setupTestServices(t)

	_, err := execute(t, "query", "-k", "7", "--max-chars", "300", "--source", "a.txt", "--type", "PDF", "alpha")
	require.NoError(t, err)

	require.Len(t, rag.retrieved, 1)
	req := rag.retrieved[0]
	assert.Equal(t, 7, req.TopK)
	assert.Equal(t, 300, req.MaxContextChars)
	assert.Equal(t, "a.txt", req.Filter.Source)
	assert.Equal(t, domain.FileTypePDF, req.Filter.FileType)
}

func TestQueryCmd_RejectsUnknownType(t *testing.T) {
	rag, _ := setupTestServices(t)

	_, err := execute(t, "query", "--type", "xlsx", "alpha")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
	assert.Empty(t, rag.retrieved)
}

func TestQueryCmd_TextOutput(t *testing.T) {
	rag, _ := setupTestServices(t)
	rag.retrieveResult = sampleRetrieval()

	out, err := execute(t, "query", "alpha")
	require.NoError(t, err)

	assert.Contains(t, out, "[Document: a.txt, Chunk 0]")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] a.txt, chunk 0 (0.875)")
	assert.Contains(t, out, "tokens")
}

func TestQueryCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "query", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant context found.")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	rag, _ := setupTestServices(t)
	rag.retrieveResult = sampleRetrieval()

	out, err := execute(t, "query", "--json", "alpha")
	require.NoError(t, err)

	var decoded struct {
		Context string          `json:"context"`
		Sources []domain.Source `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, rag.retrieveResult.Context, decoded.Context)
	require.Len(t, decoded.Sources, 1)
	assert.Equal(t, "a.txt", decoded.Sources[0].SourceName)
}

func TestQueryCmd_PromptOutput(t *testing.T) {
	rag, _ := setupTestServices(t)
	rag.retrieveResult = sampleRetrieval()

	out, err := execute(t, "query", "--prompt", "what is alpha")
	require.NoError(t, err)

	assert.Contains(t, out, "[Document: a.txt, Chunk 0]")
	assert.Contains(t, out, "User question: what is alpha")
}

func TestQueryCmd_RetrieveError(t *testing.T) {
	rag, _ := setupTestServices(t)
	rag.retrieveErr = domain.ErrStoreUnavailable

	_, err := execute(t, "query", "alpha")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "retrieval failed")
}
