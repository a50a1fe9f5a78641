package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
	calls  int
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *driven.ChunkSource, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func testSource() *driven.ChunkSource {
	return &driven.ChunkSource{Text: "content", Source: "a.txt", FileType: domain.FileTypeTXT}
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Len())
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_Process_NilSource(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), testSource())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	first := &mockProcessor{name: "first", chunks: []domain.Chunk{{Text: "a"}, {Text: "b"}}}
	second := &mockProcessor{name: "second"}

	chunks, err := NewPipeline(first, second).Process(context.Background(), testSource())
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	boom := errors.New("boom")
	failing := &mockProcessor{name: "failing", err: boom}
	after := &mockProcessor{name: "after"}

	_, err := NewPipeline(failing, after).Process(context.Background(), testSource())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 0, after.calls)
}
