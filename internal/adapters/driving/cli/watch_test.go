package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/connectors/filesystem"
	"github.com/custodia-labs/ragcore/internal/core/domain"
)

func TestConsumeChanges(t *testing.T) {
	rag, _ := setupTestServices(t)

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	changes := make(chan filesystem.Change, 3)
	changes <- filesystem.Change{
		Type:    filesystem.ChangeCreated,
		Path:    "/docs/a.txt",
		Request: &domain.IngestRequest{FileName: "a.txt", FileType: domain.FileTypeTXT, Content: []byte("alpha")},
	}
	changes <- filesystem.Change{Type: filesystem.ChangeDeleted, Path: "/docs/old.txt"}
	changes <- filesystem.Change{
		Type:    filesystem.ChangeUpdated,
		Path:    "/docs/b.txt",
		Request: &domain.IngestRequest{FileName: "b.txt", FileType: domain.FileTypeTXT, Content: []byte("beta")},
	}
	close(changes)

	settings := domain.RAGSettings{ChunkSize: 300, Overlap: 30}
	err := consumeChanges(context.Background(), cmd, changes, settings)
	require.NoError(t, err)

	require.Len(t, rag.ingested, 2)
	assert.Equal(t, "a.txt", rag.ingested[0].FileName)
	assert.Equal(t, "b.txt", rag.ingested[1].FileName)
	assert.Equal(t, 300, rag.ingested[0].ChunkSize)
	assert.Equal(t, 30, rag.ingested[0].Overlap)
	assert.Contains(t, buf.String(), "a.txt: 2 added, 0 duplicates skipped")
}

func TestConsumeChanges_StopsOnCancel(t *testing.T) {
	setupTestServices(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := consumeChanges(ctx, &cobra.Command{}, make(chan filesystem.Change), domain.RAGSettings{})
	assert.NoError(t, err)
}

func TestIngestChange_ReportsFailure(t *testing.T) {
	rag, _ := setupTestServices(t)
	rag.ingestErr = domain.ErrStoreUnavailable

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	ingestChange(context.Background(), cmd, domain.IngestRequest{FileName: "a.txt"}, domain.RAGSettings{ChunkSize: 10})

	assert.Contains(t, buf.String(), "a.txt:")
	assert.Contains(t, buf.String(), domain.ErrStoreUnavailable.Error())
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", "/nonexistent/ragcore/dir")
	assert.Error(t, err)
}
