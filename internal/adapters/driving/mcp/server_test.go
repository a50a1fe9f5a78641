package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid ports", func(t *testing.T) {
		server, err := NewServer(&Ports{RAG: &mockRAGService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.server)
	})

	t.Run("returns error with nil ports", func(t *testing.T) {
		server, err := NewServer(nil)
		require.ErrorIs(t, err, ErrMissingRAGService)
		assert.Nil(t, server)
	})

	t.Run("returns error without rag service", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.ErrorIs(t, err, ErrMissingRAGService)
		assert.Nil(t, server)
	})
}

func TestPorts_Defaults(t *testing.T) {
	t.Run("zero values fall back to domain defaults", func(t *testing.T) {
		p := &Ports{RAG: &mockRAGService{}}
		d := p.defaults()
		assert.Equal(t, 1000, d.ChunkSize)
		assert.Equal(t, 200, d.Overlap)
		assert.Equal(t, 3, d.TopK)
		assert.Equal(t, 2000, d.MaxContextChars)
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		p := &Ports{RAG: &mockRAGService{}}
		p.Defaults.ChunkSize = 500
		p.Defaults.Overlap = 0
		p.Defaults.TopK = 7
		d := p.defaults()
		assert.Equal(t, 500, d.ChunkSize)
		assert.Equal(t, 0, d.Overlap)
		assert.Equal(t, 7, d.TopK)
	})
}

func TestServer_Handler(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ragcore_collection_records 3\n"))
	})

	server, err := NewServer(&Ports{RAG: &mockRAGService{}}, WithHTTPHandler("/metrics", metrics))
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{RAG: &mockRAGService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.RunHTTP(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
