package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_HasDescription(t *testing.T) {
	assert.NotEmpty(t, tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "retrieval")
}

func TestRunTUI_RequiresRAGService(t *testing.T) {
	setupTestServices(t)
	ragService = nil

	err := runTUI(tuiCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create TUI")
}
