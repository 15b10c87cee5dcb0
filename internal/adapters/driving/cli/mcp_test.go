package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxport/internal/adapters/driving/mcp"
)

func TestMCPServeCmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"mcp", "serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	withServices(t, nil)

	_, _, err := run(t, "mcp", "serve")

	require.ErrorIs(t, err, mcp.ErrMissingExportService)
}
