package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Registered(t *testing.T) {
	var found bool
	for _, c := range rootCmd.Commands() {
		if c == mcpCmd {
			found = true
		}
	}
	assert.True(t, found)
	assert.Contains(t, mcpCmd.Commands(), mcpServeCmd)
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	defer resetFlags()
	SetServices(nil)

	_, err := execute("mcp", "serve")
	assert.Error(t, err)
}
