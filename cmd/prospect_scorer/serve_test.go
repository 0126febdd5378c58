package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PROSPECT_DATABASE_URL", "")

	_, err := runCLI(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	t.Setenv("PROSPECT_SERVER_PORT", "70000")

	_, err := runCLI(t, "serve", "--database-url", "postgres://localhost/none")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
