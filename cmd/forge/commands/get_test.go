//nolint:testpackage // Need access to internal helpers
package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetCommand(t *testing.T) {
	t.Parallel()

	cmd := NewGetCommand()
	assert.Equal(t, "get PATH", cmd.Use)
	assert.Equal(t, "Fetch a resource or collection", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	// Check flags
	assert.NotNil(t, cmd.Flags().Lookup("query"))
	assert.NotNil(t, cmd.Flags().Lookup("select"))
	assert.NotNil(t, cmd.Flags().Lookup("param"))
	assert.NotNil(t, cmd.Flags().Lookup("paginate"))
	assert.NotNil(t, cmd.Flags().Lookup("page-size"))
	assert.NotNil(t, cmd.Flags().Lookup("max-pages"))
	assert.NotNil(t, cmd.Flags().Lookup("data-path"))
	assert.NotNil(t, cmd.Flags().Lookup("total-path"))
	assert.NotNil(t, cmd.Flags().Lookup("cursor-path"))
}

func TestResultFromNode(t *testing.T) {
	t.Parallel()

	collection := resultFromNode([]any{map[string]any{"a": json.Number("1")}})
	assert.False(t, collection.IsSingle())
	assert.Equal(t, 1, collection.Len())

	single := resultFromNode(map[string]any{"a": json.Number("1")})
	assert.True(t, single.IsSingle())

	item, err := single.One()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, item)
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCommand("1.2.3", "abc", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "show")
	assert.Contains(t, names, "set-api")
	assert.Contains(t, names, "unset-api")
	assert.Contains(t, names, "use")
}
