//nolint:testpackage // Need access to internal helpers
package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/clientforge-io/forge/pkg/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []string
		want    []forge.Selection
		wantErr bool
	}{
		{
			name: "bare key",
			raw:  []string{"title"},
			want: []forge.Selection{forge.Key("title")},
		},
		{
			name: "aliased expression",
			raw:  []string{"cost=price"},
			want: []forge.Selection{forge.Alias("cost", "price")},
		},
		{
			name: "mixed",
			raw:  []string{"title", "origin=author.country"},
			want: []forge.Selection{forge.Key("title"), forge.Alias("origin", "author.country")},
		},
		{
			name:    "empty key",
			raw:     []string{"=price"},
			wantErr: true,
		},
		{
			name:    "empty expression",
			raw:     []string{"cost="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			selections, err := parseSelections(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSelection)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, selections)
		})
	}
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	params, err := parseParams([]string{"state=published", "sort=-created_at"})
	require.NoError(t, err)

	values := params.ToValues()
	assert.Equal(t, "published", values.Get("state"))
	assert.Equal(t, "-created_at", values.Get("sort"))

	_, err = parseParams([]string{"no-equals"})
	require.ErrorIs(t, err, ErrInvalidParam)
}

func TestRenderOutput(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{"title": "Moby Dick", "price": json.Number("8.99")},
		{"title": "Sword of Honour", "price": json.Number("12.99")},
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		require.NoError(t, renderOutput(&buf, rows, OutputFormatJSON))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Len(t, decoded, 2)
		assert.Equal(t, "Moby Dick", decoded[0]["title"])
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		require.NoError(t, renderOutput(&buf, rows, OutputFormatYAML))
		assert.Contains(t, buf.String(), "Moby Dick")
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		require.NoError(t, renderOutput(&buf, rows, "table"))

		out := buf.String()
		assert.Contains(t, out, "Moby Dick")
		assert.Contains(t, out, "8.99")
	})

	t.Run("table falls back to json for scalars", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		require.NoError(t, renderOutput(&buf, []any{"a", "b"}, "table"))

		var decoded []string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, []string{"a", "b"}, decoded)
	})
}

func TestTabularRows(t *testing.T) {
	t.Parallel()

	assert.Len(t, tabularRows([]any{map[string]any{"a": 1}}), 1)
	assert.Len(t, tabularRows(map[string]any{"a": 1}), 1)
	assert.Nil(t, tabularRows([]any{"scalar"}))
	assert.Nil(t, tabularRows(42))
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NotAvailable, formatCell(nil))
	assert.Equal(t, "text", formatCell("text"))
	assert.Equal(t, "8.99", formatCell(json.Number("8.99")))
	assert.Equal(t, "a, b", formatCell([]any{"a", "b"}))
	assert.Equal(t, "true", formatCell(true))
}

func TestExtractDomainFromEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api.example.com", extractDomainFromEndpoint("https://api.example.com"))
	assert.Equal(t, "api.example.com:8080", extractDomainFromEndpoint("http://api.example.com:8080/v1"))
	assert.Equal(t, "api.example.com", extractDomainFromEndpoint("api.example.com"))
}
