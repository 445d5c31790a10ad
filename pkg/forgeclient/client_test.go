package forgeclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clientforge-io/forge/pkg/forge"
	"github.com/clientforge-io/forge/pkg/forgeclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &forge.Config{
			APIEndpoint: "https://api.example.com",
		}

		client, err := forgeclient.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := forgeclient.New(nil)
		require.ErrorIs(t, err, forge.ErrConfigRequired)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := forgeclient.New(&forge.Config{})
		require.ErrorIs(t, err, forge.ErrEndpointRequired)
	})

	t.Run("normalizes endpoint", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			endpoint string
			want     string
		}{
			{name: "trailing slash stripped", endpoint: "https://api.example.com/", want: "https://api.example.com"},
			{name: "scheme added", endpoint: "api.example.com", want: "https://api.example.com"},
			{name: "http preserved", endpoint: "http://api.example.com", want: "http://api.example.com"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				client, err := forgeclient.New(&forge.Config{APIEndpoint: tt.endpoint})
				require.NoError(t, err)
				assert.Equal(t, tt.want, client.Endpoint())
			})
		}
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithEndpoint("https://api.example.com")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithToken("https://api.example.com", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithAPIKey("https://api.example.com", "test-key")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithClientCredentials(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithClientCredentials("https://api.example.com", "client-id", "client-secret")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	client, err := forgeclient.NewWithPassword("https://api.example.com", "username", "password")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	type book struct {
		Title string `json:"title"`
		Price float64
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/books":
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`[
				{"title": "Moby Dick", "Price": 8.99},
				{"title": "Sword of Honour", "Price": 12.99}
			]`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := forgeclient.NewWithEndpoint(server.URL)
	require.NoError(t, err)

	result, err := forge.FetchResult[book](context.Background(), client, "/books", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())

	titles, err := result.Query("title")
	require.NoError(t, err)
	assert.Equal(t, []any{"Moby Dick", "Sword of Honour"}, titles.Items())
}
