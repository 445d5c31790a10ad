package forge_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientforge-io/forge/pkg/forge"
)

func TestResponseError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *forge.ResponseError
		want string
	}{
		{
			name: "no error objects",
			err:  &forge.ResponseError{StatusCode: http.StatusBadGateway},
			want: "request failed with status 502",
		},
		{
			name: "single error",
			err: &forge.ResponseError{
				StatusCode: http.StatusNotFound,
				Errors: []forge.APIError{
					{Status: 404, Title: "CF-ResourceNotFound", Detail: "Book not found"},
				},
			},
			want: "CF-ResourceNotFound: Book not found (status: 404)",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.err.Error())
		})
	}
}

func TestResponseError_FirstError(t *testing.T) {
	t.Parallel()

	err := &forge.ResponseError{
		StatusCode: http.StatusUnprocessableEntity,
		Errors: []forge.APIError{
			{Status: 422, Title: "Invalid", Detail: "first"},
			{Status: 422, Title: "Invalid", Detail: "second"},
		},
	}

	first := err.FirstError()
	require.NotNil(t, first)
	assert.Equal(t, "first", first.Detail)

	empty := &forge.ResponseError{StatusCode: http.StatusTeapot}
	assert.Nil(t, empty.FirstError())
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{
			name:    "not found via response error",
			err:     &forge.ResponseError{StatusCode: http.StatusNotFound},
			checker: forge.IsNotFound,
			want:    true,
		},
		{
			name:    "not found via wrapped error",
			err:     fmt.Errorf("fetching book: %w", &forge.ResponseError{StatusCode: http.StatusNotFound}),
			checker: forge.IsNotFound,
			want:    true,
		},
		{
			name:    "unauthorized",
			err:     &forge.ResponseError{StatusCode: http.StatusUnauthorized},
			checker: forge.IsUnauthorized,
			want:    true,
		},
		{
			name:    "forbidden via api error",
			err:     &forge.APIError{Status: http.StatusForbidden, Title: "Forbidden"},
			checker: forge.IsForbidden,
			want:    true,
		},
		{
			name:    "wrong status",
			err:     &forge.ResponseError{StatusCode: http.StatusInternalServerError},
			checker: forge.IsNotFound,
			want:    false,
		},
		{
			name:    "unrelated error",
			err:     fmt.Errorf("dial tcp: connection refused"),
			checker: forge.IsNotFound,
			want:    false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.checker(testCase.err))
		})
	}
}

func TestEngineErrorHelpers(t *testing.T) {
	t.Parallel()

	syntaxErr := error(&forge.PathSyntaxError{Expr: "items[", Offset: 5, Reason: "unterminated bracket"})
	evalErr := error(&forge.PathEvaluationError{Expr: "missing"})
	convErr := error(&forge.TypeConversionError{Expr: "title + 1", Value: "Moby Dick"})
	confErr := error(&forge.ConfigurationError{Message: "bad paginator"})

	assert.True(t, forge.IsPathSyntax(syntaxErr))
	assert.False(t, forge.IsPathSyntax(evalErr))

	assert.True(t, forge.IsPathEvaluation(evalErr))
	assert.False(t, forge.IsPathEvaluation(confErr))

	assert.True(t, forge.IsTypeConversion(convErr))
	assert.True(t, forge.IsConfiguration(fmt.Errorf("building: %w", confErr)))
}
