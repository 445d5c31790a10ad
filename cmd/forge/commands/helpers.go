package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/clientforge-io/forge/pkg/forge"
	"github.com/clientforge-io/forge/pkg/forgeclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// JSON formatting.
	defaultJSONIndent = "  "

	// Common values.
	Yes    = "yes"
	Masked = "***"
)

// Static errors for err113 compliance.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrAPIConfigNotFound   = errors.New("API configuration not found")
	ErrNoAPITargeted       = errors.New("no API targeted (run 'forge config use' or pass --api)")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrInvalidSelection    = errors.New("invalid selection, expected key=expression")
	ErrInvalidParam        = errors.New("invalid parameter, expected key=value")
)

// createClient builds a forge client from flags and stored configuration.
func createClient() (forge.Client, error) {
	config := loadConfig()

	clientConfig := &forge.Config{
		APIEndpoint: viper.GetString("api"),
		AccessToken: viper.GetString("token"),
		APIKey:      viper.GetString("api_key"),
	}

	// Enrich from the targeted API in the config file when one matches
	apiConfig, _, err := resolveAPIConfig(config, clientConfig.APIEndpoint)
	if err == nil {
		clientConfig.APIEndpoint = apiConfig.Endpoint

		if clientConfig.AccessToken == "" {
			clientConfig.AccessToken = apiConfig.Token
		}

		if clientConfig.APIKey == "" {
			clientConfig.APIKey = apiConfig.APIKey
			clientConfig.APIKeyHeader = apiConfig.APIKeyHeader
		}

		clientConfig.RefreshToken = apiConfig.RefreshToken
		clientConfig.TokenURL = apiConfig.TokenURL
		clientConfig.DefaultHeaders = apiConfig.Headers
	}

	if clientConfig.APIEndpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	return forgeclient.New(clientConfig)
}

// renderOutput writes value to out in the requested format. Table output
// falls back to JSON for values without tabular shape.
func renderOutput(out io.Writer, value any, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", defaultJSONIndent)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	default:
		return renderTable(out, value)
	}
}

// renderTable renders rows of maps as a table with a union of keys for
// columns. Anything else falls back to JSON.
func renderTable(out io.Writer, value any) error {
	rows := tabularRows(value)
	if rows == nil {
		return renderOutput(out, value, OutputFormatJSON)
	}

	columns := collectColumns(rows)
	if len(columns) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header(columns)

	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, formatCell(row[column]))
		}

		_ = table.Append(cells)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// tabularRows normalizes value into rows of maps, nil when not tabular.
func tabularRows(value any) []map[string]any {
	switch typed := value.(type) {
	case []map[string]any:
		return typed
	case map[string]any:
		return []map[string]any{typed}
	case []any:
		rows := make([]map[string]any, 0, len(typed))

		for _, item := range typed {
			row, ok := item.(map[string]any)
			if !ok {
				return nil
			}

			rows = append(rows, row)
		}

		return rows
	default:
		return nil
	}
}

func collectColumns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0)

	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true

				columns = append(columns, key)
			}
		}
	}

	sort.Strings(columns)

	return columns
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return NotAvailable
	case string:
		return typed
	case json.Number:
		return typed.String()
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, formatCell(item))
		}

		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// parseSelections parses repeated key=expression flags into selections.
// A bare expression selects under its own name.
func parseSelections(raw []string) ([]forge.Selection, error) {
	selections := make([]forge.Selection, 0, len(raw))

	for _, item := range raw {
		key, expr, found := strings.Cut(item, "=")
		if !found {
			selections = append(selections, forge.Key(item))

			continue
		}

		if key == "" || expr == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, item)
		}

		selections = append(selections, forge.Alias(key, expr))
	}

	return selections, nil
}
