package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirPerm  = 0o750
	configFilePerm = 0o600
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-API configuration
	APIs       map[string]*APIConfig `json:"apis,omitempty"        yaml:"apis,omitempty"`
	CurrentAPI string                `json:"current_api,omitempty" yaml:"current_api,omitempty"`

	// Global settings
	Output string `json:"output" yaml:"output"`
}

// APIConfig represents configuration for a single API endpoint.
type APIConfig struct {
	Endpoint       string            `json:"endpoint"                   yaml:"endpoint"`
	Token          string            `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time        `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string            `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time        `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	Username       string            `json:"username,omitempty"         yaml:"username,omitempty"`
	ClientID       string            `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string            `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	APIKey         string            `json:"api_key,omitempty"          yaml:"api_key,omitempty"`
	APIKeyHeader   string            `json:"api_key_header,omitempty"   yaml:"api_key_header,omitempty"`
	TokenURL       string            `json:"token_url,omitempty"        yaml:"token_url,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"          yaml:"headers,omitempty"`
}

// loadConfig reads the CLI configuration from viper.
func loadConfig() *Config {
	config := &Config{
		Output:     viper.GetString("output"),
		CurrentAPI: viper.GetString("current_api"),
		APIs:       make(map[string]*APIConfig),
	}

	for name, apiRaw := range viper.GetStringMap("apis") {
		if apiMap, ok := apiRaw.(map[string]interface{}); ok {
			config.APIs[name] = parseAPIConfig(apiMap)
		}
	}

	return config
}

// parseAPIConfig parses a single API configuration from a map.
func parseAPIConfig(apiMap map[string]interface{}) *APIConfig {
	apiConfig := &APIConfig{}

	stringFields := map[string]*string{
		"endpoint":       &apiConfig.Endpoint,
		"token":          &apiConfig.Token,
		"refresh_token":  &apiConfig.RefreshToken,
		"username":       &apiConfig.Username,
		"client_id":      &apiConfig.ClientID,
		"client_secret":  &apiConfig.ClientSecret,
		"api_key":        &apiConfig.APIKey,
		"api_key_header": &apiConfig.APIKeyHeader,
		"token_url":      &apiConfig.TokenURL,
	}

	for key, target := range stringFields {
		if value, ok := apiMap[key].(string); ok {
			*target = value
		}
	}

	if headersRaw, ok := apiMap["headers"].(map[string]interface{}); ok {
		apiConfig.Headers = make(map[string]string, len(headersRaw))

		for key, value := range headersRaw {
			if str, ok := value.(string); ok {
				apiConfig.Headers[key] = str
			}
		}
	}

	parseAPITimestamps(apiConfig, apiMap)

	return apiConfig
}

func parseAPITimestamps(apiConfig *APIConfig, apiMap map[string]interface{}) {
	if raw, ok := apiMap["token_expires_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			apiConfig.TokenExpiresAt = &parsed
		}
	}

	if raw, ok := apiMap["last_refreshed"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			apiConfig.LastRefreshed = &parsed
		}
	}
}

// saveConfigStruct writes the configuration back to the config file.
func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".forge")

		err = os.MkdirAll(configDir, configDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, configFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep viper in sync for the rest of the invocation
	viper.Set("current_api", config.CurrentAPI)

	return nil
}

// extractDomainFromEndpoint pulls a short config key out of an endpoint URL.
func extractDomainFromEndpoint(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	}

	return parsed.Host
}

// resolveAPIConfig looks up the API config by short name, falling back to
// the current API when name is empty.
func resolveAPIConfig(config *Config, name string) (*APIConfig, string, error) {
	if name == "" {
		name = config.CurrentAPI
	}

	if name == "" {
		return nil, "", ErrNoAPITargeted
	}

	apiConfig, exists := config.APIs[name]
	if !exists {
		// Allow endpoint URLs as well as short names
		key := extractDomainFromEndpoint(name)

		apiConfig, exists = config.APIs[key]
		if !exists {
			return nil, "", fmt.Errorf("%w: %s", ErrAPIConfigNotFound, name)
		}

		name = key
	}

	return apiConfig, name, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage forge CLI configuration including API endpoints and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetAPICommand())
	cmd.AddCommand(newConfigUnsetAPICommand())
	cmd.AddCommand(newConfigUseCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON, OutputFormatYAML:
				return renderOutput(cmd.OutOrStdout(), redactConfig(config), output)
			default:
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Name", "Endpoint", "Current")

				names := make([]string, 0, len(config.APIs))
				for name := range config.APIs {
					names = append(names, name)
				}

				sort.Strings(names)

				for _, name := range names {
					current := ""
					if name == config.CurrentAPI {
						current = Yes
					}

					_ = table.Append(name, config.APIs[name].Endpoint, current)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

// redactConfig returns a copy safe to print.
func redactConfig(config *Config) *Config {
	out := &Config{
		CurrentAPI: config.CurrentAPI,
		Output:     config.Output,
		APIs:       make(map[string]*APIConfig, len(config.APIs)),
	}

	for name, apiConfig := range config.APIs {
		redacted := *apiConfig
		if redacted.Token != "" {
			redacted.Token = Masked
		}

		if redacted.RefreshToken != "" {
			redacted.RefreshToken = Masked
		}

		if redacted.ClientSecret != "" {
			redacted.ClientSecret = Masked
		}

		if redacted.APIKey != "" {
			redacted.APIKey = Masked
		}

		out.APIs[name] = &redacted
	}

	return out
}

func newConfigSetAPICommand() *cobra.Command {
	var (
		apiKey       string
		apiKeyHeader string
		tokenURL     string
	)

	cmd := &cobra.Command{
		Use:   "set-api NAME ENDPOINT",
		Short: "Add or update an API endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			name, endpoint := args[0], args[1]

			apiConfig, exists := config.APIs[name]
			if !exists {
				apiConfig = &APIConfig{}
				config.APIs[name] = apiConfig
			}

			apiConfig.Endpoint = endpoint
			if apiKey != "" {
				apiConfig.APIKey = apiKey
				apiConfig.APIKeyHeader = apiKeyHeader
			}

			if tokenURL != "" {
				apiConfig.TokenURL = tokenURL
			}

			if config.CurrentAPI == "" {
				config.CurrentAPI = name
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			cmd.Printf("API '%s' set to %s\n", name, endpoint)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for this endpoint")
	cmd.Flags().StringVar(&apiKeyHeader, "api-key-header", "", "header name for the API key")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "OAuth2 token endpoint")

	return cmd
}

func newConfigUnsetAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset-api NAME",
		Short: "Remove an API endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			name := args[0]
			if _, exists := config.APIs[name]; !exists {
				return fmt.Errorf("%w: %s", ErrAPIConfigNotFound, name)
			}

			delete(config.APIs, name)

			if config.CurrentAPI == name {
				config.CurrentAPI = ""
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			cmd.Printf("API '%s' removed\n", name)

			return nil
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the current API endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			name := args[0]
			if _, exists := config.APIs[name]; !exists {
				return fmt.Errorf("%w: %s", ErrAPIConfigNotFound, name)
			}

			config.CurrentAPI = name

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			cmd.Printf("Now using API '%s'\n", name)

			return nil
		},
	}
}
