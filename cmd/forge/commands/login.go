package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/clientforge-io/forge/internal/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an API",
		Long:  "Authenticate with an API endpoint and store the resulting token",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			apiConfig, name, err := resolveAPIConfig(config, viper.GetString("api"))
			if err != nil {
				return err
			}

			tokenURL := apiConfig.TokenURL
			if tokenURL == "" {
				tokenURL = strings.TrimSuffix(apiConfig.Endpoint, "/") + "/oauth/token"
			}

			oauthConfig := &auth.OAuth2Config{
				TokenURL:     tokenURL,
				RefreshToken: apiConfig.RefreshToken,
			}

			switch {
			case clientID != "" && clientSecret != "":
				oauthConfig.ClientID = clientID
				oauthConfig.ClientSecret = clientSecret
			default:
				if username == "" {
					reader := bufio.NewReader(cmd.InOrStdin())
					cmd.Print("Username: ")
					username, _ = reader.ReadString('\n')
					username = strings.TrimSpace(username)
				}

				if password == "" {
					cmd.Print("Password: ")

					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}

					password = string(bytePassword)

					cmd.Println()
				}

				oauthConfig.Username = username
				oauthConfig.Password = password
			}

			persisting := auth.NewPersistingTokenManager(oauthConfig, NewConfigPersister(), name, "", time.Time{})

			token, err := persisting.GetToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			// Record the username and make this the current API
			apiConfig.Username = username
			config.CurrentAPI = name

			if apiConfig.Token == "" {
				// The persister may have raced config load, keep it consistent
				apiConfig.Token = token
			}

			err = saveConfigStruct(config)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save config: %v\n", err)
			}

			cmd.Printf("Logged in to '%s' (%s)\n", name, apiConfig.Endpoint)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for password grant")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for password grant")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of an API",
		Long:  "Discard stored credentials for an API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			apiConfig, name, err := resolveAPIConfig(config, viper.GetString("api"))
			if err != nil {
				return err
			}

			if apiConfig.Token == "" && apiConfig.RefreshToken == "" {
				return fmt.Errorf("%w: %s", ErrNotLoggedIn, name)
			}

			apiConfig.Token = ""
			apiConfig.RefreshToken = ""
			apiConfig.TokenExpiresAt = nil
			apiConfig.LastRefreshed = nil

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			cmd.Printf("Logged out of '%s'\n", name)

			return nil
		},
	}

	return cmd
}
