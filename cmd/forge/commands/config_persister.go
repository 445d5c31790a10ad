package commands

import (
	"fmt"
	"sync"
	"time"
)

// ConfigPersister implements the auth.TokenPersister interface by writing
// refreshed tokens back to the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken updates the token and related metadata in the config.
func (p *ConfigPersister) SaveToken(apiName, accessToken string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Load current config
	config := loadConfig()

	apiConfig, exists := config.APIs[apiName]
	if !exists {
		return fmt.Errorf("API configuration for '%s': %w", apiName, ErrAPIConfigNotFound)
	}

	// Update token information
	apiConfig.Token = accessToken
	if !expiresAt.IsZero() {
		apiConfig.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		apiConfig.RefreshToken = refreshToken
	}

	now := time.Now()
	apiConfig.LastRefreshed = &now

	// Save the updated config
	return saveConfigStruct(config)
}
