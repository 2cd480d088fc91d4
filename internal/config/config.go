package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig is the file representation of the connection target.
type ConnectionConfig struct {
	Server            string `yaml:"server"`
	Port              int    `yaml:"port,omitempty"`
	Database          string `yaml:"database"`
	UserID            string `yaml:"user_id,omitempty"`
	Password          string `yaml:"password,omitempty"`
	AuthMethod        string `yaml:"auth_method,omitempty"`
	AzureTenantID     string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID     string `yaml:"azure_client_id,omitempty"`
	AzureClientSecret string `yaml:"azure_client_secret,omitempty"`
}

// FileConfig is the top-level config file layout.
type FileConfig struct {
	Connection  ConnectionConfig `yaml:"connection"`
	RetryBudget string           `yaml:"retry_budget,omitempty"`
}

const ConfigFileName = "sessdb.yaml"

// Load reads and parses the config file in sourcePath.
func Load(sourcePath string) (*FileConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve converts the file representation into runtime settings.
func (c *FileConfig) Resolve() (sessionstate.Settings, error) {
	authMethod, err := sessionstate.ParseAuthMethod(c.Connection.AuthMethod)
	if err != nil {
		return sessionstate.Settings{}, err
	}

	settings := sessionstate.Settings{
		Connection: sessionstate.ConnectionConfig{
			Server:            c.Connection.Server,
			Port:              c.Connection.Port,
			Database:          c.Connection.Database,
			UserID:            c.Connection.UserID,
			Password:          c.Connection.Password,
			AuthMethod:        authMethod,
			AzureTenantID:     c.Connection.AzureTenantID,
			AzureClientID:     c.Connection.AzureClientID,
			AzureClientSecret: c.Connection.AzureClientSecret,
		},
	}

	if c.RetryBudget != "" {
		budget, err := time.ParseDuration(c.RetryBudget)
		if err != nil {
			return sessionstate.Settings{}, fmt.Errorf("retry_budget %q: %w", c.RetryBudget, sessionstate.ErrInvalidConfig)
		}
		if budget < 0 {
			return sessionstate.Settings{}, fmt.Errorf("retry_budget must not be negative: %w", sessionstate.ErrInvalidConfig)
		}
		settings.RetryBudget = budget
	}

	if err := settings.Connection.Validate(); err != nil {
		return sessionstate.Settings{}, err
	}
	return settings, nil
}
