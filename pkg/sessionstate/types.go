package sessionstate

import (
	"fmt"
	"time"
)

// AuthMethod selects how the session database connection authenticates.
type AuthMethod int

const (
	// AuthMethodSQL uses a SQL login (user ID + password).
	AuthMethodSQL AuthMethod = iota

	// AuthMethodIntegrated uses the process identity (Windows
	// integrated security / Kerberos).
	AuthMethodIntegrated

	// AuthMethodAzureEntraID uses an Azure Entra ID token.
	AuthMethodAzureEntraID
)

// String returns the connection-string spelling of the auth method.
func (m AuthMethod) String() string {
	switch m {
	case AuthMethodSQL:
		return "sql"
	case AuthMethodIntegrated:
		return "integrated"
	case AuthMethodAzureEntraID:
		return "azure-entra-id"
	default:
		return fmt.Sprintf("auth_method(%d)", int(m))
	}
}

// ParseAuthMethod maps a config-file spelling to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "sql":
		return AuthMethodSQL, nil
	case "integrated":
		return AuthMethodIntegrated, nil
	case "azure-entra-id", "azuread":
		return AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// ConnectionConfig describes the session database connection target.
// Opaque to the retry layer; consumed when opening connections.
type ConnectionConfig struct {
	// Server is the SQL Server host name or address.
	Server string

	// Port is the TCP port (0 means the driver default, 1433).
	Port int

	// Database is the session-state database name.
	Database string

	// UserID and Password authenticate SQL logins. Ignored for
	// integrated and Entra ID authentication.
	UserID   string
	Password string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters
	// (used when AuthMethod is AuthMethodAzureEntraID).
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks the config for the selected auth method.
func (c *ConnectionConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server is required: %w", ErrInvalidConfig)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required: %w", ErrInvalidConfig)
	}
	if c.AuthMethod == AuthMethodSQL && c.UserID == "" {
		return fmt.Errorf("user ID is required for SQL authentication: %w", ErrInvalidConfig)
	}
	return nil
}

// Settings is the process-wide configuration of the command layer:
// where to connect and how long fatal-transient faults may be retried.
type Settings struct {
	// Connection is the session database target.
	Connection ConnectionConfig

	// RetryBudget bounds total fatal-transient retrying per command.
	// Zero disables fatal-transient retries entirely.
	RetryBudget time.Duration
}
