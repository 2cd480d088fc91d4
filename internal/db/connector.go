package db

import (
	"context"
	"database/sql"
	"fmt"
	"os/user"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/charles-muller/AspNetSessionState/internal/sqlcmd"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// Connection pool configuration constants
const (
	// DefaultMaxOpenConns limits concurrent connections so a busy web
	// tier cannot exhaust the session database.
	DefaultMaxOpenConns = 100

	// DefaultConnMaxIdleTime keeps warm connections around between
	// session requests to avoid reconnection overhead.
	DefaultConnMaxIdleTime = 30 * time.Minute
)

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetConnMaxIdleTime(DefaultConnMaxIdleTime)
}

// Open creates the connection pool for the configured target and auth
// method. The pool is shared; dedicated per-invocation connections come
// out of it through sqlcmd.DBOpener.
func Open(cfg *sessionstate.ConnectionConfig) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	connector, err := newConnector(cfg)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(connector)
	configurePool(db)
	return db, nil
}

// NewOpener creates the per-invocation connection opener for the
// configured target, carrying the attempted identity for connectivity
// error reporting.
func NewOpener(cfg *sessionstate.ConnectionConfig) (*sqlcmd.DBOpener, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return sqlcmd.NewDBOpener(db, AttemptedIdentity(cfg)), nil
}

func newConnector(cfg *sessionstate.ConnectionConfig) (*mssql.Connector, error) {
	connStr := BuildConnectionString(cfg)

	switch cfg.AuthMethod {
	case sessionstate.AuthMethodSQL, sessionstate.AuthMethodIntegrated:
		connector, err := mssql.NewConnector(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection config: %w", err)
		}
		return connector, nil

	case sessionstate.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(cfg)
		if err != nil {
			return nil, err
		}
		return newTokenConnector(connStr, provider)

	default:
		return nil, fmt.Errorf("auth method %v: %w", cfg.AuthMethod, sessionstate.ErrUnsupportedAuthMethod)
	}
}

// newTokenConnector builds a connector that authenticates each physical
// connection with a freshly acquired security token.
func newTokenConnector(connStr string, provider TokenProvider) (*mssql.Connector, error) {
	dsnConfig, err := msdsn.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	return mssql.NewSecurityTokenConnector(dsnConfig, func(ctx context.Context) (string, error) {
		token, _, err := provider.GetToken(ctx)
		return token, err
	})
}

// newAzureTokenProvider selects Service Principal auth when explicit
// credentials are configured, otherwise the default credential chain.
func newAzureTokenProvider(cfg *sessionstate.ConnectionConfig) (TokenProvider, error) {
	if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
		provider, err := NewAzureServicePrincipalProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
		return provider, nil
	}

	provider, err := NewAzureDefaultCredentialProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
	}
	return provider, nil
}

// AttemptedIdentity names the login principal connections authenticate
// as: the process identity under integrated authentication, the token
// principal for Entra ID, otherwise the configured user ID.
func AttemptedIdentity(cfg *sessionstate.ConnectionConfig) string {
	switch cfg.AuthMethod {
	case sessionstate.AuthMethodIntegrated:
		if u, err := user.Current(); err == nil && u.Username != "" {
			return u.Username
		}
		return "integrated"
	case sessionstate.AuthMethodAzureEntraID:
		if cfg.AzureClientID != "" {
			return cfg.AzureClientID
		}
		return "AzureDefaultCredential"
	default:
		return cfg.UserID
	}
}
