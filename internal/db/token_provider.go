package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database
// authentication. This interface enables testability (mock providers)
// and keeps the connector independent of any one credential chain.
type TokenProvider interface {
	// GetToken acquires an OAuth token for database authentication.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging and
	// connectivity errors. Must NOT include secrets.
	String() string
}

// AzureSQLScope is the OAuth scope for Azure SQL Database. Azure AD
// issues tokens for this resource identifier for SQL access.
const AzureSQLScope = "https://database.windows.net/.default"
