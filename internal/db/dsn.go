package db

import (
	"fmt"
	"net/url"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// appName identifies this process in sys.dm_exec_sessions.
const appName = "sessdb"

// BuildConnectionString renders the connection target as a
// sqlserver:// URL understood by the go-mssqldb driver.
func BuildConnectionString(cfg *sessionstate.ConnectionConfig) string {
	host := cfg.Server
	if cfg.Port > 0 {
		host = fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	}

	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("app name", appName)

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: query.Encode(),
	}

	// SQL logins embed credentials; integrated and Entra ID
	// authentication resolve the identity outside the URL.
	if cfg.AuthMethod == sessionstate.AuthMethodSQL {
		u.User = url.UserPassword(cfg.UserID, cfg.Password)
	}

	return u.String()
}
