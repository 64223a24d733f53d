package storage

import (
	"net/url"
	"strings"
)

// IsPostgresDSN reports whether the configured database is a PostgreSQL
// connection string rather than a SQLite path.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// HasEmbeddedCredentials checks whether a PostgreSQL URL carries a password.
func HasEmbeddedCredentials(dsn string) bool {
	if !IsPostgresDSN(dsn) {
		return false
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return false
	}
	_, set := u.User.Password()
	return set
}
