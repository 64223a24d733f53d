// Package keyring keeps secrets such as a PostgreSQL connection string with
// credentials in the OS keyring instead of the config file.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streakline/internal/constants"
)

// DatabaseKey holds the connection string used when no database is configured.
const DatabaseKey = "database"

var (
	ErrNotFound           = errors.New("secret not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// account namespaces a key under the application's keyring user.
func account(key string) string {
	return constants.DefaultKeyringUser + ":" + key
}

func Get(key string) (string, error) {
	v, err := gokeyring.Get(constants.AppName, account(key))
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(key, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store an empty %s secret", key)
	}
	if err := gokeyring.Set(constants.AppName, account(key), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", key, err)
	}
	return nil
}

func Delete(key string) error {
	if err := gokeyring.Delete(constants.AppName, account(key)); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}

// Status describes the keyring as seen by `streakline keyring status`.
type Status struct {
	Available bool
	Stored    bool
}

// Check probes the keyring and reports whether key holds a value.
func Check(key string) Status {
	_, err := Get(key)
	switch {
	case err == nil:
		return Status{Available: true, Stored: true}
	case errors.Is(err, ErrNotFound):
		return Status{Available: true}
	default:
		return Status{}
	}
}
