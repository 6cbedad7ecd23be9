// Package session persists the signed-in user's credential and profile
// and wraps the login and signup calls.
package session

import (
	"context"

	"github.com/rotisserie/eris"
)

// Fixed keys of the persisted client state.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// Store is a string key/value table.
type Store interface {
	// Get returns the value of key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver ("sqlite" or "postgres") and migrates it.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = "logiops.db"
		}
		st, err = NewSQLite(dsn)
	case "postgres":
		st, err = NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("session: unknown store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
