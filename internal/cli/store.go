package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/keyring"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/storage/postgres"
	"github.com/julianstephens/mindbloom/internal/storage/sqlite"
	"github.com/julianstephens/mindbloom/internal/storage/supabase"
)

var (
	_ storage.Provider = (*sqlite.Store)(nil)
	_ storage.Provider = (*postgres.Store)(nil)
	_ storage.Provider = (*supabase.Store)(nil)
	_ storage.Migrator = (*sqlite.Store)(nil)
	_ storage.Migrator = (*postgres.Store)(nil)
)

// KeyringTarget selects the connection string stored in the OS keyring.
const KeyringTarget = "keyring"

// StoreKind is the backend a --store value resolves to
type StoreKind string

const (
	KindSQLite   StoreKind = "sqlite"
	KindPostgres StoreKind = "postgres"
	KindSupabase StoreKind = "supabase"
)

// Classify decides which backend target names.
func Classify(target string) StoreKind {
	switch {
	case IsPostgres(target), target == KeyringTarget:
		return KindPostgres
	case strings.HasPrefix(target, "https://"), strings.HasPrefix(target, "http://"):
		return KindSupabase
	default:
		return KindSQLite
	}
}

// IsPostgres reports whether s looks like a PostgreSQL URI or key=value DSN.
func IsPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		strings.Contains(s, "host=")
}

// OpenStore builds the provider for target without connecting. apiKey is only used for
// Supabase targets and falls back to the keyring when empty.
func OpenStore(target, apiKey string) (storage.Provider, error) {
	if strings.TrimSpace(target) == "" {
		target = constants.DefaultConfigPath
	}

	switch Classify(target) {
	case KindPostgres:
		if target == KeyringTarget {
			connStr, err := keyring.GetConnectionString()
			if err != nil {
				if errors.Is(err, keyring.ErrNotFound) {
					return nil, fmt.Errorf("no connection string found in keyring. Use 'mindbloom keyring set connection-string' to store one")
				}
				return nil, err
			}
			// credentials inside the keyring are allowed
			return postgres.New(connStr), nil
		}
		if _, err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; " +
					"store the full string with 'mindbloom keyring set connection-string' and use --store=keyring, " +
					"or keep the password in ~/.pgpass or PGPASSWORD")
			}
			return nil, err
		}
		return postgres.New(target), nil

	case KindSupabase:
		if apiKey == "" {
			key, err := keyring.GetAPIKey()
			if err != nil {
				if errors.Is(err, keyring.ErrNotFound) {
					return nil, fmt.Errorf("no API key for %s; pass --api-key, set SUPABASE_ANON_KEY or run 'mindbloom keyring set api-key'", target)
				}
				return nil, err
			}
			apiKey = key
		}
		return supabase.NewStore(supabase.Config{URL: target, APIKey: apiKey}), nil

	default:
		path, err := ExpandPath(target)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
