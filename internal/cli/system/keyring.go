package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/keyring"
	"github.com/julianstephens/mindbloom/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check whether the OS keyring is usable." default:"1"`
}

// secretNames maps the user-facing names onto keyring slots.
var secretNames = map[string]keyring.Secret{
	"connection-string": keyring.ConnectionString,
	"api-key":           keyring.APIKey,
}

func lookupSecret(name string) (keyring.Secret, error) {
	s, ok := secretNames[name]
	if !ok {
		return "", fmt.Errorf("unknown secret %q (expected connection-string or api-key)", name)
	}
	return s, nil
}

type KeyringSetCmd struct {
	Name  string `arg:"" enum:"connection-string,api-key" help:"Which secret to store: connection-string or api-key."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := lookupSecret(cmd.Name)
	if err != nil {
		return err
	}

	if secret == keyring.ConnectionString {
		if !cli.IsPostgres(cmd.Value) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return err
	}

	ctx.Printf("✓ %s stored in OS keyring\n", cmd.Name)
	if secret == keyring.ConnectionString {
		ctx.Println("  Use it with --store=keyring")
	}
	return nil
}

type KeyringGetCmd struct {
	Name string `arg:"" enum:"connection-string,api-key" help:"Which secret to show."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := lookupSecret(cmd.Name)
	if err != nil {
		return err
	}
	value, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'mindbloom keyring set %s' to store one", cmd.Name, cmd.Name)
		}
		return err
	}

	if secret == keyring.ConnectionString {
		ctx.Println(maskPassword(value))
	} else {
		ctx.Println(maskKey(value))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Name string `arg:"" enum:"connection-string,api-key" help:"Which secret to delete."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := lookupSecret(cmd.Name)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Name)
		}
		return err
	}
	ctx.Printf("✓ %s deleted from OS keyring\n", cmd.Name)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")
	for _, name := range []string{"connection-string", "api-key"} {
		if _, err := keyring.Get(secretNames[name]); err == nil {
			ctx.Printf("✓ %s is stored\n", name)
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("ℹ No %s stored\n", name)
		}
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}

	return connStr
}

// maskKey keeps the first and last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
