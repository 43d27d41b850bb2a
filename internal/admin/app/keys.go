package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/jwtx"
)

// InitSigningKeys creates a KeyManager with the configured algorithm and
// storage mode.
//
// Storage modes:
//   - "ephemeral": Keys are generated on startup and stored only in memory.
//     All existing tokens become invalid when the service restarts.
//   - "persistent": Keys are stored in the database with encryption.
//     Tokens survive service restarts. Supports key rotation with grace period.
//
// Supported algorithms: RS256, ES256, EdDSA
func InitSigningKeys(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, error) {
	// Configure master key path if provided (for persistent mode)
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	}

	var keyManager *jwtx.KeyManager
	var err error

	switch cfg.KeyStorageMode {
	case "persistent":
		// Bridge the business store to the jwtx key store interface
		keyStore := store.NewKeyStoreAdapter(db)

		logger.Info("initializing persistent key manager",
			"algorithm", cfg.Algorithm,
			"num_keys", cfg.NumKeys,
			"grace_period", cfg.KeyGracePeriod,
		)

		keyManager, err = jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
			Store:       keyStore,
			Algorithm:   cfg.Algorithm,
			Issuer:      cfg.Issuer,
			Audience:    nil, // no audience validation
			RSABits:     cfg.RSABits,
			NumKeys:     cfg.NumKeys,
			GracePeriod: cfg.KeyGracePeriod,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize persistent key manager: %w", err)
		}

		logger.Info("persistent signing keys loaded",
			"algorithm", keyManager.Algorithm(),
			"num_keys", keyManager.NumSigners(),
			"issuer", cfg.Issuer,
			"grace_period", cfg.KeyGracePeriod,
		)

	case "ephemeral":
		fallthrough
	default:
		logger.Info("initializing ephemeral key manager",
			"algorithm", cfg.Algorithm,
			"num_keys", cfg.NumKeys,
		)

		keyManager, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Algorithm: cfg.Algorithm,
			Issuer:    cfg.Issuer,
			Audience:  nil, // no audience validation
			RSABits:   cfg.RSABits,
			NumKeys:   cfg.NumKeys,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}

		logger.Info("generated ephemeral signing keys",
			"algorithm", keyManager.Algorithm(),
			"num_keys", keyManager.NumSigners(),
			"issuer", cfg.Issuer,
		)

		logger.Warn("all existing tokens are now invalid due to key generation on startup")
	}

	return keyManager, nil
}
