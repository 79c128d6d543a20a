package app

import (
	"context"
	"log/slog"

	"github.com/allisson/phivault/internal/config"
	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	cryptoService "github.com/allisson/phivault/internal/crypto/service"
	apperrors "github.com/allisson/phivault/internal/errors"
)

// initCrypto derives the working key and builds the sealer. With local encryption
// disabled it installs the pass-through sealer, which production refuses.
func (c *Container) initCrypto(ctx context.Context) error {
	if !c.config.EnableLocalEncryption {
		if c.config.IsProduction() {
			return apperrors.Wrap(
				cryptoDomain.ErrConfiguration,
				"ENABLE_LOCAL_ENCRYPTION=false is not allowed in production",
			)
		}
		c.logger.Warn("local encryption disabled, PHI fields are stored in plaintext")
		c.sealer = cryptoService.NewPassthroughSealer()
		return nil
	}

	alg, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return apperrors.Wrap(cryptoDomain.ErrConfiguration, err.Error())
	}

	material, err := loadKeyMaterial(ctx, c.config, cryptoService.NewKMSService())
	if err != nil {
		return err
	}
	defer material.Close()

	keyManager, err := cryptoService.NewKeyManager(c.config.EncryptionKDFIterations)
	if err != nil {
		return err
	}
	workingKey, err := keyManager.DeriveWorkingKey(material)
	if err != nil {
		return err
	}
	c.workingKey = workingKey

	sealer, err := cryptoService.NewAEADSealer(cryptoService.NewAEADManager(), workingKey, alg)
	if err != nil {
		return err
	}
	c.sealer = sealer

	c.logger.Info("field encryption ready",
		slog.String("algorithm", string(alg)),
		slog.Bool("kms", c.config.KMSKeyURI != ""),
	)
	return nil
}

// loadKeyMaterial decodes ENCRYPTION_KEY and ENCRYPTION_SALT. When KMS_KEY_URI is set,
// ENCRYPTION_KEY holds the KMS ciphertext of the master secret.
func loadKeyMaterial(
	ctx context.Context,
	cfg *config.Config,
	kms cryptoService.KMSService,
) (*cryptoDomain.KeyMaterial, error) {
	if cfg.KMSKeyURI == "" {
		return cryptoDomain.LoadKeyMaterial(cfg.EncryptionKey, cfg.EncryptionSalt)
	}

	wrapped, err := cryptoDomain.DecodeKeyValue("ENCRYPTION_KEY", cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	secret, err := cryptoService.UnwrapSecret(ctx, kms, cfg.KMSKeyURI, wrapped)
	if err != nil {
		return nil, err
	}
	salt, err := cryptoDomain.DecodeKeyValue("ENCRYPTION_SALT", cfg.EncryptionSalt)
	if err != nil {
		cryptoDomain.Zero(secret)
		return nil, err
	}
	return cryptoDomain.NewKeyMaterial(secret, salt)
}
