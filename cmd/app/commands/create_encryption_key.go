package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	cryptoService "github.com/allisson/phivault/internal/crypto/service"
)

// RunCreateEncryptionKey generates a master secret and salt and prints them as .env lines.
// With kmsKeyURI the secret is wrapped by the KMS key, and ENCRYPTION_KEY holds the
// ciphertext. The raw secret is zeroed before returning.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	secret := make([]byte, cryptoDomain.MinSecretSize)
	salt := make([]byte, cryptoDomain.MinSaltSize)
	defer cryptoDomain.Zero(secret)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate encryption salt: %w", err)
	}

	keyBytes := secret
	if kmsKeyURI != "" {
		wrapped, err := cryptoService.WrapSecret(ctx, kmsService, kmsKeyURI, secret)
		if err != nil {
			return err
		}
		keyBytes = wrapped
		logger.Info("encryption key wrapped with KMS")
	}

	encodedKey := base64.StdEncoding.EncodeToString(keyBytes)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	if format == "json" {
		out := map[string]string{
			"encryption_key":  encodedKey,
			"encryption_salt": encodedSalt,
		}
		if kmsKeyURI != "" {
			out["kms_key_uri"] = kmsKeyURI
		}
		return writeJSON(writer, out)
	}

	fmt.Fprintln(writer, "# Field encryption key material")
	fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(writer, "# Changing them makes every existing envelope undecryptable")
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", encodedKey)
	fmt.Fprintf(writer, "ENCRYPTION_SALT=\"%s\"\n", encodedSalt)
	if kmsKeyURI != "" {
		fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	return nil
}
