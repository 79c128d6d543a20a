package commands

import (
	"context"
	"fmt"
	"io"

	cryptoUseCase "github.com/allisson/phivault/internal/crypto/usecase"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// RunEncryptField seals value under fc with the configured key and prints the envelope.
func RunEncryptField(
	ctx context.Context,
	fieldCipher cryptoUseCase.FieldCipher,
	writer io.Writer,
	value string,
	fc phiDomain.FieldContext,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	envelope, err := fieldCipher.EncryptField(ctx, value, fc)
	if err != nil {
		return fmt.Errorf("failed to encrypt field: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]string{"field_name": fc.FieldName, "envelope": envelope})
	}
	_, err = fmt.Fprintln(writer, envelope)
	return err
}

// RunDecryptField opens envelope under fc and prints the value. It reads the key directly
// and never touches the decryption cache.
func RunDecryptField(
	ctx context.Context,
	fieldCipher cryptoUseCase.FieldCipher,
	writer io.Writer,
	envelope string,
	fc phiDomain.FieldContext,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	value, err := fieldCipher.DecryptField(ctx, envelope, fc)
	if err != nil {
		return fmt.Errorf("failed to decrypt field: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]string{"field_name": fc.FieldName, "value": value})
	}
	_, err = fmt.Fprintln(writer, value)
	return err
}
