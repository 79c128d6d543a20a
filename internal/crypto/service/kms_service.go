package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	apperrors "github.com/allisson/phivault/internal/errors"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsService opens gocloud.dev secrets keepers. Supported schemes are gcpkms://, awskms://,
// azurekeyvault://, hashivault:// and base64key:// (local, for development and tests).
type kmsService struct{}

// NewKMSService creates a new KMSService.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a keeper for keyURI. The caller must Close it.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// UnwrapSecret decrypts a KMS-wrapped master secret. Any failure is ErrConfiguration.
func UnwrapSecret(
	ctx context.Context,
	kms KMSService,
	keyURI string,
	wrapped []byte,
) ([]byte, error) {
	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrConfiguration, err.Error())
	}
	defer func() {
		_ = keeper.Close()
	}()

	secret, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrConfiguration, "failed to unwrap ENCRYPTION_KEY: %v", err)
	}
	return secret, nil
}

// WrapSecret encrypts a freshly generated master secret with the KMS key.
func WrapSecret(ctx context.Context, kms KMSService, keyURI string, secret []byte) ([]byte, error) {
	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	wrapped, err := keeper.Encrypt(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap secret with KMS: %w", err)
	}
	return wrapped, nil
}
