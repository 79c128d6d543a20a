// Package service issues and verifies the bearer token that guards the field API.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/phivault/internal/errors"
)

// APITokenService generates API tokens and checks presented tokens against the
// configured Argon2id hash.
type APITokenService interface {
	// Generate returns a new random token and its Argon2id hash for API_TOKEN_HASH.
	Generate() (plainToken string, tokenHash string, err error)

	// Verify reports whether plainToken matches the configured hash. It is always false
	// when no hash is configured.
	Verify(plainToken string) bool

	// Enabled reports whether a hash is configured.
	Enabled() bool
}

type apiTokenService struct {
	hasher    *pwdhash.PasswordHasher
	tokenHash string
	// verified memoizes SHA-256 digests of tokens that already passed Argon2id, so the
	// expensive check runs once per token instead of once per request.
	verified sync.Map
}

// NewAPITokenService creates an APITokenService for tokenHash, which may be empty.
func NewAPITokenService(tokenHash string) (APITokenService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create token hasher")
	}
	return &apiTokenService{hasher: hasher, tokenHash: tokenHash}, nil
}

func (s *apiTokenService) Generate() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}
	plainToken := base64.RawURLEncoding.EncodeToString(raw)

	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash token")
	}
	return plainToken, tokenHash, nil
}

func (s *apiTokenService) Verify(plainToken string) bool {
	if s.tokenHash == "" || plainToken == "" {
		return false
	}

	sum := sha256.Sum256([]byte(plainToken))
	digest := hex.EncodeToString(sum[:])
	if _, ok := s.verified.Load(digest); ok {
		return true
	}

	ok, err := s.hasher.Verify([]byte(plainToken), s.tokenHash)
	if err != nil || !ok {
		return false
	}
	s.verified.Store(digest, struct{}{})
	return true
}

func (s *apiTokenService) Enabled() bool {
	return s.tokenHash != ""
}
