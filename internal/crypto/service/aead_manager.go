package service

import (
	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

var cipherConstructors = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
		c, err := NewAESGCM(key)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
		c, err := NewChaCha20Poly1305(key)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// AEADManagerService builds the AEAD for each envelope algorithm.
type AEADManagerService struct{}

func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher keys the AEAD for alg. Keys shorter or longer than KeySize are rejected
// before the algorithm is looked up.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	newCipher, ok := cipherConstructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return newCipher(key)
}
