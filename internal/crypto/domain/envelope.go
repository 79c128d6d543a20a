package domain

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/allisson/phivault/internal/errors"
)

// EnvelopeVersion identifies the encoding and algorithm of a stored envelope.
type EnvelopeVersion int

const (
	// EnvelopeVersionLegacy marks unversioned AES-256-GCM envelopes, either single
	// base64 or Fernet-style double base64. Read only.
	EnvelopeVersionLegacy EnvelopeVersion = 0
	// EnvelopeVersionAESGCM marks "1:" prefixed AES-256-GCM envelopes.
	EnvelopeVersionAESGCM EnvelopeVersion = 1
	// EnvelopeVersionChaCha20 marks "2:" prefixed ChaCha20-Poly1305 envelopes.
	EnvelopeVersionChaCha20 EnvelopeVersion = 2
)

const versionSeparator = ":"

// EncryptedEnvelope is the unit of at-rest storage: nonce || ciphertext || tag plus the
// version that says how it was sealed.
//
// The canonical text form is "<version>:" followed by the standard base64 encoding of
// Sealed. Envelopes are immutable; re-encryption produces a new one.
type EncryptedEnvelope struct {
	Version EnvelopeVersion
	Sealed  []byte
}

// NewEnvelope builds a canonical envelope for data sealed with alg.
func NewEnvelope(alg Algorithm, nonce, ciphertext []byte) (*EncryptedEnvelope, error) {
	version, err := VersionFor(alg)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize || len(ciphertext) < TagSize {
		return nil, errors.Wrap(ErrEncryption, "malformed sealed data")
	}

	sealed := make([]byte, 0, len(nonce)+len(ciphertext))
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ciphertext...)
	return &EncryptedEnvelope{Version: version, Sealed: sealed}, nil
}

// VersionFor returns the envelope version written for alg.
func VersionFor(alg Algorithm) (EnvelopeVersion, error) {
	switch alg {
	case AESGCM:
		return EnvelopeVersionAESGCM, nil
	case ChaCha20:
		return EnvelopeVersionChaCha20, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

// Algorithm returns the AEAD the envelope was sealed with.
func (e *EncryptedEnvelope) Algorithm() (Algorithm, error) {
	switch e.Version {
	case EnvelopeVersionLegacy, EnvelopeVersionAESGCM:
		return AESGCM, nil
	case EnvelopeVersionChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// Nonce returns the leading nonce bytes.
func (e *EncryptedEnvelope) Nonce() []byte {
	return e.Sealed[:NonceSize]
}

// Ciphertext returns the ciphertext with the trailing authentication tag.
func (e *EncryptedEnvelope) Ciphertext() []byte {
	return e.Sealed[NonceSize:]
}

// String returns the canonical text form. Legacy envelopes are re-rendered in the
// canonical AES-GCM form; new data is never written as legacy.
func (e *EncryptedEnvelope) String() string {
	version := e.Version
	if version == EnvelopeVersionLegacy {
		version = EnvelopeVersionAESGCM
	}
	return strconv.Itoa(int(version)) + versionSeparator + base64.StdEncoding.EncodeToString(e.Sealed)
}

// ParseEnvelope decodes the canonical form and both legacy forms.
//
// Any failure is ErrDecryption: bad base64, unknown version, or a body shorter than
// nonce plus tag. Versioned bodies must be canonical padded standard base64; legacy
// forms accept any alphabet.
func ParseEnvelope(s string) (*EncryptedEnvelope, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrDecryption, "empty envelope")
	}

	// ':' is outside every base64 alphabet, so its presence means a versioned envelope.
	if prefix, body, ok := strings.Cut(s, versionSeparator); ok {
		n, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, errors.Wrap(ErrDecryption, "malformed envelope version")
		}
		version := EnvelopeVersion(n)
		if version != EnvelopeVersionAESGCM && version != EnvelopeVersionChaCha20 {
			return nil, errors.Wrapf(ErrDecryption, "unknown envelope version %d", n)
		}
		// Strict rejects non-zero padding bits, so every text bit is significant.
		sealed, err := base64.StdEncoding.Strict().DecodeString(body)
		if err != nil {
			return nil, errors.Wrap(ErrDecryption, "malformed envelope encoding")
		}
		if len(sealed) < MinSealedSize {
			return nil, errors.Wrap(ErrDecryption, "envelope too short")
		}
		return &EncryptedEnvelope{Version: version, Sealed: sealed}, nil
	}

	return parseLegacy(s)
}

// parseLegacy accepts base64(sealed) and base64(base64(sealed)).
func parseLegacy(s string) (*EncryptedEnvelope, error) {
	outer, err := DecodeBase64(s)
	if err != nil {
		return nil, errors.Wrap(ErrDecryption, "malformed envelope encoding")
	}

	sealed := outer
	if isBase64Text(outer) {
		if inner, err := DecodeBase64(string(outer)); err == nil && len(inner) >= MinSealedSize {
			sealed = inner
		}
	}

	if len(sealed) < MinSealedSize {
		return nil, errors.Wrap(ErrDecryption, "envelope too short")
	}
	return &EncryptedEnvelope{Version: EnvelopeVersionLegacy, Sealed: sealed}, nil
}

func isBase64Text(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '-', c == '_', c == '=':
		default:
			return false
		}
	}
	return true
}

// LegacyString renders sealed data in the Fernet-style double encoding. It exists for
// migration tooling and tests; FieldCipher never writes it.
func LegacyString(sealed []byte) string {
	inner := base64.URLEncoding.EncodeToString(sealed)
	return base64.URLEncoding.EncodeToString([]byte(inner))
}
