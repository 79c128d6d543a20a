package domain

// Algorithm represents the AEAD algorithm used to seal a field value.
//
// Both algorithms use a 256-bit key, a 12-byte nonce and a 16-byte authentication tag,
// so envelopes produced by either share the same wire layout.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. It is the default and the only algorithm
	// accepted for legacy (unversioned) envelopes.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, preferred on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm converts a configuration value into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// Sizes shared by every supported algorithm.
const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16

	// MinSealedSize is the length of a sealed empty plaintext: nonce plus tag.
	MinSealedSize = NonceSize + TagSize

	MinSecretSize = 32
	MinSaltSize   = 16

	// MinKDFIterations is the lowest accepted PBKDF2 iteration count.
	MinKDFIterations = 100000
)
