package bastion

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// aesGCMNonceSize and aesGCMKeySize are fixed by the spec for every AEAD
// container in this module (envelope, file locker, shamir payload).
const (
	aesGCMNonceSize = 12
	aesGCMKeySize   = 32
)

// newAESGCM builds an AES-256-GCM AEAD from a 32-byte key.
func newAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != aesGCMKeySize {
		return nil, NewValidationError("key", len(key), "AES-256-GCM requires a 32-byte key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// randomBytes returns n cryptographically random bytes.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// aeadSeal encrypts plaintext with a fresh random nonce under key, no AAD,
// and returns the nonce and ciphertext∥tag as two separate slices.
func aeadSeal(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	aead, err := newAESGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce, err = randomBytes(aead.NonceSize())
	if err != nil {
		return nil, nil, err
	}
	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// aeadOpen authenticates and decrypts ciphertext under key and nonce, no AAD.
func aeadOpen(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAESGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, NewValidationError("nonce", len(nonce), "invalid nonce size")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}
