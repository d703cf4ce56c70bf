package bastion

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// deriveKeyArgon2id derives a 32-byte key using the current (V3.5) KDF:
// Argon2id with the spec-fixed cost parameters and the raw 16-byte vault
// salt, no domain separation (the version header already disambiguates).
func deriveKeyArgon2id(password string, salt []byte, params Argon2Params) []byte {
	return argon2.IDKey([]byte(password), salt, params.TimeCost, params.MemoryCost, params.Parallelism, params.KeyLen)
}

// deriveKeyPBKDF2 derives a key using legacy PBKDF2-HMAC-SHA256. When
// params.DomainSeparated is set, the salt is prefixed with
// "BASTION_VAULT_V1::" before derivation (spec §4.3).
func deriveKeyPBKDF2(password string, salt []byte, params PBKDF2Params) []byte {
	finalSalt := salt
	if params.DomainSeparated {
		finalSalt = append([]byte(domainSeparationPrefix), salt...)
	}
	return pbkdf2.Key([]byte(password), finalSalt, params.Iterations, params.KeyLen, sha256.New)
}
