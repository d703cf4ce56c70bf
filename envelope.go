package bastion

import "encoding/base64"

// Envelope header bytes (spec §4.4). A blob with the "BSTN" prefix commits
// to one of these versions and must never fall through to the headerless
// legacy ladder.
const (
	envelopeMagic        = "BSTN"
	headerV3_5      byte = 0x04 // current: Argon2id, framed payload
	headerV3        byte = 0x03 // legacy: Argon2id, unframed payload
	headerV2        byte = 0x02 // legacy: PBKDF2-210k domain-separated, unframed

	saltSize = 16
	ivSize   = aesGCMNonceSize

	// minEnvelopeSize is salt(16) + iv(12): anything shorter cannot even
	// hold key-derivation material and is rejected outright as corrupt.
	// A buffer between this and the full 44-byte (with tag) minimum still
	// reaches AEAD, which will fail the tag check — reported as the same
	// undifferentiated AuthenticationError as a wrong password.
	minEnvelopeSize = saltSize + ivSize
)

// sealEnvelope always produces the current V3.5 envelope: fresh salt and
// IV, Argon2id key derivation, AES-256-GCM encryption, header-prefixed,
// base64-encoded. plaintext must already be canonicalized and framed.
func sealEnvelope(plaintext []byte, password string) (string, error) {
	salt, err := randomBytes(saltSize)
	if err != nil {
		return "", err
	}
	key := deriveKeyArgon2id(password, salt, DefaultArgon2Params())

	nonce, ciphertext, err := aeadSeal(key, plaintext)
	if err != nil {
		return "", err
	}

	blob := make([]byte, 0, 5+saltSize+ivSize+len(ciphertext))
	blob = append(blob, envelopeMagic...)
	blob = append(blob, headerV3_5)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// decryptAttempt is one rung of the legacy fallback ladder: try to open buf
// with these parameters, returning the deframed-or-raw plaintext on success.
type decryptAttempt struct {
	legacy bool
	framed bool
	derive func() []byte
	nonce  []byte
	ct     []byte
}

// openEnvelope runs the full §4.4 decrypt path. It returns the decrypted,
// already-deframed plaintext and whether the envelope was anything other
// than current V3.5. A failure on every rung collapses to a single
// undifferentiated AuthenticationError — the caller must not be able to
// tell "wrong password" from "corrupt" from this return value alone.
func openEnvelope(blobB64, password string) ([]byte, bool, error) {
	buf, err := base64.StdEncoding.DecodeString(blobB64)
	if err != nil {
		return nil, false, NewCorruptionError("envelope", "not valid base64")
	}
	if err := ValidateBuffer(buf, "envelope", minEnvelopeSize); err != nil {
		return nil, false, NewCorruptionError("envelope", "buffer shorter than minimum valid length")
	}

	var attempts []decryptAttempt

	if len(buf) > 5 && buf[0] == 'B' && buf[1] == 'S' && buf[2] == 'T' && buf[3] == 'N' {
		v := buf[4]
		if err := ValidateBuffer(buf, "envelope", 5+saltSize+ivSize); err != nil {
			return nil, false, NewCorruptionError("envelope", "buffer shorter than header requires")
		}
		salt := buf[5 : 5+saltSize]
		nonce := buf[5+saltSize : 5+saltSize+ivSize]
		ct := buf[5+saltSize+ivSize:]

		switch v {
		case headerV3_5:
			attempts = append(attempts, decryptAttempt{
				legacy: false,
				framed: true,
				derive: func() []byte { return deriveKeyArgon2id(password, salt, DefaultArgon2Params()) },
				nonce:  nonce, ct: ct,
			})
		case headerV3:
			attempts = append(attempts, decryptAttempt{
				legacy: true,
				derive: func() []byte { return deriveKeyArgon2id(password, salt, DefaultArgon2Params()) },
				nonce:  nonce, ct: ct,
			})
		case headerV2:
			attempts = append(attempts, decryptAttempt{
				legacy: true,
				derive: func() []byte {
					return deriveKeyPBKDF2(password, salt, PBKDF2Params{Iterations: PBKDF2IterationsV2, DomainSeparated: true, KeyLen: aesGCMKeySize})
				},
				nonce: nonce, ct: ct,
			})
		default:
			return nil, false, NewCorruptionError("envelope", "unrecognized BSTN header version")
		}
		// A "BSTN"-prefixed blob commits to its version; it must never
		// fall through to the headerless ladder below.
	} else {
		salt := buf[0:saltSize]
		nonce := buf[saltSize : saltSize+ivSize]
		ct := buf[saltSize+ivSize:]

		attempts = append(attempts,
			decryptAttempt{
				legacy: true,
				derive: func() []byte {
					return deriveKeyPBKDF2(password, salt, PBKDF2Params{Iterations: PBKDF2IterationsV2, DomainSeparated: true, KeyLen: aesGCMKeySize})
				},
				nonce: nonce, ct: ct,
			},
			decryptAttempt{
				legacy: true,
				derive: func() []byte {
					return deriveKeyPBKDF2(password, salt, PBKDF2Params{Iterations: PBKDF2IterationsV0, DomainSeparated: false, KeyLen: aesGCMKeySize})
				},
				nonce: nonce, ct: ct,
			},
		)
	}

	for _, a := range attempts {
		key := a.derive()
		plaintext, err := aeadOpen(key, a.nonce, a.ct)
		if err != nil {
			continue
		}
		if a.framed {
			plaintext = deframe(plaintext)
		}
		return plaintext, a.legacy, nil
	}

	return nil, false, NewAuthenticationError("envelope", ErrAuthFailed)
}
