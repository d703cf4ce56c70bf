package bastion

import (
	"crypto/sha512"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	transmuteIterations = 210_000
	transmuteSaltPrefix = "BASTION_GENERATOR_V2::"

	poolLower   = "abcdefghijklmnopqrstuvwxyz"
	poolUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	poolDigits  = "0123456789"
	poolSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Transmute deterministically derives a per-site password from the vault
// entropy and per-site parameters (spec §4.5). Identical inputs always
// yield identical output, across implementations.
func Transmute(entropy, service, username string, version, length int, useSymbols bool) string {
	if err := ValidateCredentialLength(length); err != nil {
		length = 16
	}
	salt := fmt.Sprintf("%s%s::%s::v%d", transmuteSaltPrefix, strings.ToLower(service), strings.ToLower(username), version)

	pool := poolLower + poolUpper + poolDigits
	if useSymbols {
		pool += poolSymbols
	}

	dkLen := length * 32 // surplus for rejection sampling
	flux := pbkdf2.Key([]byte(entropy), []byte(salt), transmuteIterations, dkLen, sha512.New)

	limit := 256 - (256 % len(pool))
	out := make([]byte, 0, length)
	for _, b := range flux {
		if len(out) == length {
			break
		}
		if int(b) < limit {
			out = append(out, pool[int(b)%len(pool)])
		}
	}
	return string(out)
}

// EffectivePassword returns a Credential's effective password: its
// CustomPassword if non-empty, else the transmuted derivation (spec §3
// invariant).
func EffectivePassword(entropy string, c Credential) string {
	if c.CustomPassword != "" {
		return c.CustomPassword
	}
	return Transmute(entropy, c.Name, c.Username, c.Version, c.Length, c.UseSymbols)
}
