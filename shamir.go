package bastion

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// shamirPrime is the secp256k1 field prime: 2^256 - 2^32 - 977. Field
// arithmetic for the (k,n) split runs over GF(shamirPrime). There is no
// third-party big-integer library in the example pack suited to plain
// modular arithmetic (the one candidate, an elliptic-curve binding, does
// point operations, not scalar field math) so this uses the standard
// library's math/big, per DESIGN.md.
var shamirPrime, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)

const shamirShardPrefix = "bst_p256"

// ShamirSplit implements the envelope-then-split design of spec §4.7: the
// secret is AEAD-sealed under a fresh 256-bit session key, and only that
// session key is split across n shards, any k of which recover it.
func ShamirSplit(secret string, n, k int) ([]string, error) {
	if err := ValidateShamirShape(n, k); err != nil {
		return nil, err
	}

	sessionKey, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	nonce, ciphertext, err := aeadSeal(sessionKey, []byte(secret))
	if err != nil {
		return nil, err
	}
	payload := append(append([]byte{}, nonce...), ciphertext...)
	payloadHex := hex.EncodeToString(payload)

	s := new(big.Int).SetBytes(sessionKey)
	coeffs := make([]*big.Int, k)
	coeffs[0] = s
	for i := 1; i < k; i++ {
		c, err := randomFieldElement()
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}

	shareIDBytes, err := randomBytes(4)
	if err != nil {
		return nil, err
	}
	shareID := hex.EncodeToString(shareIDBytes)

	shards := make([]string, 0, n)
	for x := 1; x <= n; x++ {
		y := evalPolynomial(coeffs, x)
		shards = append(shards, fmt.Sprintf("%s_%s_%d_%d_%s_%s", shamirShardPrefix, shareID, k, x, y.Text(16), payloadHex))
	}
	return shards, nil
}

// evalPolynomial computes f(x) mod shamirPrime via Horner's method.
func evalPolynomial(coeffs []*big.Int, x int) *big.Int {
	result := new(big.Int)
	xb := big.NewInt(int64(x))
	for i := len(coeffs) - 1; i >= 0; i-- {
		result.Mul(result, xb)
		result.Add(result, coeffs[i])
		result.Mod(result, shamirPrime)
	}
	return result
}

// randomFieldElement returns a uniform random value in [0, shamirPrime).
func randomFieldElement() (*big.Int, error) {
	b, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(b)
	return v.Mod(v, shamirPrime), nil
}

type shamirShard struct {
	shareID string
	k       int
	x       int
	y       *big.Int
	payload string
}

func parseShamirShard(s string) (shamirShard, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "_")

	if len(parts) >= 2 && parts[0] == "bst" && parts[1] == "s1" {
		return shamirShard{}, NewPolicyError(ErrLegacyShardFormat.Error())
	}
	if len(parts) != 7 || parts[0] != "bst" || parts[1] != "p256" {
		return shamirShard{}, NewValidationError("shard", s, "invalid shard format")
	}

	k, err := strconv.Atoi(parts[3])
	if err != nil {
		return shamirShard{}, NewValidationError("shard.k", parts[3], "not a valid integer")
	}
	x, err := strconv.Atoi(parts[4])
	if err != nil {
		return shamirShard{}, NewValidationError("shard.x", parts[4], "not a valid integer")
	}
	y, ok := new(big.Int).SetString(parts[5], 16)
	if !ok {
		return shamirShard{}, NewValidationError("shard.y", parts[5], "not valid hex")
	}

	return shamirShard{shareID: parts[2], k: k, x: x, y: y, payload: parts[6]}, nil
}

// ShamirCombine implements spec §4.7 Combine: parses and validates shards,
// Lagrange-interpolates the session key at x=0 over GF(shamirPrime), and
// AEAD-opens the shared payload.
func ShamirCombine(shards []string) (string, error) {
	if len(shards) == 0 {
		return "", NewValidationError("shards", 0, "no shards provided")
	}

	parsed := make([]shamirShard, 0, len(shards))
	for _, s := range shards {
		p, err := parseShamirShard(s)
		if err != nil {
			return "", err
		}
		parsed = append(parsed, p)
	}

	first := parsed[0]
	if lo.SomeBy(parsed, func(p shamirShard) bool { return p.shareID != first.shareID }) {
		return "", NewPolicyError("shards belong to different secrets")
	}
	if lo.SomeBy(parsed, func(p shamirShard) bool { return p.payload != first.payload }) {
		return "", NewPolicyError("shards carry different payloads")
	}
	if len(parsed) < first.k {
		return "", NewPolicyError(fmt.Sprintf("need %d shards, got %d", first.k, len(parsed)))
	}

	kShares := parsed[:first.k]
	secret := new(big.Int)
	for j := range kShares {
		xj := big.NewInt(int64(kShares[j].x))
		num := big.NewInt(1)
		den := big.NewInt(1)
		for m := range kShares {
			if m == j {
				continue
			}
			xm := big.NewInt(int64(kShares[m].x))

			negXm := new(big.Int).Neg(xm)
			num.Mul(num, negXm)
			num.Mod(num, shamirPrime)

			diff := new(big.Int).Sub(xj, xm)
			den.Mul(den, diff)
			den.Mod(den, shamirPrime)
		}
		denInv := new(big.Int).ModInverse(den, shamirPrime)
		if denInv == nil {
			return "", NewPolicyError("degenerate shard set: duplicate x coordinates")
		}
		term := new(big.Int).Mul(kShares[j].y, num)
		term.Mul(term, denInv)
		term.Mod(term, shamirPrime)

		secret.Add(secret, term)
		secret.Mod(secret, shamirPrime)
	}

	sessionKey := make([]byte, 32)
	secret.FillBytes(sessionKey)

	payloadBytes, err := hex.DecodeString(first.payload)
	if err != nil || len(payloadBytes) < ivSize {
		return "", NewCorruptionError("shamir payload", "malformed payload hex")
	}
	nonce := payloadBytes[:ivSize]
	ciphertext := payloadBytes[ivSize:]

	plaintext, err := aeadOpen(sessionKey, nonce, ciphertext)
	if err != nil {
		return "", NewAuthenticationError("shamir payload", ErrAuthFailed)
	}
	return string(plaintext), nil
}
