package bastion

import (
	"fmt"
	"math/big"
	"testing"
)

func TestShamirPrimeIsSecp256k1Field(t *testing.T) {
	// p = 2^256 - 2^32 - 977
	want := new(big.Int).Lsh(big.NewInt(1), 256)
	want.Sub(want, new(big.Int).Lsh(big.NewInt(1), 32))
	want.Sub(want, big.NewInt(977))

	if shamirPrime.Cmp(want) != 0 {
		t.Fatalf("shamirPrime = %x, want %x (2^256 - 2^32 - 977)", shamirPrime, want)
	}
	if got := len(shamirPrime.Text(16)); got != 64 {
		t.Fatalf("shamirPrime has %d hex digits, want 64 (a 256-bit value)", got)
	}
}

// TestShamirRoundTripManyRandomSessionKeys guards against a field modulus
// that is even one byte short of the real 256-bit prime: ShamirSplit draws
// its session key uniformly from 32 random bytes, so a too-small modulus
// makes Lagrange interpolation recover session_key mod wrong_prime instead
// of session_key itself on almost every run (only a session key smaller
// than the wrong modulus would happen to still work). Running many
// iterations makes that failure show up with near certainty if regressed.
func TestShamirRoundTripManyRandomSessionKeys(t *testing.T) {
	for i := 0; i < 64; i++ {
		secret := fmt.Sprintf("secret-%d-0123456789abcdef0123456789abcdef", i)
		shards, err := ShamirSplit(secret, 5, 3)
		if err != nil {
			t.Fatalf("iteration %d: ShamirSplit: %v", i, err)
		}
		got, err := ShamirCombine(shards[:3])
		if err != nil {
			t.Fatalf("iteration %d: ShamirCombine: %v", i, err)
		}
		if got != secret {
			t.Fatalf("iteration %d: got %q, want %q", i, got, secret)
		}
	}
}

func TestShamirSplitCombineRoundTrip(t *testing.T) {
	secret := "super secret vault entropy 0123456789abcdef"
	shards, err := ShamirSplit(secret, 5, 3)
	if err != nil {
		t.Fatalf("ShamirSplit: %v", err)
	}
	if len(shards) != 5 {
		t.Fatalf("got %d shards, want 5", len(shards))
	}

	got, err := ShamirCombine(shards[:3])
	if err != nil {
		t.Fatalf("ShamirCombine: %v", err)
	}
	if got != secret {
		t.Fatalf("got %q, want %q", got, secret)
	}
}

func TestShamirCombineAnyThreeOfFive(t *testing.T) {
	secret := "another secret"
	shards, err := ShamirSplit(secret, 5, 3)
	if err != nil {
		t.Fatal(err)
	}

	subsets := [][]string{
		{shards[0], shards[1], shards[2]},
		{shards[1], shards[3], shards[4]},
		{shards[0], shards[2], shards[4]},
	}
	for _, subset := range subsets {
		got, err := ShamirCombine(subset)
		if err != nil {
			t.Fatalf("ShamirCombine(%v): %v", subset, err)
		}
		if got != secret {
			t.Fatalf("got %q, want %q", got, secret)
		}
	}
}

func TestShamirCombineTooFewShards(t *testing.T) {
	shards, err := ShamirSplit("secret", 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ShamirCombine(shards[:2])
	if !IsPolicyError(err) {
		t.Fatalf("expected PolicyError for too few shards, got %v", err)
	}
}

func TestShamirCombineLegacyFormatRejected(t *testing.T) {
	_, err := ShamirCombine([]string{"bst_s1_abcd_3_1_deadbeef"})
	if !IsPolicyError(err) {
		t.Fatalf("expected PolicyError for legacy shard format, got %v", err)
	}
}

func TestShamirSplitInvalidShape(t *testing.T) {
	cases := []struct{ n, k int }{
		{n: 2, k: 3},
		{n: 0, k: 1},
		{n: 300, k: 1},
	}
	for _, c := range cases {
		_, err := ShamirSplit("secret", c.n, c.k)
		if !IsValidationError(err) {
			t.Fatalf("ShamirSplit(n=%d,k=%d): expected ValidationError, got %v", c.n, c.k, err)
		}
	}
}

func TestShamirCombineMismatchedShareSets(t *testing.T) {
	a, err := ShamirSplit("secret-a", 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ShamirSplit("secret-b", 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ShamirCombine([]string{a[0], b[0]})
	if !IsPolicyError(err) {
		t.Fatalf("expected PolicyError mixing two different splits, got %v", err)
	}
}
