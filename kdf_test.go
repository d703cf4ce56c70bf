package bastion

import "testing"

func TestDeriveKeyArgon2idDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	params := DefaultArgon2Params()
	a := deriveKeyArgon2id("hunter2", salt, params)
	b := deriveKeyArgon2id("hunter2", salt, params)
	if string(a) != string(b) {
		t.Fatal("Argon2id derivation is not deterministic for identical inputs")
	}
	if len(a) != int(params.KeyLen) {
		t.Fatalf("got key length %d, want %d", len(a), params.KeyLen)
	}

	c := deriveKeyArgon2id("hunter3", salt, params)
	if string(a) == string(c) {
		t.Fatal("different passwords produced the same key")
	}
}

func TestDeriveKeyPBKDF2DomainSeparation(t *testing.T) {
	salt := []byte("0123456789abcdef")
	params := PBKDF2Params{Iterations: 1000, DomainSeparated: true, KeyLen: 32}
	withPrefix := deriveKeyPBKDF2("pw", salt, params)

	params.DomainSeparated = false
	withoutPrefix := deriveKeyPBKDF2("pw", salt, params)

	if string(withPrefix) == string(withoutPrefix) {
		t.Fatal("domain-separated and plain salts produced the same key")
	}
}
