package bastion

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptFileBytesRoundTrip(t *testing.T) {
	data := []byte("top secret recovery material")
	container, fk, err := EncryptFileBytes(data, "recovery key", 12345)
	if err != nil {
		t.Fatalf("EncryptFileBytes: %v", err)
	}
	if fk.Label != "recovery key" || fk.Size != int64(len(data)) {
		t.Fatalf("unexpected FileKey: %+v", fk)
	}

	plaintext, matched, err := DecryptFileBytes(container, fk.Key, []FileKey{fk})
	if err != nil {
		t.Fatalf("DecryptFileBytes: %v", err)
	}
	if !bytes.Equal(plaintext, data) {
		t.Fatalf("got %q, want %q", plaintext, data)
	}
	if matched == nil || matched.Label != "recovery key" {
		t.Fatalf("expected registry match, got %v", matched)
	}
}

func TestDecryptFileBytesWrongKey(t *testing.T) {
	container, _, err := EncryptFileBytes([]byte("data"), "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	wrongKey, err := randomBytes(lockerKeyBytes)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = DecryptFileBytes(container, hex.EncodeToString(wrongKey), nil)
	if !IsAuthenticationError(err) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestDecryptFileBytesTooShort(t *testing.T) {
	_, _, err := DecryptFileBytes(make([]byte, 10), "00", nil)
	if !IsCorruptionError(err) {
		t.Fatalf("expected CorruptionError, got %v", err)
	}
}

func TestDecryptFileBytesBadMagic(t *testing.T) {
	container, fk, err := EncryptFileBytes([]byte("data"), "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	container[0] = 'X'
	_, _, err = DecryptFileBytes(container, fk.Key, nil)
	if !IsCorruptionError(err) {
		t.Fatalf("expected CorruptionError, got %v", err)
	}
}

func TestEncryptDecryptFilePaths(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(src, []byte("hello vault"), 0o600); err != nil {
		t.Fatal(err)
	}

	keyHex, sealedPath, err := EncryptFile(src)
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	plainPath, err := DecryptFile(sealedPath, keyHex)
	if err != nil {
		t.Fatalf("DecryptFile: %v", err)
	}
	got, err := os.ReadFile(plainPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello vault" {
		t.Fatalf("got %q", got)
	}
}

func TestEncryptFileMissingSource(t *testing.T) {
	_, _, err := EncryptFile("/does/not/exist")
	if !IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

