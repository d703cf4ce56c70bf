package bastion

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

const (
	lockerMagic    = "BASTION1"
	lockerIDWidth  = 36
	lockerMinSize  = len(lockerMagic) + lockerIDWidth + ivSize // 56
	lockerIVOffset = len(lockerMagic) + lockerIDWidth          // 44
	lockerKeyBytes = 32
	lockerIDBytes  = 18 // rendered as 36 hex chars
)

// EncryptFileBytes seals data as a standalone File Locker container
// (spec §4.6): "BASTION1" ∥ id(36, space-padded) ∥ iv(12) ∥ ciphertext∥tag.
// It returns the container bytes and a FileKey record pre-populated with
// that id and the 32-byte key as hex (FileKey.Key, to be handed to the
// caller and stored in the vault's locker registry).
func EncryptFileBytes(data []byte, label string, timestampMs int64) (container []byte, key FileKey, err error) {
	idBytes, err := randomBytes(lockerIDBytes)
	if err != nil {
		return nil, FileKey{}, err
	}
	fileID := hex.EncodeToString(idBytes) // already 36 hex chars; padding is a no-op in practice
	paddedID := fmt.Sprintf("%-36s", fileID)

	rawKey, err := randomBytes(lockerKeyBytes)
	if err != nil {
		return nil, FileKey{}, err
	}

	nonce, ciphertext, err := aeadSeal(rawKey, data)
	if err != nil {
		return nil, FileKey{}, err
	}

	out := make([]byte, 0, lockerMinSize+len(ciphertext))
	out = append(out, lockerMagic...)
	out = append(out, paddedID...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)

	fk := FileKey{
		ID:        paddedID,
		Timestamp: timestampMs,
		Label:     label,
		Size:      int64(len(data)),
		Key:       hex.EncodeToString(rawKey),
	}
	return out, fk, nil
}

// DecryptFileBytes opens a File Locker container. If registry is non-nil,
// the container's space-trimmed id is looked up in it and the matching
// FileKey (if any) is returned alongside the plaintext — this is the
// lookup the Data Model invariant describes for locating a file's key by
// its header id.
func DecryptFileBytes(container []byte, keyHex string, registry []FileKey) (plaintext []byte, matched *FileKey, err error) {
	if err := ValidateBuffer(container, "locker file", lockerMinSize); err != nil {
		return nil, nil, NewCorruptionError("locker file", "buffer shorter than minimum valid length")
	}
	if string(container[:len(lockerMagic)]) != lockerMagic {
		return nil, nil, NewCorruptionError("locker file", "magic mismatch")
	}

	id := strings.TrimRight(string(container[len(lockerMagic):len(lockerMagic)+lockerIDWidth]), " ")
	nonce := container[lockerIVOffset : lockerIVOffset+ivSize]
	ciphertext := container[lockerIVOffset+ivSize:]

	trimmedKey := strings.TrimSpace(keyHex)
	if err := ValidateHexKey(trimmedKey, lockerKeyBytes); err != nil {
		return nil, nil, err
	}
	key, _ := hex.DecodeString(trimmedKey)

	plaintext, err = aeadOpen(key, nonce, ciphertext)
	if err != nil {
		return nil, nil, NewAuthenticationError("locker file", ErrAuthFailed)
	}

	if registry != nil {
		if fk, ok := lo.Find(registry, func(fk FileKey) bool {
			return strings.TrimRight(fk.ID, " ") == id
		}); ok {
			matched = &fk
		}
	}

	return plaintext, matched, nil
}

// EncryptFile reads the file at path, seals it into path+".bastion", and
// returns the freshly generated random key as hex along with the output
// path (spec §6 encrypt_file).
func EncryptFile(path string) (keyHex string, outPath string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", &NotFoundError{Path: path, Err: err}
		}
		return "", "", NewIOError("read", path, err)
	}

	container, fk, err := EncryptFileBytes(data, path, 0)
	if err != nil {
		return "", "", err
	}

	outPath = path + ".bastion"
	if err := os.WriteFile(outPath, container, 0o600); err != nil {
		return "", "", NewIOError("write", outPath, err)
	}
	return fk.Key, outPath, nil
}

// DecryptFile opens path (a ".bastion" container) with keyHex and writes
// the plaintext to path with ".bastion" replaced by ".decrypted" (spec §6
// decrypt_file / §6 External Interfaces).
func DecryptFile(path, keyHex string) (outPath string, err error) {
	container, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: path, Err: err}
		}
		return "", NewIOError("read", path, err)
	}

	plaintext, _, err := DecryptFileBytes(container, keyHex, nil)
	if err != nil {
		return "", err
	}

	outPath = strings.Replace(path, ".bastion", ".decrypted", 1)
	if err := os.WriteFile(outPath, plaintext, 0o600); err != nil {
		return "", NewIOError("write", outPath, err)
	}
	return outPath, nil
}
