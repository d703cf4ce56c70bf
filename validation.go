package bastion

import (
	"encoding/hex"
	"fmt"
)

// Input validation helpers for defensive programming, called at the public
// API boundary before any cryptographic operation runs.

// ValidateBuffer checks that buf is non-nil and at least minSize bytes.
func ValidateBuffer(buf []byte, name string, minSize int) error {
	if buf == nil {
		return &ValidationError{Field: name, Message: "buffer cannot be nil"}
	}
	if minSize > 0 && len(buf) < minSize {
		return &ValidationError{
			Field:   name,
			Value:   len(buf),
			Message: fmt.Sprintf("buffer too small: got %d bytes, need at least %d bytes", len(buf), minSize),
		}
	}
	return nil
}

// ValidatePassword rejects an empty password. The spec places no further
// complexity requirement on it — strength is the caller's concern.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "password cannot be empty"}
	}
	return nil
}

// ValidateHexKey checks that s decodes to exactly expectedBytes bytes of hex.
func ValidateHexKey(s string, expectedBytes int) error {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return &ValidationError{Field: "key", Value: s, Message: "not valid hex"}
	}
	if len(decoded) != expectedBytes {
		return &ValidationError{
			Field:   "key",
			Value:   len(decoded),
			Message: fmt.Sprintf("invalid key length: got %d bytes, expected %d bytes", len(decoded), expectedBytes),
		}
	}
	return nil
}

// ValidateShamirShape checks the (n,k) shape of a split before any field
// arithmetic runs.
func ValidateShamirShape(n, k int) error {
	if k < 1 {
		return &ValidationError{Field: "k", Value: k, Message: "threshold must be at least 1"}
	}
	if n < k {
		return &ValidationError{Field: "n", Value: n, Message: "share count cannot be less than the threshold"}
	}
	if n > 255 {
		return &ValidationError{Field: "n", Value: n, Message: "share count cannot exceed 255"}
	}
	return nil
}

// ValidateCredentialLength checks a requested derived-password length is
// within a sane, non-zero range.
func ValidateCredentialLength(length int) error {
	if length < 1 || length > 256 {
		return &ValidationError{
			Field:   "length",
			Value:   length,
			Message: "password length must be between 1 and 256",
		}
	}
	return nil
}
