// Package bastion implements the offline-first cryptographic core of a
// personal secrets vault: canonical JSON serialization, a versioned AEAD
// envelope format with a legacy decrypt ladder, deterministic per-site
// password derivation, a standalone file-locker container, and (k,n)
// Shamir secret sharing over the secp256k1 field. VaultManager ties these
// together into load/unlock/save/create/lock/export operations.
//
// # Envelope Format
//
// A vault blob is base64 of:
//   - "BSTN" ∥ version(1) ∥ salt(16) ∥ iv(12) ∥ ciphertext+tag, for any
//     version this implementation still recognizes, or
//   - salt(16) ∥ iv(12) ∥ ciphertext+tag with no header at all, for the
//     oldest vaults, which never carried one.
//
// sealEnvelope only ever produces the current version (Argon2id, framed
// payload). openEnvelope accepts all of them: a "BSTN"-prefixed blob
// commits to its header version and is decrypted exactly one way; a
// headerless blob is tried against two legacy PBKDF2 parameterizations in
// turn. Every authentication failure — wrong password, truncated
// ciphertext, flipped bit — collapses to the same AuthenticationError; the
// three are indistinguishable by design. Only structurally malformed input
// (invalid base64, a buffer too short to hold salt and IV, an unknown
// "BSTN" version byte) is reported as a CorruptionError instead.
//
// # Key Derivation
//
// Current vaults derive their AES-256-GCM key with Argon2id (time=3,
// memory=64MiB, parallelism=1). Legacy vaults used PBKDF2-HMAC-SHA256 at
// 210,000 or 100,000 iterations. Per-site passwords are derived
// separately, by PBKDF2-HMAC-SHA512 keystream plus rejection sampling —
// see Transmute.
//
// # Forward Compatibility
//
// VaultState and its nested records preserve any JSON object key they
// don't recognize in an Extra field and re-emit it (in sorted order) on
// the next save, so a vault touched by a newer client never loses data
// when round-tripped through this one.
package bastion
