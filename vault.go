package bastion

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dromara/carbon/v2"
	"github.com/google/uuid"
)

const outerContainerPrefix = "BASTION_V3::"

// VaultManager holds the ordered list of encrypted blobs read from (or to
// be written to) a vault file, plus at most one decrypted active state
// (spec §4.8).
type VaultManager struct {
	Path string

	blobs           []string
	activeState     *VaultState
	activePassword  string
	activeBlobIndex int

	log *slog.Logger
}

// NewVaultManager returns a manager for the vault file at path. No I/O
// happens until Load, Create, or Save is called.
func NewVaultManager(path string) *VaultManager {
	return &VaultManager{
		Path:            path,
		activeBlobIndex: -1,
		log:             newLifecycleLogger(),
	}
}

func nowMillis() int64 {
	return carbon.Now().TimestampMilli()
}

// Load reads the vault file and populates the blob list, without
// attempting to decrypt anything (spec §4.8, §6).
func (m *VaultManager) Load() error {
	raw, err := os.ReadFile(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Path: m.Path, Err: err}
		}
		return NewIOError("read", m.Path, err)
	}
	content := strings.TrimSpace(string(raw))

	switch {
	case strings.HasPrefix(content, outerContainerPrefix):
		payload := content[len(outerContainerPrefix):]
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return NewCorruptionError("vault file", "outer container is not valid base64")
		}
		var blobs []string
		if err := json.Unmarshal(decoded, &blobs); err != nil {
			return NewCorruptionError("vault file", "outer container is not a JSON array of blobs")
		}
		m.blobs = blobs
	case strings.HasPrefix(content, "["):
		var blobs []string
		if err := json.Unmarshal([]byte(content), &blobs); err != nil {
			return NewCorruptionError("vault file", "not a JSON array of blobs")
		}
		m.blobs = blobs
	default:
		m.blobs = []string{content}
	}
	return nil
}

// Unlock tries each blob in order and activates the first one that
// decrypts successfully. If that blob used a legacy envelope version, the
// manager immediately re-encrypts and rewrites the file in V3.5, preserving
// the active slot index (spec §4.4 automatic upgrade).
func (m *VaultManager) Unlock(password string) (bool, error) {
	if err := ValidatePassword(password); err != nil {
		return false, err
	}

	opID := uuid.NewString()

	for idx, blob := range m.blobs {
		plaintext, legacy, err := openEnvelope(blob, password)
		if err != nil {
			continue
		}

		var state VaultState
		if err := json.Unmarshal(plaintext, &state); err != nil {
			continue
		}

		m.activeState = &state
		m.activePassword = password
		m.activeBlobIndex = idx
		m.log.Info("vault unlocked", "op", opID, "slot", idx, "legacy", legacy)

		if legacy {
			m.log.Info("legacy envelope detected, upgrading to current format", "op", opID, "slot", idx)
			if err := m.Save(); err != nil {
				m.log.Warn("legacy upgrade rewrite failed", "op", opID, "error", err)
			}
		}
		return true, nil
	}

	m.log.Info("unlock failed", "op", opID)
	return false, nil
}

// Save re-encrypts the active state (bumping version and lastModified),
// replaces its slot (or appends a new one), and atomically rewrites the
// vault file. If no state is active, it still rewrites the outer container
// from the current blob list unchanged.
func (m *VaultManager) Save() error {
	opID := uuid.NewString()

	if m.activeState != nil {
		m.activeState.Version++
		m.activeState.LastModified = nowMillis()

		canonical, err := Canonicalize(m.activeState)
		if err != nil {
			return err
		}
		framed := frame(canonical)

		blob, err := sealEnvelope(framed, m.activePassword)
		if err != nil {
			return err
		}

		if m.activeBlobIndex >= 0 && m.activeBlobIndex < len(m.blobs) {
			m.blobs[m.activeBlobIndex] = blob
		} else {
			m.blobs = append(m.blobs, blob)
			m.activeBlobIndex = len(m.blobs) - 1
		}
	}

	payload, err := json.Marshal(m.blobs)
	if err != nil {
		return err
	}
	out := outerContainerPrefix + base64.StdEncoding.EncodeToString(payload)

	tmp := m.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0o600); err != nil {
		return NewIOError("write", tmp, err)
	}
	if err := os.Rename(tmp, m.Path); err != nil {
		return NewIOError("rename", m.Path, err)
	}
	_ = os.Chmod(m.Path, 0o600) // best-effort; ignored on platforms without POSIX permission bits

	m.log.Info("vault saved", "op", opID, "slot", m.activeBlobIndex, "version", m.versionOrZero())
	return nil
}

func (m *VaultManager) versionOrZero() int {
	if m.activeState == nil {
		return 0
	}
	return m.activeState.Version
}

// Create initializes a brand new vault: fresh entropy, empty collections,
// version 1, and an immediate Save.
func (m *VaultManager) Create(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	entropyBytes := make([]byte, 32)
	if _, err := rand.Read(entropyBytes); err != nil {
		return err
	}

	m.blobs = nil
	m.activeState = &VaultState{
		Entropy:      hex.EncodeToString(entropyBytes),
		Version:      1,
		LastModified: nowMillis(),
		Locker:       []FileKey{},
		Contacts:     []Contact{},
		Notes:        []Note{},
		Configs:      []Credential{},
	}
	m.activePassword = password
	m.activeBlobIndex = -1

	return m.Save()
}

// Lock discards the in-memory state and password. No disk writes occur;
// this is purely the caller's inactivity/explicit-lock policy taking effect.
// The password and entropy are Go strings, which are immutable: wipeBytes
// here zeroes byte copies of them, not the strings' own storage, so their
// contents stay in memory until the garbage collector reclaims it.
func (m *VaultManager) Lock() {
	if m.activeState != nil {
		wipeBytes([]byte(m.activeState.Entropy))
		m.activeState = nil
	}
	wipeBytes([]byte(m.activePassword))
	m.activePassword = ""
	m.activeBlobIndex = -1
}

// ExportPlaintextJSON returns the canonical JSON of the active state. The
// vault must be unlocked.
func (m *VaultManager) ExportPlaintextJSON() (string, error) {
	if m.activeState == nil {
		return "", &PolicyError{Message: ErrVaultLocked.Error(), Err: ErrVaultLocked}
	}
	out, err := Canonicalize(m.activeState)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ActiveState returns the currently unlocked state, or nil.
func (m *VaultManager) ActiveState() *VaultState {
	return m.activeState
}

// IsUnlocked reports whether a state is currently active.
func (m *VaultManager) IsUnlocked() bool {
	return m.activeState != nil
}

// String implements fmt.Stringer for debug/log output without leaking secrets.
func (m *VaultManager) String() string {
	return fmt.Sprintf("VaultManager{path=%s, blobs=%d, unlocked=%t}", m.Path, len(m.blobs), m.IsUnlocked())
}
