package bastion

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/samber/lo"
)

// Canonicalize renders a VaultState as byte-deterministic, compact UTF-8
// JSON with the fixed key order from spec §4.1. Struct field order already
// matches the canonical order for every record type (see types.go), so
// plain json.Marshal produces the right prefix; the only extra work here is
// splicing back any unrecognized keys captured on decode, in sorted order,
// so a round trip through an implementation that doesn't know about a
// newer field never drops it.
func Canonicalize(state *VaultState) ([]byte, error) {
	return json.Marshal(state)
}

// mergeExtra splices sorted extra keys into a compact JSON object produced
// by json.Marshal, just before its closing brace.
func mergeExtra(base []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	keys := lo.Keys(extra)
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1]) // drop trailing '}'
	if len(base) > 2 {            // base was not "{}"
		buf.WriteByte(',')
	}
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// splitUnknown decodes a JSON object and returns the subset of its keys not
// present in known, for storage in a record's Extra map.
func splitUnknown(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	knownSet := lo.SliceToMap(known, func(k string) (string, struct{}) { return k, struct{}{} })
	extra := make(map[string]json.RawMessage)
	for k, v := range all {
		if _, ok := knownSet[k]; !ok {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}

var vaultStateKnownKeys = []string{
	"version", "entropy", "flags", "lastModified", "locker", "contacts", "notes", "configs",
}

var credentialKnownKeys = []string{
	"id", "name", "username", "category", "version", "length", "useSymbols",
	"customPassword", "breachStats", "compromised", "createdAt", "updatedAt",
	"usageCount", "sortOrder",
}

var noteKnownKeys = []string{"id", "updatedAt", "title", "content"}

var contactKnownKeys = []string{"id", "updatedAt", "name", "email", "phone", "address", "notes"}

var fileKeyKnownKeys = []string{"id", "timestamp", "label", "size", "mime", "key", "hash", "embedded"}

// UnmarshalJSON captures unrecognized keys into Extra for forward compatibility.
func (v *VaultState) UnmarshalJSON(data []byte) error {
	type alias VaultState
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = VaultState(a)
	extra, err := splitUnknown(data, vaultStateKnownKeys)
	if err != nil {
		return err
	}
	v.Extra = extra
	return nil
}

// MarshalJSON emits the canonical key order followed by sorted extra keys.
func (v VaultState) MarshalJSON() ([]byte, error) {
	type alias VaultState
	raw, err := json.Marshal(alias(v))
	if err != nil {
		return nil, err
	}
	return mergeExtra(raw, v.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra for forward compatibility.
func (c *Credential) UnmarshalJSON(data []byte) error {
	type alias Credential
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Credential(a)
	extra, err := splitUnknown(data, credentialKnownKeys)
	if err != nil {
		return err
	}
	c.Extra = extra
	return nil
}

// MarshalJSON emits the canonical key order followed by sorted extra keys.
func (c Credential) MarshalJSON() ([]byte, error) {
	type alias Credential
	raw, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	return mergeExtra(raw, c.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra for forward compatibility.
func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = Note(a)
	extra, err := splitUnknown(data, noteKnownKeys)
	if err != nil {
		return err
	}
	n.Extra = extra
	return nil
}

// MarshalJSON emits the canonical key order followed by sorted extra keys.
func (n Note) MarshalJSON() ([]byte, error) {
	type alias Note
	raw, err := json.Marshal(alias(n))
	if err != nil {
		return nil, err
	}
	return mergeExtra(raw, n.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra for forward compatibility.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type alias Contact
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Contact(a)
	extra, err := splitUnknown(data, contactKnownKeys)
	if err != nil {
		return err
	}
	c.Extra = extra
	return nil
}

// MarshalJSON emits the canonical key order followed by sorted extra keys.
func (c Contact) MarshalJSON() ([]byte, error) {
	type alias Contact
	raw, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	return mergeExtra(raw, c.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra for forward compatibility.
func (f *FileKey) UnmarshalJSON(data []byte) error {
	type alias FileKey
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = FileKey(a)
	extra, err := splitUnknown(data, fileKeyKnownKeys)
	if err != nil {
		return err
	}
	f.Extra = extra
	return nil
}

// MarshalJSON emits the canonical key order followed by sorted extra keys.
func (f FileKey) MarshalJSON() ([]byte, error) {
	type alias FileKey
	raw, err := json.Marshal(alias(f))
	if err != nil {
		return nil, err
	}
	return mergeExtra(raw, f.Extra)
}
