package bastion

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCanonicalizeKeyOrder(t *testing.T) {
	state := &VaultState{
		Version:      1,
		Entropy:      "deadbeef",
		Flags:        0,
		LastModified: 1000,
		Locker:       []FileKey{},
		Contacts:     []Contact{},
		Notes:        []Note{},
		Configs:      []Credential{},
	}
	out, err := Canonicalize(state)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	order := []string{"version", "entropy", "flags", "lastModified", "locker", "contacts", "notes", "configs"}
	s := string(out)
	last := -1
	for _, key := range order {
		idx := strings.Index(s, `"`+key+`"`)
		if idx < 0 {
			t.Fatalf("missing key %q in %s", key, s)
		}
		if idx < last {
			t.Fatalf("key %q out of order in %s", key, s)
		}
		last = idx
	}
}

func TestVaultStateUnknownKeyRoundTrip(t *testing.T) {
	input := `{"version":1,"entropy":"ab","flags":0,"lastModified":5,"locker":[],"contacts":[],"notes":[],"configs":[],"futureField":{"nested":true}}`

	var state VaultState
	if err := json.Unmarshal([]byte(input), &state); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if state.Extra == nil || string(state.Extra["futureField"]) != `{"nested":true}` {
		t.Fatalf("expected futureField preserved in Extra, got %v", state.Extra)
	}

	out, err := Canonicalize(&state)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if !strings.Contains(string(out), `"futureField":{"nested":true}`) {
		t.Fatalf("round-tripped output missing unknown key: %s", out)
	}
}

func TestCredentialUnknownKeyRoundTrip(t *testing.T) {
	input := `{"id":"aa","name":"n","username":"u","version":1,"length":16,"useSymbols":false,"tags":["a","b"]}`
	var c Credential
	if err := json.Unmarshal([]byte(input), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(c.Extra["tags"]) != `["a","b"]` {
		t.Fatalf("expected tags preserved, got %v", c.Extra)
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"tags":["a","b"]`) {
		t.Fatalf("round-tripped output missing tags: %s", out)
	}
}
