package permission

import (
	"bytes"
	"encoding/json"
)

// Merge returns a complete set: the Supervisor preset overlaid with every
// schema-known flag present in stored. A nil stored set yields Supervisor.
// Keys outside the schema are dropped.
func Merge(stored Set) Set {
	out := Supervisor()
	if stored == nil {
		return out
	}

	for m, actions := range out {
		overlay, ok := stored[m]
		if !ok {
			continue
		}

		for a := range actions {
			if v, ok := overlay[a]; ok {
				actions[a] = v
			}
		}
	}

	return out
}

// Prune returns a copy of s without modules or actions outside the schema.
func Prune(s Set) Set {
	if s == nil {
		return nil
	}

	out := make(Set, len(s))
	for _, sc := range schema {
		actions, ok := s[sc.module]
		if !ok {
			continue
		}

		kept := make(Actions, len(actions))
		for _, a := range sc.actions {
			if v, ok := actions[a]; ok {
				kept[a] = v
			}
		}

		out[sc.module] = kept
	}

	return out
}

// Decode parses a stored permission document. It is lenient: modules that are
// not objects and leaves that are not booleans are ignored, so Merge falls back
// to the preset value for them. Empty input and JSON null decode to nil.
func Decode(raw []byte) (Set, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var modules map[string]json.RawMessage
	if err := json.Unmarshal(raw, &modules); err != nil {
		return nil, err
	}

	out := make(Set, len(modules))
	for name, body := range modules {
		var leaves map[string]json.RawMessage
		if err := json.Unmarshal(body, &leaves); err != nil {
			continue
		}

		actions := make(Actions, len(leaves))
		for a, leaf := range leaves {
			var v bool
			if err := json.Unmarshal(leaf, &v); err != nil || bytes.Equal(bytes.TrimSpace(leaf), []byte("null")) {
				continue
			}

			actions[a] = v
		}

		out[Module(name)] = actions
	}

	return out, nil
}

// Encode serializes s for storage.
func Encode(s Set) ([]byte, error) {
	return json.Marshal(s)
}
