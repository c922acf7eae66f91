package servicecode

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GroupCodes keeps group codes in display order. In JSON it is an object
// {"group name": ["code", ...]} whose key order is preserved; the array form
// [{"name": ..., "codes": [...]}] is accepted as well.
type GroupCodes []GroupCode

// Names returns the group names in order.
func (g GroupCodes) Names() []string {
	names := make([]string, 0, len(g))
	for _, gc := range g {
		names = append(names, gc.Name)
	}
	return names
}

// Find returns the group named name.
func (g GroupCodes) Find(name string) (GroupCode, bool) {
	for _, gc := range g {
		if gc.Name == name {
			return gc, true
		}
	}
	return GroupCode{}, false
}

func (g GroupCodes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, gc := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(gc.Name)
		if err != nil {
			return nil, err
		}
		codes := gc.Codes
		if codes == nil {
			codes = []string{}
		}
		val, err := json.Marshal(codes)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *GroupCodes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*g = nil
		return nil
	}

	if trimmed[0] == '[' {
		var list []GroupCode
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*g = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}

	var out GroupCodes
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("group code name must be a string, got %v", tok)
		}
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("group code %q: %w", name, err)
		}
		codes := make([]string, 0, len(raw))
		for _, v := range raw {
			codes = append(codes, CellString(v))
		}
		out = append(out, GroupCode{Name: name, Codes: codes})
	}
	*g = out
	return nil
}
