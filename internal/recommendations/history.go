package recommendations

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CardRef names a card in a build. It decodes from either a bare JSON
// string or an object with a "name" field.
type CardRef struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts "Sol Ring" and {"name":"Sol Ring"}.
func (c *CardRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = strings.TrimSpace(name)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("card must be a string or an object with a name: %w", err)
	}
	c.Name = strings.TrimSpace(obj.Name)
	return nil
}

// Cards builds refs from plain names.
func Cards(names ...string) []CardRef {
	refs := make([]CardRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, CardRef{Name: n})
	}
	return refs
}

// HistoryEntry is one recorded deck build. Entries are never edited after
// they are appended.
type HistoryEntry struct {
	Commander string    `json:"commander,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Colors    []string  `json:"colors,omitempty"`
	Cards     []CardRef `json:"cards,omitempty"`
	Timestamp string    `json:"timestamp"`
}

func (e HistoryEntry) clone() HistoryEntry {
	out := e
	if e.Colors != nil {
		out.Colors = append([]string(nil), e.Colors...)
	}
	if e.Cards != nil {
		out.Cards = append([]CardRef(nil), e.Cards...)
	}
	return out
}
