// Package patterns turns bags of (key, weight) observations into frequency
// maps and deterministic rankings. Every ranking in the module goes through
// here so tie-breaking stays identical everywhere.
package patterns

import (
	"encoding/json"
	"sort"
)

// Observation is a single keyed observation. A Weight of zero or less counts as 1.
type Observation struct {
	Key    string
	Weight int
}

// RankedEntry is one row of a ranking.
type RankedEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FrequencyMap counts occurrences per key and remembers the order in which
// keys were first seen. Ties in a ranking are broken by that order.
type FrequencyMap struct {
	counts map[string]int
	order  []string
}

// NewFrequencyMap returns an empty map.
func NewFrequencyMap() *FrequencyMap {
	return &FrequencyMap{counts: make(map[string]int)}
}

// BuildFrequencyMap sums the weights of the observations per key.
func BuildFrequencyMap(observations []Observation) *FrequencyMap {
	m := NewFrequencyMap()
	for _, obs := range observations {
		m.Add(obs.Key, obs.Weight)
	}
	return m
}

// FromKeys builds a map where every key carries weight 1.
func FromKeys(keys ...string) *FrequencyMap {
	m := NewFrequencyMap()
	for _, key := range keys {
		m.Add(key, 1)
	}
	return m
}

// Add records weight for key. Non-positive weights count as 1.
func (m *FrequencyMap) Add(key string, weight int) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	if weight <= 0 {
		weight = 1
	}
	if _, seen := m.counts[key]; !seen {
		m.order = append(m.order, key)
	}
	m.counts[key] += weight
}

// Count returns the count for key, or 0.
func (m *FrequencyMap) Count(key string) int {
	if m == nil {
		return 0
	}
	return m.counts[key]
}

// Has reports whether key was observed.
func (m *FrequencyMap) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.counts[key]
	return ok
}

// Len returns the number of distinct keys.
func (m *FrequencyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Keys returns the keys in first-insertion order.
func (m *FrequencyMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.order))
	copy(keys, m.order)
	return keys
}

// Entries returns every key with its count in first-insertion order.
func (m *FrequencyMap) Entries() []RankedEntry {
	if m == nil {
		return nil
	}
	entries := make([]RankedEntry, 0, len(m.order))
	for _, key := range m.order {
		entries = append(entries, RankedEntry{Name: key, Count: m.counts[key]})
	}
	return entries
}

// Total returns the sum of all counts.
func (m *FrequencyMap) Total() int {
	total := 0
	if m == nil {
		return total
	}
	for _, count := range m.counts {
		total += count
	}
	return total
}

// MarshalJSON encodes the map as an object. Key order in the output follows
// first insertion so repeated encodes are byte-identical.
func (m *FrequencyMap) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.order) == 0 {
		return []byte("{}"), nil
	}
	buf := []byte{'{'}
	for i, key := range m.order {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		v, err := json.Marshal(m.counts[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// TopN ranks the map by descending count and returns at most n entries.
// Equal counts keep first-insertion order.
func TopN(m *FrequencyMap, n int) []RankedEntry {
	if n <= 0 || m.Len() == 0 {
		return []RankedEntry{}
	}
	ranked := m.Entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Ranked returns the full ranking, equivalent to TopN(m, m.Len()).
func Ranked(m *FrequencyMap) []RankedEntry {
	return TopN(m, m.Len())
}

// MostCommon returns the top entry, or nil when the map is empty.
func MostCommon(m *FrequencyMap) *RankedEntry {
	top := TopN(m, 1)
	if len(top) == 0 {
		return nil
	}
	return &top[0]
}
