package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TableEntry is one key of a FrequencyTable.
type TableEntry struct {
	// Key is the counted value (an email domain or a city).
	Key string `json:"key"`

	// Count is the number of occurrences. Never negative.
	Count int `json:"count"`

	// Seq is the insertion sequence number assigned when the key was first
	// added. It increases monotonically and is the ranking tiebreak.
	Seq int `json:"seq"`
}

// FrequencyTable maps keys to occurrence counts and remembers the order in
// which keys were first inserted.
//
// Entries live in an append-only slice indexed by a map. The slice position
// is the insertion sequence number used to break ranking ties.
//
// A FrequencyTable is owned by a single aggregation pass and must not be
// written concurrently.
type FrequencyTable struct {
	index   map[string]int
	entries []TableEntry
}

// NewFrequencyTable creates an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		index:   make(map[string]int),
		entries: make([]TableEntry, 0),
	}
}

// Add increments key by delta. A key seen for the first time is appended
// with the next sequence number. Non-positive deltas are ignored.
func (t *FrequencyTable) Add(key string, delta int) {
	if delta <= 0 {
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[key]; ok {
		t.entries[i].Count += delta
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, TableEntry{Key: key, Count: delta, Seq: len(t.entries)})
}

// Inc increments key by one.
func (t *FrequencyTable) Inc(key string) {
	t.Add(key, 1)
}

// Count returns the count for key, or zero if the key is unknown.
func (t *FrequencyTable) Count(key string) int {
	if t == nil {
		return 0
	}
	if i, ok := t.index[key]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys.
func (t *FrequencyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, e := range t.entries {
		total += e.Count
	}
	return total
}

// Entries returns a copy of all entries in insertion order.
func (t *FrequencyTable) Entries() []TableEntry {
	if t == nil {
		return []TableEntry{}
	}
	out := make([]TableEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Merge adds every count of other into t. Keys new to t are appended in
// other's insertion order, so merging per-chunk tables in chunk order
// yields the same sequence numbers as a single sequential pass.
func (t *FrequencyTable) Merge(other *FrequencyTable) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		t.Add(e.Key, e.Count)
	}
}

// Map returns the counts as a plain map. Order information is lost.
func (t *FrequencyTable) Map() map[string]int {
	out := make(map[string]int, t.Len())
	if t == nil {
		return out
	}
	for _, e := range t.entries {
		out[e.Key] = e.Count
	}
	return out
}

// MarshalJSON encodes the table as a JSON object whose members appear in
// insertion order.
func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

