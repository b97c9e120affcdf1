package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is a single key and its count.
type Entry struct {
	Key   string
	Count int
}

// MarshalJSON encodes an entry as a two-element array: ["key", count].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Key, e.Count})
}

// UnmarshalJSON accepts ["key", count] and [number, count]; numeric keys are
// converted to their decimal string form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry: want 2 elements, got %d", len(pair))
	}
	var key string
	if err := json.Unmarshal(pair[0], &key); err != nil {
		var n json.Number
		if err := json.Unmarshal(pair[0], &n); err != nil {
			return fmt.Errorf("entry key: %w", err)
		}
		key = n.String()
	}
	var count int
	if err := json.Unmarshal(pair[1], &count); err != nil {
		return fmt.Errorf("entry count: %w", err)
	}
	e.Key, e.Count = key, count
	return nil
}

// Counter counts string keys and remembers the order in which keys were
// first seen. The zero value is ready to use.
type Counter struct {
	keys   []string
	counts map[string]int
}

// NewCounter returns a counter seeded with entries, in order.
func NewCounter(entries ...Entry) Counter {
	var c Counter
	for _, e := range entries {
		c.Add(e.Key, e.Count)
	}
	return c
}

// Add increases key by n, registering it on first use.
func (c *Counter) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Inc increases key by one.
func (c *Counter) Inc(key string) { c.Add(key, 1) }

// Get returns the count for key, 0 when absent.
func (c Counter) Get(key string) int { return c.counts[key] }

// Len returns the number of distinct keys.
func (c Counter) Len() int { return len(c.keys) }

// Keys returns the keys in insertion order.
func (c Counter) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Total returns the sum of all counts.
func (c Counter) Total() int {
	total := 0
	for _, k := range c.keys {
		total += c.counts[k]
	}
	return total
}

// Entries returns all entries in insertion order.
func (c Counter) Entries() []Entry {
	out := make([]Entry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Entry{Key: k, Count: c.counts[k]})
	}
	return out
}

// MostCommon returns the n highest counts, highest first. Equal counts keep
// insertion order. n <= 0 returns every entry.
func (c Counter) MostCommon(n int) []Entry {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Sorted returns the entries ordered by key ascending.
func (c Counter) Sorted() []Entry {
	out := c.Entries()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// MarshalJSON encodes the counter as an object with keys in insertion order.
func (c Counter) MarshalJSON() ([]byte, error) {
	return MarshalOrdered(c.keys, func(k string) any { return c.counts[k] })
}

// MarshalOrdered encodes a JSON object whose members follow keys, taking each
// value from value. HTML characters are left unescaped.
func MarshalOrdered(keys []string, value func(key string) any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(value(k)); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of integer counts, keeping document order.
// Repeated keys are summed.
func (c *Counter) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Counter{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("counter: want object, got %v", tok)
	}

	var out Counter
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("counter: unexpected key %v", tok)
		}
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("counter %q: %w", key, err)
		}
		v, err := n.Int64()
		if err != nil {
			return fmt.Errorf("counter %q: %w", key, err)
		}
		out.Add(key, int(v))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}
