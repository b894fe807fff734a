package entity

// ExactKeyMarker is the reserved convention distinguishing exact-match keys
// from prefix-match keys inside one table. It mirrors the AD1C country-file
// notation, where "=W1AW" registers the whole callsign rather than a prefix.
// "=" is never a legal callsign character, so the two namespaces cannot
// collide.
const ExactKeyMarker = "="

// PrefixTable is an immutable mapping from prefix-or-exact-match key to
// Entity. Two instances exist at runtime, one per reference list (DXCC and
// WAE). A table is fully built before any lookup touches it and is never
// mutated afterwards, so lookups need no locking; refreshes install a new
// table by swapping the pointer.
type PrefixTable struct {
	entries map[string]Entity
}

// TableBuilder accumulates entries for a PrefixTable. Not safe for
// concurrent use; Build the table before sharing it.
type TableBuilder struct {
	entries map[string]Entity
}

// NewTableBuilder returns an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{entries: make(map[string]Entity)}
}

// AddPrefix registers e under a prefix-match key.
func (b *TableBuilder) AddPrefix(key string, e Entity) {
	if key == "" {
		return
	}
	e.ExactMatchOnly = false
	b.entries[key] = e
}

// AddExact registers e under an exact-match key for the whole callsign.
func (b *TableBuilder) AddExact(call string, e Entity) {
	if call == "" {
		return
	}
	e.ExactMatchOnly = true
	b.entries[ExactKeyMarker+call] = e
}

// Build produces the immutable table. The builder may be reused; the table
// owns its own copy of the entries.
func (b *TableBuilder) Build() *PrefixTable {
	entries := make(map[string]Entity, len(b.entries))
	for k, v := range b.entries {
		entries[k] = v
	}
	return &PrefixTable{entries: entries}
}

// Prefix looks up key in the prefix-match namespace. A nil table reports
// no match for every key.
func (t *PrefixTable) Prefix(key string) (Entity, bool) {
	if t == nil || key == "" {
		return Unknown, false
	}
	e, ok := t.entries[key]
	return e, ok
}

// Exact looks up the whole callsign in the exact-match namespace.
func (t *PrefixTable) Exact(call string) (Entity, bool) {
	if t == nil || call == "" {
		return Unknown, false
	}
	e, ok := t.entries[ExactKeyMarker+call]
	return e, ok
}

// HasPrefix reports whether key is registered as a prefix-match key.
func (t *PrefixTable) HasPrefix(key string) bool {
	_, ok := t.Prefix(key)
	return ok
}

// Len returns the total number of registered keys in both namespaces.
func (t *PrefixTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
