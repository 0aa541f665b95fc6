package store

import "sort"

// Snapshot is an immutable view of the store's named fields at one point
// in time. A snapshot handed to an observer never changes afterwards; a
// later mutation produces a new snapshot with a higher version.
type Snapshot struct {
	fields  map[string]Value
	version uint64
}

// newSnapshot wraps fields without copying. Callers must not retain a
// reference to the map after handing it over.
func newSnapshot(fields map[string]Value, version uint64) Snapshot {
	return Snapshot{fields: fields, version: version}
}

// Get returns the value of a field and whether the field exists.
func (s Snapshot) Get(field string) (Value, bool) {
	v, ok := s.fields[field]
	return v, ok
}

// Fields returns the field names in sorted order.
func (s Snapshot) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of fields.
func (s Snapshot) Len() int {
	return len(s.fields)
}

// Version returns the mutation counter at the time the snapshot was taken.
// Two snapshots from the same store with equal versions hold equal state.
func (s Snapshot) Version() uint64 {
	return s.version
}

// with returns a copy of the field map with the given overrides applied.
func (s Snapshot) with(overrides map[string]Value) map[string]Value {
	next := make(map[string]Value, len(s.fields)+len(overrides))
	for name, v := range s.fields {
		next[name] = v
	}
	for name, v := range overrides {
		next[name] = v
	}
	return next
}
