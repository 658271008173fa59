package catalog

import "sort"

// EventRegistry is the closed union of event keys across every
// PatternSet in the catalog, each assigned a stable integer id at
// startup from a sorted, deduplicated key set. The id/name pairing is
// written into the output store's event_types table before any line is
// inserted, per the data model's EventType invariant.
type EventRegistry struct {
	idByKey []string // index is id, value is key
	keyToID map[string]int
}

func newEventRegistry(sets []*PatternSet) *EventRegistry {
	seen := make(map[string]struct{})
	for _, ps := range sets {
		for _, e := range ps.Events {
			seen[e.Key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyToID := make(map[string]int, len(keys))
	for id, k := range keys {
		keyToID[k] = id
	}

	return &EventRegistry{idByKey: keys, keyToID: keyToID}
}

// ID returns the stable integer id for an event key.
func (r *EventRegistry) ID(key string) (int, bool) {
	id, ok := r.keyToID[key]
	return id, ok
}

// Name returns the event key for a previously assigned id.
func (r *EventRegistry) Name(id int) (string, bool) {
	if id < 0 || id >= len(r.idByKey) {
		return "", false
	}
	return r.idByKey[id], true
}

// All returns the full id/name table in id order, ready for insertion
// into event_types.
func (r *EventRegistry) All() []struct {
	ID   int
	Name string
} {
	out := make([]struct {
		ID   int
		Name string
	}, len(r.idByKey))
	for id, name := range r.idByKey {
		out[id] = struct {
			ID   int
			Name string
		}{ID: id, Name: name}
	}
	return out
}

// Registry returns the catalog's event registry.
func (c *Catalog) Registry() *EventRegistry { return c.registry }
