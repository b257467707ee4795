// Package builtin contains the row transformers between ingest and load:
// cleaning, business rules, row identity resolution and entity extraction.
//
// DeDup is the order-preserving de-duplication primitive used by the entity
// extractor. It collapses items sharing a key and keeps the earliest
// occurrence. Output order follows the position of each winner in the input,
// so the result never depends on map iteration order.
package builtin

// DeDup is an in-memory keep-first de-duplication over a slice of T.
type DeDup[T any] struct {
	// Key returns the business key of an item. Items reporting ok=false are
	// not de-duplicated and are appended after the winners in input order.
	Key func(T) (key string, ok bool)
}

// Apply returns a new slice holding the first item seen for each key.
func (d DeDup[T]) Apply(in []T) []T {
	if len(in) == 0 || d.Key == nil {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]T, 0, len(in))
	var passthrough []int
	for i, item := range in {
		key, ok := d.Key(item)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	for _, idx := range passthrough {
		out = append(out, in[idx])
	}
	return out
}
