package stack

import "slices"

// Item is one materialized element of the collection.
type Item[V any] struct {
	Index int  `json:"index"`
	Rect  Rect `json:"rect"`
	View  V    `json:"-"`

	// flow is the item's top in the expanded layout, where no item is
	// stacked and every item sits one pitch below its predecessor.
	flow int
}

// activeSet holds the materialized items ordered by index. It is rebuilt
// by every pass rather than edited in place.
type activeSet[V any] struct {
	items []Item[V]
}

func (s *activeSet[V]) len() int { return len(s.items) }

// get returns the item for index, if materialized.
func (s *activeSet[V]) get(index int) (Item[V], bool) {
	i, ok := slices.BinarySearchFunc(s.items, index, func(it Item[V], target int) int {
		return it.Index - target
	})
	if !ok {
		return Item[V]{}, false
	}
	return s.items[i], true
}

// replace swaps in next and returns the items that are no longer present.
// next must be ordered by index.
func (s *activeSet[V]) replace(next []Item[V]) []Item[V] {
	var gone []Item[V]
	for _, it := range s.items {
		if _, ok := slices.BinarySearchFunc(next, it.Index, func(n Item[V], target int) int {
			return n.Index - target
		}); !ok {
			gone = append(gone, it)
		}
	}
	s.items = next
	return gone
}

// clear empties the set and returns everything it held.
func (s *activeSet[V]) clear() []Item[V] {
	gone := s.items
	s.items = nil
	return gone
}

func (s *activeSet[V]) snapshot() []Item[V] {
	return slices.Clone(s.items)
}
