package stack

// anchor returns the active item with the smallest index whose top is at or
// below the top stack edge.
func (e *Engine[V]) anchor() (Item[V], bool) {
	for _, it := range e.active.items {
		if it.Rect.Top >= e.zones.Top {
			return it, true
		}
	}
	return Item[V]{}, false
}

// bottomBoundary returns the active item with the largest index whose top
// is at or above the bottom stack edge.
func (e *Engine[V]) bottomBoundary() (Item[V], bool) {
	for i := len(e.active.items) - 1; i >= 0; i-- {
		if it := e.active.items[i]; it.Rect.Top <= e.zones.Bottom {
			return it, true
		}
	}
	return Item[V]{}, false
}

// expand un-stacks the active set around a: every item is placed exactly
// one pitch from its neighbours, keeping a where it is in expanded space.
// It returns the expanded top of index 0.
func (e *Engine[V]) expand(a Item[V]) int {
	pitch := e.geom.Pitch()
	origin := a.flow - a.Index*pitch
	for i := range e.active.items {
		it := &e.active.items[i]
		it.flow = origin + it.Index*pitch
	}
	return origin
}
