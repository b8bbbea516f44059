package stack

// plan is the outcome of one pass before it is committed: the window of
// indices to keep materialized and the displayed top of each.
type plan struct {
	origin int // expanded top of index 0
	count  int // collection size
	lo, hi int // inclusive window
	tops   []int

	// first index whose expanded top reaches each stack edge
	firstBody, firstBottom int
}

func (p *plan) natural(pitch, index int) int { return p.origin + index*pitch }

// top returns the planned top of index, which must be inside the window.
func (p *plan) top(index int) int { return p.tops[index-p.lo] }

func (p *plan) topDepth() int    { return p.firstBody - p.lo }
func (p *plan) bottomDepth() int { return p.hi + 1 - p.firstBottom }

// firstAtOrBelow returns the smallest index in [0, n] whose expanded top is
// at least edge. n means no such item.
func firstAtOrBelow(origin, pitch, edge, n int) int {
	if origin >= edge {
		return 0
	}
	i := (edge - origin + pitch - 1) / pitch
	return min(i, n)
}

// plan lays out a collection of n items whose index 0 has expanded top
// origin. The window spans the body plus at most MaxDepth pile members on
// each side; candidates beyond the depth are left out and so released.
func (e *Engine[V]) plan(origin, n int) plan {
	g, z := e.geom, e.zones
	pitch := g.Pitch()

	p := plan{origin: origin, count: n}
	p.firstBody = firstAtOrBelow(origin, pitch, z.Top, n)
	p.firstBottom = max(p.firstBody, firstAtOrBelow(origin, pitch, z.Bottom, n))
	p.lo = max(0, p.firstBody-g.MaxDepth)
	p.hi = min(n, p.firstBottom+g.MaxDepth) - 1

	p.tops = make([]int, p.hi-p.lo+1)
	for i := p.lo; i <= p.hi; i++ {
		p.tops[i-p.lo] = p.natural(pitch, i)
	}

	e.stackTop(&p)
	e.stackBottom(&p)
	return p
}

// stackTop collapses the top candidates into a pile pinned at the top
// margin. Members are placed newest first. The newest member keeps a fixed
// gap to the first body item, which compresses the pile by one step before
// the next item arrives; at that moment the oldest member coincides with
// its successor at the margin and drops out of the window.
func (e *Engine[V]) stackTop(p *plan) {
	depth := p.topDepth()
	if depth == 0 {
		return
	}
	g, z := e.geom, e.zones
	pitch, step, base := g.Pitch(), g.StackStep, g.Margins.Top

	limit := base + (depth-1)*step
	if p.firstBody < p.count {
		gap := z.Top - (base + (g.MaxDepth-2)*step)
		limit = min(limit, p.natural(pitch, p.firstBody)-gap)
	}

	for i := p.firstBody - 1; i >= p.lo; i-- {
		slot := base + (i-p.lo)*step
		limit = min(limit, slot)
		top := max(p.natural(pitch, i), limit, base)
		p.tops[i-p.lo] = top
		limit = top - step
	}
}

// stackBottom collapses the bottom candidates into a pile pinned against
// the viewport height. The newest member follows the last body item until
// it reaches its slot, so members slide into place one step at a time as
// the body moves. Stacking never moves an item further down than its
// expanded position.
func (e *Engine[V]) stackBottom(p *plan) {
	depth := p.bottomDepth()
	if depth == 0 {
		return
	}
	g, z := e.geom, e.zones
	pitch, step := g.Pitch(), g.StackStep

	limit := z.Height - depth*step
	if p.firstBottom > 0 {
		gap := z.Height - (g.MaxDepth-1)*step - z.Bottom
		limit = max(limit, p.natural(pitch, p.firstBottom-1)+gap)
	}

	for i := p.firstBottom; i <= p.hi; i++ {
		slot := z.Height - (depth-(i-p.firstBottom))*step
		limit = max(limit, slot)
		top := min(p.natural(pitch, i), limit)
		p.tops[i-p.lo] = top
		limit = top + step
	}
}
