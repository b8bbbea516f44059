// Package cards is a demo collection of coloured cards for the stack engine.
//
// A [Deck] implements [stack.Host] for [*Card] views: cards are recycled
// through a [pool.Pool], coloured by cycling a palette, and all share one
// size and margin set.
package cards

import (
	"slices"
	"strconv"

	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/pool"
	"github.com/matzehuels/stackscroll/pkg/stack"
)

// Material is the full 18 colour palette.
var Material = []string{
	"#E57373", "#F06292", "#BA68C8", "#9575CD", "#7986CB", "#64B5F6",
	"#4FC3F7", "#4DD0E1", "#4DB6AC", "#81C784", "#AED581", "#DCE775",
	"#FFF176", "#FFD54F", "#FF8A65", "#A1887F", "#E0E0E0", "#90A4AE",
}

// Muted is the reduced 8 colour palette used by [Deck.Toggle].
var Muted = []string{
	"#E57373", "#BA68C8", "#7986CB", "#4FC3F7",
	"#4DB6AC", "#DCE775", "#FFD54F", "#E0E0E0",
}

// Card is a recyclable card view.
type Card struct {
	Serial int    `json:"serial"` // construction order, stable across reuse
	Index  int    `json:"index"`  // collection index the card is bound to
	Color  string `json:"color"`
	Label  string `json:"label"`
}

// Options configures a [Deck].
type Options struct {
	Palette  []string          // defaults to Material
	Count    int               // collection size; 0 means len(Palette)
	Item     stack.Measurement // size and margins of every card
	Viewport stack.Size        // initial viewport
	MaxFree  int               // pool free-list bound; 0 uses the pool default
}

// Deck is a collection of cards backed by a view pool.
type Deck struct {
	palette  []string
	count    int
	fixed    bool
	item     stack.Measurement
	viewport stack.Size
	pool     *pool.Pool[*Card]
	bound    int
}

// New creates a deck. Palette colours are validated.
func New(opts Options) (*Deck, error) {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = Material
	}
	if err := validatePalette(palette); err != nil {
		return nil, err
	}
	if opts.Count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "card count cannot be negative, got %d", opts.Count)
	}

	serial := 0
	var popts []pool.Option
	if opts.MaxFree > 0 {
		popts = append(popts, pool.WithMaxFree(opts.MaxFree))
	}
	d := &Deck{
		palette:  palette,
		count:    opts.Count,
		fixed:    opts.Count > 0,
		item:     opts.Item,
		viewport: opts.Viewport,
		pool: pool.New("cards", func() *Card {
			serial++
			return &Card{Serial: serial}
		}, popts...),
	}
	if !d.fixed {
		d.count = len(palette)
	}
	return d, nil
}

func validatePalette(palette []string) error {
	for _, c := range palette {
		if err := errors.ValidateHexColor(c); err != nil {
			return err
		}
	}
	return nil
}

// ItemCount implements stack.Host.
func (d *Deck) ItemCount() int { return d.count }

// Viewport implements stack.Host.
func (d *Deck) Viewport() stack.Size { return d.viewport }

// Measure implements stack.Host. Every card reports the deck item size.
func (d *Deck) Measure(*Card) stack.Measurement { return d.item }

// Acquire implements stack.Host.
func (d *Deck) Acquire(index int) (*Card, error) {
	if err := errors.ValidateIndex(index, d.count); err != nil {
		return nil, err
	}
	c := d.pool.Get()
	c.Index = index
	c.Color = d.Color(index)
	c.Label = strconv.Itoa(index)
	d.bound++
	return c, nil
}

// Release implements stack.Host.
func (d *Deck) Release(_ int, c *Card) {
	c.Index = -1
	d.bound--
	d.pool.Put(c)
}

// Color returns the colour of the card at index.
func (d *Deck) Color(index int) string {
	return d.palette[index%len(d.palette)]
}

// Palette returns the current palette.
func (d *Deck) Palette() []string { return d.palette }

// Bound returns the number of cards currently handed out.
func (d *Deck) Bound() int { return d.bound }

// Stats returns the view pool counters.
func (d *Deck) Stats() pool.Stats { return d.pool.Stats() }

// Resize changes the viewport. Call Engine.Layout afterwards.
func (d *Deck) Resize(s stack.Size) { d.viewport = s }

// SetCount changes the collection size. Zero resets it to the palette
// length. Call Engine.Layout afterwards.
func (d *Deck) SetCount(n int) {
	d.fixed = n > 0
	if d.fixed {
		d.count = n
	} else {
		d.count = len(d.palette)
	}
}

// Swap replaces the palette. Unless a fixed count was configured the
// collection size follows the palette length. Call Engine.Layout
// afterwards; cards already handed out keep their old colour until they
// are rebound.
func (d *Deck) Swap(palette []string) error {
	if len(palette) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "palette cannot be empty")
	}
	if err := validatePalette(palette); err != nil {
		return err
	}
	d.palette = palette
	if !d.fixed {
		d.count = len(palette)
	}
	return nil
}

// Toggle swaps between the Material and Muted palettes.
func (d *Deck) Toggle() {
	next := Muted
	if slices.Equal(d.palette, Muted) {
		next = Material
	}
	_ = d.Swap(next)
}

// Ensure Deck implements stack.Host.
var _ stack.Host[*Card] = (*Deck)(nil)
