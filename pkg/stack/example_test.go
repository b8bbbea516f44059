package stack_test

import (
	"fmt"

	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/units"
)

// rows is a minimal host: every item is a 100px row in a 600px viewport.
type rows int

func (r rows) ItemCount() int               { return int(r) }
func (rows) Acquire(index int) (int, error) { return index, nil }
func (rows) Release(int, int)               {}
func (rows) Measure(int) stack.Measurement  { return stack.Measurement{Width: 320, Height: 100} }
func (rows) Viewport() stack.Size           { return stack.Size{Width: 320, Height: 600} }

func Example() {
	e := stack.New[int](rows(50), stack.WithStackStep(units.PxOf(20)))
	if err := e.Layout(); err != nil {
		panic(err)
	}

	for _, it := range e.Items() {
		fmt.Println(it.Index, it.Rect.Top)
	}
	fmt.Println("bottom pile:", e.BottomStackDepth())
	// Output:
	// 0 0
	// 1 100
	// 2 200
	// 3 300
	// 4 400
	// 5 500
	// 6 520
	// 7 540
	// 8 560
	// 9 580
	// bottom pile: 5
}

func ExampleEngine_Scroll() {
	e := stack.New[int](rows(50), stack.WithStackStep(units.PxOf(20)))
	_ = e.Layout()

	applied, _ := e.Scroll(1_000_000)
	fmt.Println("applied:", applied, "state:", e.State())

	last, _ := e.Item(49)
	fmt.Println("last bottom:", last.Rect.Bottom)

	applied, _ = e.Scroll(10)
	fmt.Println("applied:", applied, "state:", e.State())
	// Output:
	// applied: 4400 state: neutral
	// last bottom: 600
	// applied: 0 state: bottom
}
