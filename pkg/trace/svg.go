package trace

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stackscroll/pkg/stack"
)

const (
	defaultItemColor = "#90A4AE"
	filmstripGap     = 24.0
)

// SVGOption configures SVG rendering via [RenderSVG] and [RenderFilmstrip].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale  float64
	zones  bool
	labels bool
}

// WithScale multiplies every coordinate by s. Values ≤ 0 are ignored.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithZones shades the two stack zones.
func WithZones() SVGOption { return func(r *svgRenderer) { r.zones = true } }

// WithLabels writes the item index on every card.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws frame i of t as a standalone SVG document.
func RenderSVG(t *Trace, i int, opts ...SVGOption) ([]byte, error) {
	f, err := t.Frame(i)
	if err != nil {
		return nil, err
	}
	r := newSVGRenderer(opts...)
	w, h := r.frameSize(t)

	var buf bytes.Buffer
	writeHeader(&buf, w, h)
	r.renderFrame(&buf, t, f, 0)
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// RenderFilmstrip draws every frame of t side by side.
func RenderFilmstrip(t *Trace, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := r.frameSize(t)
	n := max(1, len(t.Frames))
	total := float64(n)*w + float64(n-1)*filmstripGap

	var buf bytes.Buffer
	writeHeader(&buf, total, h)
	for i, f := range t.Frames {
		r.renderFrame(&buf, t, f, float64(i)*(w+filmstripGap))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, w, h float64) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
}

func (r svgRenderer) frameSize(t *Trace) (float64, float64) {
	g := t.Geometry
	width := g.Margins.Left + g.ItemWidth + g.Margins.Right
	return float64(width) * r.scale, float64(t.Zones.Height) * r.scale
}

func (r svgRenderer) renderFrame(buf *bytes.Buffer, t *Trace, f Frame, x float64) {
	w, h := r.frameSize(t)
	s := r.scale

	fmt.Fprintf(buf, `  <g id="frame-%d" transform="translate(%.1f 0)">`+"\n", f.Seq, x)
	fmt.Fprintf(buf, `    <rect class="viewport" x="0" y="0" width="%.1f" height="%.1f" fill="#FAFAFA" stroke="#333"/>`+"\n", w, h)
	if r.zones {
		z := t.Zones
		fmt.Fprintf(buf, `    <rect class="zone-top" x="0" y="0" width="%.1f" height="%.1f" fill="#000" fill-opacity="0.06"/>`+"\n",
			w, float64(z.Top)*s)
		fmt.Fprintf(buf, `    <rect class="zone-bottom" x="0" y="%.1f" width="%.1f" height="%.1f" fill="#000" fill-opacity="0.06"/>`+"\n",
			float64(z.Bottom)*s, w, float64(z.Height-z.Bottom)*s)
	}

	fmt.Fprintf(buf, `    <clipPath id="clip-%d"><rect x="0" y="0" width="%.1f" height="%.1f"/></clipPath>`+"\n", f.Seq, w, h)
	fmt.Fprintf(buf, `    <g clip-path="url(#clip-%d)">`+"\n", f.Seq)
	for _, it := range f.Items {
		r.renderItem(buf, it)
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n")
}

func (r svgRenderer) renderItem(buf *bytes.Buffer, it Item) {
	s := r.scale
	color := it.Color
	if color == "" {
		color = defaultItemColor
	}
	rect := it.Rect
	fmt.Fprintf(buf, `      <rect id="item-%d" class="item %s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="#37474F" stroke-width="1"/>`+"\n",
		it.Index, it.Zone, float64(rect.Left)*s, float64(rect.Top)*s, float64(rect.Width())*s, float64(rect.Height())*s, 4*s, color)
	if r.labels {
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-family="monospace" font-size="%.1f" fill="#263238">%d</text>`+"\n",
			float64(rect.Left+8)*s, float64(labelBaseline(rect))*s, 12*s, it.Index)
	}
}

// labelBaseline puts the label in the strip that stays visible when the
// card is covered by its pile neighbours.
func labelBaseline(r stack.Rect) int {
	return r.Top + min(14, r.Height())
}
