package trace

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// RenderText lists the items of frame i, one per line.
func RenderText(t *Trace, i int) ([]byte, error) {
	f, err := t.Frame(i)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "frame %d %s requested=%d applied=%d state=%s anchor=%d\n",
		f.Seq, f.Kind, f.Requested, f.Applied, f.State, f.Anchor)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "index\ttop\tbottom\tzone\t")
	for _, it := range f.Items {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t\n", it.Index, it.Rect.Top, it.Rect.Bottom, it.Zone)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
