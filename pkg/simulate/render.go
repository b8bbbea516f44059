package simulate

import (
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// Render produces every requested format from a trace.
func Render(t *trace.Trace, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(t, format, opts)
		if err != nil {
			return nil, wrapStage(format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(t *trace.Trace, format string, opts Options) ([]byte, error) {
	frame := frameIndex(t, opts.Frame)

	switch format {
	case FormatJSON:
		return trace.RenderJSON(t, trace.WithJSONSummary())
	case FormatSVG:
		svgOpts := []trace.SVGOption{trace.WithScale(opts.Scale)}
		if opts.Zones {
			svgOpts = append(svgOpts, trace.WithZones())
		}
		if opts.Labels {
			svgOpts = append(svgOpts, trace.WithLabels())
		}
		if opts.Filmstrip {
			return trace.RenderFilmstrip(t, svgOpts...), nil
		}
		return trace.RenderSVG(t, frame, svgOpts...)
	case FormatText:
		return trace.RenderText(t, frame)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}
