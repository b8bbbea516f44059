// Package simulate replays scroll scripts against a card deck and renders
// the recorded frames.
//
// This package is shared by the CLI and the preview server. A simulation
// has two stages:
//
//  1. Play: build a [cards.Deck] and a [stack.Engine] from the config, run a
//     layout pass and replay the script, recording a [trace.Trace]
//  2. Render: turn the trace into output formats (JSON, SVG, text)
//
// Both stages are cached through a [Runner]:
//
//	runner := simulate.NewRunner(c, nil, logger)
//	opts := simulate.OptionsFromConfig(cfg)
//	opts.Formats = []string{simulate.FormatSVG}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package simulate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/cache"
	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/pool"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatText = "txt"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatJSON, FormatSVG, FormatText}

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON}

// MaxFrames bounds the number of passes a sweep may record.
const MaxFrames = 100_000

// LastFrame selects the final frame for SVG and text output.
const LastFrame = -1

// Options configures a simulation.
type Options struct {
	Config config.Config
	Script trace.Script

	// Render options
	Formats   []string
	Frame     int // frame drawn by svg and txt; LastFrame for the final one
	Filmstrip bool
	Zones     bool
	Labels    bool
	Scale     float64

	// Check verifies every recorded frame with [trace.Trace.Check].
	Check bool

	// Refresh bypasses cached traces.
	Refresh bool

	Logger *log.Logger
}

// OptionsFromConfig builds options with the config's script.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Config: cfg,
		Script: trace.Script{
			Deltas: cfg.Script.Deltas,
			Repeat: cfg.Script.Repeat,
			Sweep:  cfg.Script.Sweep,
		},
		Frame: LastFrame,
		Scale: 1,
	}
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := o.Script.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	o.Formats = formats
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Frame < LastFrame {
		return errors.New(errors.ErrCodeInvalidInput, "frame must be %d (last) or a frame index, got %d", LastFrame, o.Frame)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// TraceKeyOpts returns the cache key options for the recorded trace.
func (o Options) TraceKeyOpts() cache.TraceKeyOpts {
	vp := o.Config.ViewportSize()
	item := o.Config.ItemMeasurement()
	palette, _ := o.Config.Palette()
	return cache.TraceKeyOpts{
		Viewport:   [2]int{vp.Width, vp.Height},
		Items:      o.Config.Item.Count,
		ItemWidth:  item.Width,
		ItemHeight: item.Height,
		Margins:    [4]int{item.Margins.Left, item.Margins.Top, item.Margins.Right, item.Margins.Bottom},
		StackStep:  o.Config.Stack.Step.String(),
		Density:    float64(o.Config.Viewport.Density),
		ZoneDiv:    o.Config.Stack.ZoneDivisor,
		Palette:    slices.Clone(palette),
	}
}

// ArtifactKeyOpts returns the cache key options for one output format.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Frame:     o.Frame,
		Scale:     o.Scale,
		Zones:     o.Zones,
		Labels:    o.Labels,
		Filmstrip: o.Filmstrip,
	}
}

// Result is the output of [Runner.Execute].
type Result struct {
	Trace     *trace.Trace
	TraceHash string
	Summary   trace.Summary
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats are timing and size figures of a run.
type Stats struct {
	PlayTime   time.Duration
	RenderTime time.Duration
	Frames     int
	Pool       pool.Stats
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	TraceHit  bool
	RenderHit bool
}

// frameIndex resolves LastFrame against a trace.
func frameIndex(t *trace.Trace, frame int) int {
	if frame == LastFrame {
		return len(t.Frames) - 1
	}
	return frame
}

func wrapStage(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
