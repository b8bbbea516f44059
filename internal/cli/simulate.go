package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackscroll/pkg/simulate"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// defaultOutputBase names output files when --output is not given.
const defaultOutputBase = "stackscroll"

// simulateOpts holds the command-line options of the simulate command.
type simulateOpts struct {
	deck      deckFlags
	deltas    string
	sweep     int
	repeat    int
	formats   string
	output    string
	frame     int
	filmstrip bool
	zones     bool
	labels    bool
	scale     float64
	check     bool
	noCache   bool
	refresh   bool
}

// simulateCommand creates the simulate command for replaying scroll scripts.
func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOpts{frame: simulate.LastFrame, scale: 1}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scroll script and render the recorded frames",
		Long: `Replay a scroll script and render the recorded frames.

The deck is laid out once, then every delta of the script is applied as a
scroll pass. Without --deltas the list is swept to the end and back in steps
of --sweep pixels. Each pass is recorded as a frame.

Output formats:
  json  the full trace with a summary
  svg   one frame (--frame, default last) or every frame side by side (--filmstrip)
  txt   one frame as a table

Traces and renders are cached; --refresh re-plays the script and --no-cache
disables the cache entirely.`,
		Example: `  # Sweep the default deck and write stackscroll.json
  stackscroll simulate

  # Replay three deltas and draw the second frame with zone bands
  stackscroll simulate --deltas 50,200,-80 -f svg --frame 2 --zones -o frame.svg

  # Verify every frame of a sweep on a 2x screen
  stackscroll simulate --density 2 --sweep 24 --check -f txt -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd, &opts)
		},
	}

	opts.deck.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&opts.deltas, "deltas", "d", "", "scroll deltas in pixels (e.g. 50,-20,400)")
	fl.IntVar(&opts.sweep, "sweep", 0, "sweep step in pixels when no deltas are given")
	fl.IntVar(&opts.repeat, "repeat", 0, "number of times the script is played")
	fl.StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), svg, txt (comma-separated)")
	fl.StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	fl.IntVar(&opts.frame, "frame", simulate.LastFrame, "frame drawn by svg and txt (-1 for the last)")
	fl.BoolVar(&opts.filmstrip, "filmstrip", false, "draw every frame side by side in svg")
	fl.BoolVar(&opts.zones, "zones", false, "shade the stack zones in svg")
	fl.BoolVar(&opts.labels, "labels", false, "label cards with their index in svg")
	fl.Float64Var(&opts.scale, "scale", 1, "svg scale factor")
	fl.BoolVar(&opts.check, "check", false, "verify layout invariants on every frame")
	fl.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&opts.refresh, "refresh", false, "ignore cached traces")

	return cmd
}

func (c *CLI) runSimulate(cmd *cobra.Command, opts *simulateOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.deck.apply(cmd, &cfg); err != nil {
		return err
	}

	sopts := simulate.OptionsFromConfig(cfg)
	fl := cmd.Flags()
	if fl.Changed("deltas") {
		if sopts.Script.Deltas, err = trace.ParseDeltas(opts.deltas); err != nil {
			return err
		}
	}
	if fl.Changed("sweep") {
		sopts.Script.Sweep = opts.sweep
		if !fl.Changed("deltas") {
			sopts.Script.Deltas = nil
		}
	}
	if fl.Changed("repeat") {
		sopts.Script.Repeat = opts.repeat
	}
	sopts.Formats = parseFormats(opts.formats)
	sopts.Frame = opts.frame
	sopts.Filmstrip = opts.filmstrip
	sopts.Zones = opts.zones
	sopts.Labels = opts.labels
	sopts.Scale = opts.scale
	sopts.Check = opts.check
	sopts.Refresh = opts.refresh
	if err := sopts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "-" && len(sopts.Formats) > 1 {
		return fmt.Errorf("cannot write %d formats to stdout", len(sopts.Formats))
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, sopts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Played %d frames", result.Stats.Frames))

	if opts.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[sopts.Formats[0]])
		return err
	}

	paths, err := writeArtifacts(ctx, result.Artifacts, sopts.Formats, opts.output)
	if err != nil {
		return err
	}

	sum := result.Summary
	printSuccess("Simulated %d cards", result.Trace.Count)
	printStats(sum.Frames, sum.Applied, result.CacheInfo.TraceHit)
	if sum.Clamped > 0 {
		printDetail("%d passes stopped at a boundary", sum.Clamped)
	}
	if ps := result.Trace.Pool; ps != nil {
		printDetail("Pool: %d views created, %.0f%% reused, max %d active", ps.Created(), ps.HitRate()*100, sum.MaxActive)
	}
	for _, p := range paths {
		printFile(p)
	}
	if opts.check {
		printSuccess("All frames passed layout checks")
	}
	return nil
}

// parseFormats splits the --format flag. It defaults to json.
func parseFormats(s string) []string {
	if s == "" {
		return slices.Clone(simulate.DefaultFormats)
	}
	return strings.Split(s, ",")
}

// basePath strips a known format extension from output, or returns the
// default base name when output is empty.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if slices.Contains(simulate.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for format. A single format is written to
// output verbatim when it is set.
func outputPath(output, format string, formats int) string {
	if output != "" && formats == 1 {
		return output
	}
	return basePath(output) + "." + format
}

// writeArtifacts writes each rendered format and returns the paths written.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	logger := loggerFromContext(ctx)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(output, format, len(formats))
		if err := writeFile(path, artifacts[format]); err != nil {
			return nil, err
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(artifacts[format]))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
