// Package config loads stackscroll settings from TOML.
//
// Loading starts from [Default], decodes the file over it, and validates the
// result, so a config file only needs the keys it changes:
//
//	[viewport]
//	height = "720dp"
//	density = 2.0
//
//	[stack]
//	step = "24dp"
//
// Lengths are strings with a unit ("20dp", "1080px"); bare numbers are
// pixels. Unknown keys are rejected.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackscroll/pkg/cards"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/units"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// MaxItemCount caps item.count and any count set on a live session.
const MaxItemCount = 1_000_000

// Palette names accepted by ItemConfig.Palette.
const (
	PaletteMaterial = "material"
	PaletteMuted    = "muted"
)

// Config is the full application configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Item     ItemConfig     `toml:"item"`
	Stack    StackConfig    `toml:"stack"`
	Script   ScriptConfig   `toml:"script"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// ViewportConfig is the simulated screen.
type ViewportConfig struct {
	Width   units.Length  `toml:"width"`
	Height  units.Length  `toml:"height"`
	Density units.Density `toml:"density"`
}

// ItemConfig describes the cards in the list.
type ItemConfig struct {
	Width   units.Length `toml:"width"`
	Height  units.Length `toml:"height"`
	Margins MarginConfig `toml:"margins"`
	Count   int          `toml:"count"`
	Palette string       `toml:"palette"`
	Colors  []string     `toml:"colors"`
}

// MarginConfig holds per-side item margins.
type MarginConfig struct {
	Left   units.Length `toml:"left"`
	Top    units.Length `toml:"top"`
	Right  units.Length `toml:"right"`
	Bottom units.Length `toml:"bottom"`
}

// StackConfig tunes the edge piles.
type StackConfig struct {
	Step        units.Length `toml:"step"`
	ZoneDivisor int          `toml:"zone_divisor"`
}

// ScriptConfig is the scroll script replayed by simulate. With no deltas a
// sweep to the end and back is generated using Sweep as the step.
type ScriptConfig struct {
	Deltas []int `toml:"deltas"`
	Repeat int   `toml:"repeat"`
	Sweep  int   `toml:"sweep"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	URL     string   `toml:"url"`
	Prefix  string   `toml:"prefix"`
	TTL     Duration `toml:"ttl"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	SessionTTL  Duration `toml:"session_ttl"`
	MaxSessions int      `toml:"max_sessions"`
}

// Duration is a time.Duration written as a string ("30m") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration: a 360x640dp phone screen
// with 120dp cards and 20dp pile steps.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{
			Width:   units.DpOf(360),
			Height:  units.DpOf(640),
			Density: units.DefaultDensity,
		},
		Item: ItemConfig{
			Width:  units.DpOf(328),
			Height: units.DpOf(120),
			Margins: MarginConfig{
				Left:   units.DpOf(16),
				Top:    units.DpOf(8),
				Right:  units.DpOf(16),
				Bottom: units.DpOf(8),
			},
			Count:   50,
			Palette: PaletteMaterial,
		},
		Stack: StackConfig{
			Step:        stack.DefaultStackStep,
			ZoneDivisor: stack.DefaultZoneDivisor,
		},
		Script: ScriptConfig{
			Repeat: 1,
			Sweep:  48,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  "stackscroll:",
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  Duration{30 * time.Minute},
			MaxSessions: 256,
		},
	}
}

// Load reads and validates a TOML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes and validates TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Viewport.Density <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.density must be positive, got %v", c.Viewport.Density)
	}
	vp := c.ViewportSize()
	if vp.Width <= 0 || vp.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must be at least 1x1px, got %dx%d", vp.Width, vp.Height)
	}

	item := c.ItemMeasurement()
	if item.Width <= 0 || item.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "item must be at least 1x1px, got %dx%d", item.Width, item.Height)
	}
	if c.Item.Count < 0 || c.Item.Count > MaxItemCount {
		return errors.New(errors.ErrCodeInvalidConfig, "item.count must be between 0 and %d, got %d", MaxItemCount, c.Item.Count)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}

	step := c.StackStepPx()
	if step <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "stack.step must resolve to at least 1px, got %s", c.Stack.Step)
	}
	if step >= item.Height {
		return errors.New(errors.ErrCodeInvalidConfig, "stack.step (%dpx) must be smaller than item.height (%dpx)", step, item.Height)
	}
	if c.Stack.ZoneDivisor < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "stack.zone_divisor must be at least 2, got %d", c.Stack.ZoneDivisor)
	}
	if edge := vp.Height / c.Stack.ZoneDivisor; item.Margins.Top >= edge {
		return errors.New(errors.ErrCodeInvalidConfig, "item.margins.top (%dpx) must be less than the stack zone height (%dpx)", item.Margins.Top, edge)
	}

	if c.Script.Repeat < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "script.repeat must be at least 1, got %d", c.Script.Repeat)
	}
	if len(c.Script.Deltas) == 0 && c.Script.Sweep <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "script needs deltas or a positive sweep")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q (expected none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}

	if c.Server.MaxSessions < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_sessions must be at least 1, got %d", c.Server.MaxSessions)
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	return nil
}

// ViewportSize resolves the viewport to pixels.
func (c Config) ViewportSize() stack.Size {
	d := c.Viewport.Density
	return stack.Size{Width: c.Viewport.Width.Px(d), Height: c.Viewport.Height.Px(d)}
}

// ItemMeasurement resolves the card size and margins to pixels.
func (c Config) ItemMeasurement() stack.Measurement {
	d := c.Viewport.Density
	m := c.Item.Margins
	return stack.Measurement{
		Width:  c.Item.Width.Px(d),
		Height: c.Item.Height.Px(d),
		Margins: stack.Margins{
			Left:   m.Left.Px(d),
			Top:    m.Top.Px(d),
			Right:  m.Right.Px(d),
			Bottom: m.Bottom.Px(d),
		},
	}
}

// StackStepPx resolves the pile step to pixels.
func (c Config) StackStepPx() int {
	return c.Stack.Step.Px(c.Viewport.Density)
}

// Palette returns the card colours: Item.Colors when set, otherwise the
// named palette.
func (c Config) Palette() ([]string, error) {
	if len(c.Item.Colors) > 0 {
		for _, col := range c.Item.Colors {
			if err := errors.ValidateHexColor(col); err != nil {
				return nil, err
			}
		}
		return c.Item.Colors, nil
	}
	switch strings.ToLower(c.Item.Palette) {
	case "", PaletteMaterial:
		return cards.Material, nil
	case PaletteMuted:
		return cards.Muted, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown item.palette %q (expected material or muted)", c.Item.Palette)
	}
}

// EngineOptions returns the stack options described by the config.
func (c Config) EngineOptions() []stack.Option {
	return []stack.Option{
		stack.WithStackStep(c.Stack.Step),
		stack.WithDensity(c.Viewport.Density),
		stack.WithZoneDivisor(c.Stack.ZoneDivisor),
	}
}

// DeckOptions returns the card deck options described by the config. The
// config must be valid.
func (c Config) DeckOptions() cards.Options {
	palette, _ := c.Palette()
	return cards.Options{
		Palette:  palette,
		Count:    c.Item.Count,
		Item:     c.ItemMeasurement(),
		Viewport: c.ViewportSize(),
	}
}
