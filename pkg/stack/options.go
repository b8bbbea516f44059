package stack

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/units"
)

// DefaultStackStep is the spacing between pile members.
var DefaultStackStep = units.MustParse("20dp")

// Option configures an [Engine].
type Option func(*config)

type config struct {
	step    units.Length
	density units.Density
	divisor int
	logger  *log.Logger
}

func defaultConfig() config {
	return config{
		step:    DefaultStackStep,
		density: units.DefaultDensity,
		divisor: DefaultZoneDivisor,
		logger:  log.New(io.Discard),
	}
}

// WithStackStep sets the spacing between pile members.
func WithStackStep(l units.Length) Option { return func(c *config) { c.step = l } }

// WithDensity sets the pixels-per-dp used to resolve dp lengths.
func WithDensity(d units.Density) Option { return func(c *config) { c.density = d } }

// WithZoneDivisor sets the fraction of the viewport height used by each
// stack zone: each zone is height/n pixels tall.
func WithZoneDivisor(n int) Option { return func(c *config) { c.divisor = n } }

// WithLogger sets the logger used for per-pass debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
