package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/units"
)

// deckFlags are the viewport and card overrides shared by layout, simulate
// and view. Only flags set on the command line replace config values.
type deckFlags struct {
	width       string
	height      string
	itemHeight  string
	count       int
	step        string
	density     float64
	zoneDivisor int
	palette     string
}

func (f *deckFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.width, "width", "", "viewport width (e.g. 360dp, 1080px)")
	fl.StringVar(&f.height, "height", "", "viewport height (e.g. 640dp)")
	fl.StringVar(&f.itemHeight, "item-height", "", "card height (e.g. 120dp)")
	fl.IntVarP(&f.count, "count", "n", 0, "number of cards")
	fl.StringVar(&f.step, "step", "", "pile offset between stacked cards (e.g. 20dp)")
	fl.Float64Var(&f.density, "density", 0, "pixels per dp")
	fl.IntVar(&f.zoneDivisor, "zone-divisor", 0, "viewport height divided by this gives the pile zone height")
	fl.StringVar(&f.palette, "palette", "", "card palette: material, muted")
}

// apply copies the flags the user set onto cfg and validates the result.
func (f *deckFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	lengths := []struct {
		name string
		val  string
		dst  *units.Length
	}{
		{"width", f.width, &cfg.Viewport.Width},
		{"height", f.height, &cfg.Viewport.Height},
		{"item-height", f.itemHeight, &cfg.Item.Height},
		{"step", f.step, &cfg.Stack.Step},
	}
	for _, l := range lengths {
		if !fl.Changed(l.name) {
			continue
		}
		v, err := units.Parse(l.val)
		if err != nil {
			return err
		}
		*l.dst = v
	}
	if fl.Changed("count") {
		cfg.Item.Count = f.count
	}
	if fl.Changed("density") {
		cfg.Viewport.Density = units.Density(f.density)
	}
	if fl.Changed("zone-divisor") {
		cfg.Stack.ZoneDivisor = f.zoneDivisor
	}
	if fl.Changed("palette") {
		cfg.Item.Palette = f.palette
		cfg.Item.Colors = nil
	}
	return cfg.Validate()
}
