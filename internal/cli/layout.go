package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackscroll/pkg/simulate"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// layoutCommand creates the layout command for inspecting a single frame.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  deckFlags
		deltas string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out the deck and print the materialized cards",
		Long: `Lay out the deck and print the materialized cards.

Runs one layout pass, then applies the --scroll deltas in order, and prints
the final frame: every card the engine holds, with its rectangle and the
zone its top falls in.`,
		Example: `  # Initial layout with the default 360x640dp viewport
  stackscroll layout

  # Scroll down 300px in three steps on a 2x screen
  stackscroll layout --density 2 --scroll 100,100,100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			steps, err := trace.ParseDeltas(deltas)
			if err != nil {
				return err
			}

			s, err := simulate.NewSession(cfg, c.Logger)
			if err != nil {
				return err
			}
			f, err := s.Layout()
			if err != nil {
				return err
			}
			for _, d := range steps {
				if f, err = s.Scroll(d); err != nil {
					return err
				}
				c.Logger.Debug("Scrolled", "requested", d, "applied", f.Applied, "state", f.State)
			}

			g := s.Engine.Geometry()
			z := s.Engine.Zones()
			vp := s.Deck.Viewport()
			printKeyValue("Viewport", fmt.Sprintf("%dx%d px", vp.Width, vp.Height))
			printKeyValue("Cards", fmt.Sprintf("%d (pitch %dpx)", s.Deck.ItemCount(), g.Pitch()))
			printKeyValue("Zones", fmt.Sprintf("top < %d, bottom >= %d", z.Top, z.Bottom))
			printKeyValue("Piles", fmt.Sprintf("top %d, bottom %d, max %d", f.TopDepth, f.BottomDepth, g.MaxDepth))
			printKeyValue("State", f.State)
			printNewline()
			fmt.Println(frameTable(f))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&deltas, "scroll", "", "scroll deltas applied after layout (e.g. 50,-20)")

	return cmd
}

// frameTable renders the items of f as a table with a colour swatch.
func frameTable(f trace.Frame) string {
	rows := make([][]string, len(f.Items))
	for i, it := range f.Items {
		marker := ""
		if it.Index == f.Anchor {
			marker = "anchor"
		}
		rows[i] = []string{
			strconv.Itoa(it.Index),
			strconv.Itoa(it.Rect.Top),
			strconv.Itoa(it.Rect.Bottom),
			string(it.Zone),
			it.Color,
			marker,
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "TOP", "BOTTOM", "ZONE", "COLOR", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			it := f.Items[row]
			switch col {
			case 3:
				if it.Zone != trace.ZoneBody {
					return cellStyle.Foreground(colorWarn)
				}
				return cellStyle.Foreground(colorMuted)
			case 4:
				if it.Color != "" {
					return cellStyle.Foreground(lipgloss.Color(it.Color))
				}
			case 5:
				return cellStyle.Foreground(colorOK)
			}
			return cellStyle
		}).
		String()
}
