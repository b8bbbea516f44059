package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackscroll/pkg/simulate"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// viewChrome is the number of terminal rows used by the title and status lines.
const viewChrome = 4

var (
	viewCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Bold(true)
	viewEmptyStyle  = lipgloss.NewStyle().Foreground(colorFaint)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// viewCommand creates the interactive view command.
func (c *CLI) viewCommand() *cobra.Command {
	var flags deckFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Scroll the deck interactively in the terminal",
		Long: `Scroll the deck interactively in the terminal.

The simulated viewport is scaled to the terminal height. Cards are drawn in
their palette colour; piled cards overlap at the top and bottom edges.

Keys: j/k or arrows scroll a step, pgup/pgdn scroll a page, g/G jump to the
ends, t toggles the palette, r re-runs layout, q quits. The mouse wheel
scrolls too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			s, err := simulate.NewSession(cfg, c.Logger)
			if err != nil {
				return err
			}
			m, err := newViewModel(s)
			if err != nil {
				return err
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if vm, ok := final.(viewModel); ok && vm.err != nil {
				return vm.err
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// viewModel - Interactive deck viewer
// =============================================================================

// viewModel is the bubbletea model of the view command.
type viewModel struct {
	s     *simulate.Session
	frame trace.Frame
	rows  int
	width int
	err   error
}

func newViewModel(s *simulate.Session) (viewModel, error) {
	f, err := s.Layout()
	if err != nil {
		return viewModel{}, err
	}
	return viewModel{s: s, frame: f, rows: 24, width: 48}, nil
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "down", "j":
			m = m.scroll(m.lineStep())
		case "up", "k":
			m = m.scroll(-m.lineStep())
		case "pgdown", " ":
			m = m.scroll(m.pageStep())
		case "pgup":
			m = m.scroll(-m.pageStep())
		case "G", "end":
			m = m.scrollToEnd(1)
		case "g", "home":
			m = m.scrollToEnd(-1)
		case "t":
			m.s.Deck.Toggle()
			m.frame = m.snapshot()
		case "r":
			f, err := m.s.Layout()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			f.Seq = m.frame.Seq + 1
			m.frame = f
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m = m.scroll(m.lineStep())
		case tea.MouseButtonWheelUp:
			m = m.scroll(-m.lineStep())
		}
	case tea.WindowSizeMsg:
		m.rows = max(msg.Height-viewChrome, 4)
		m.width = max(min(msg.Width-2, 64), 16)
	}
	if m.err != nil {
		return m, tea.Quit
	}
	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("stackscroll"))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render("j/k scroll  pgup/pgdn page  g/G ends  t palette  r layout  q quit"))
	b.WriteString("\n")

	for _, line := range m.canvas() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	f := m.frame
	status := fmt.Sprintf("frame %d · %s · requested %d applied %d · anchor %d · piles %d/%d",
		f.Seq, f.State, f.Requested, f.Applied, f.Anchor, f.TopDepth, f.BottomDepth)
	b.WriteString(viewStatusStyle.Render(status))
	b.WriteString("\n")
	return b.String()
}

// pxPerRow is the number of viewport pixels one terminal row covers.
func (m viewModel) pxPerRow() int {
	h := m.s.Deck.Viewport().Height
	return max((h+m.rows-1)/m.rows, 1)
}

func (m viewModel) lineStep() int { return m.pxPerRow() }

// pageStep scrolls by the body between the two stack zones.
func (m viewModel) pageStep() int {
	z := m.s.Engine.Zones()
	return max(z.Bottom-z.Top, m.lineStep())
}

func (m viewModel) scroll(delta int) viewModel {
	f, err := m.s.Scroll(delta)
	if err != nil {
		m.err = err
		return m
	}
	f.Seq = m.frame.Seq + 1
	m.frame = f
	return m
}

// scrollToEnd pages in direction dir until a boundary stops the list.
func (m viewModel) scrollToEnd(dir int) viewModel {
	for range m.s.Deck.ItemCount() + 1 {
		m = m.scroll(dir * m.pageStep())
		if m.err != nil || m.frame.Applied == 0 {
			break
		}
	}
	return m
}

func (m viewModel) snapshot() trace.Frame {
	f := m.s.Snapshot()
	f.Seq = m.frame.Seq
	f.Kind = m.frame.Kind
	f.Requested = m.frame.Requested
	f.Applied = m.frame.Applied
	return f
}

// canvas paints the frame onto m.rows lines. Items are painted in index
// order, so within a pile the later card covers the earlier one.
func (m viewModel) canvas() []string {
	px := m.pxPerRow()
	lines := make([]string, m.rows)
	for i := range lines {
		lines[i] = viewEmptyStyle.Render(strings.Repeat("·", m.width))
	}
	for _, it := range m.frame.Items {
		first := it.Rect.Top / px
		last := (it.Rect.Bottom - 1) / px
		for r := max(first, 0); r <= last && r < m.rows; r++ {
			label := ""
			if r == max(first, 0) {
				label = fmt.Sprintf(" #%d", it.Index)
			}
			style := viewCardStyle.Width(m.width)
			if it.Color != "" {
				style = style.Background(lipgloss.Color(it.Color))
			}
			lines[r] = style.Render(label)
		}
	}
	return lines
}
