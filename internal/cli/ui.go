package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorCmd    = lipgloss.Color("75")  // light blue
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorBright)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
)

// =============================================================================
// Status Lines
// =============================================================================

// status is the leading marker of a one-line message.
type status struct {
	icon  string
	style lipgloss.Style
	body  func(string) string // nil leaves the message unstyled
}

var (
	statusOK   = status{icon: "✓", style: StyleSuccess}
	statusFail = status{icon: "✗", style: lipgloss.NewStyle().Foreground(colorFail)}
	statusWarn = status{icon: "!", style: StyleWarning, body: func(s string) string { return StyleWarning.Render(s) }}
	statusInfo = status{icon: "›", style: lipgloss.NewStyle().Foreground(colorMuted)}
)

func (s status) line(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if s.body != nil {
		msg = s.body(msg)
	}
	return s.style.Render(s.icon) + " " + msg
}

func printSuccess(format string, args ...any) { fmt.Println(statusOK.line(format, args...)) }
func printError(format string, args ...any)   { fmt.Println(statusFail.line(format, args...)) }
func printWarning(format string, args ...any) { fmt.Println(statusWarn.line(format, args...)) }
func printInfo(format string, args ...any)    { fmt.Println(statusInfo.line(format, args...)) }

// printDetail prints an indented secondary line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }

// =============================================================================
// Simulation Summary
// =============================================================================

// statsLine joins the non-zero counters of a run with the cache origin,
// e.g. "12 frames · 480px travel · cached".
func statsLine(frames, travel int, cached bool) string {
	var parts []string
	if frames > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d frames", frames)))
	}
	if travel > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%dpx travel", travel)))
	}
	if cached {
		parts = append(parts, StyleSuccess.Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorMuted).Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(frames, travel int, cached bool) {
	fmt.Println(statsLine(frames, travel, cached))
}
