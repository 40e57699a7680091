package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowing/internal/ui/theme"
)

const (
	barFilled = "█"
	barEmpty  = "░"
	minWidth  = 4
)

// ProgressBar displays a horizontal bar for a fraction in [0, 1]. Styled
// bars use theme colors.
type ProgressBar struct {
	Fraction float64
	Width    int
	Styled   bool
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(fraction float64, width int, styled bool) ProgressBar {
	return ProgressBar{
		Fraction: fraction,
		Width:    width,
		Styled:   styled,
	}
}

// Filled returns the number of filled cells.
func (p ProgressBar) Filled() int {
	width := max(p.Width, minWidth)
	filled := int(float64(width)*p.Fraction + 0.5)
	return min(max(filled, 0), width)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	width := max(p.Width, minWidth)
	filled := p.Filled()

	filledStr := strings.Repeat(barFilled, filled)
	emptyStr := strings.Repeat(barEmpty, width-filled)
	if !p.Styled {
		return filledStr + emptyStr
	}
	return lipgloss.NewStyle().Foreground(theme.Success).Render(filledStr) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(emptyStr)
}
