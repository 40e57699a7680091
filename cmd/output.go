package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"

	"github.com/abhisek/knowing/internal/spacedrep"
	"github.com/abhisek/knowing/internal/ui/components"
	"github.com/abhisek/knowing/internal/ui/theme"
)

// printer writes command output, styling it only for terminals.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) title(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(theme.Title, fmt.Sprintf(format, args...)))
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.style(theme.Label, fmt.Sprintf("%-14s", label)), p.style(theme.Value, value))
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

const barWidth = 20

func (p *printer) bar(fraction float64) string {
	return components.NewProgressBar(fraction, barWidth, p.color).View()
}

func (p *printer) outcome(correct bool) string {
	if correct {
		return p.style(theme.Correct, "correct")
	}
	return p.style(theme.Incorrect, "incorrect")
}

func (p *printer) status(st spacedrep.ReviewStatus) string {
	switch st {
	case spacedrep.ReviewDue:
		return p.style(theme.Due, string(st))
	case spacedrep.ReviewOverdue:
		return p.style(theme.Overdue, string(st))
	default:
		return string(st)
	}
}

// state prints the scheduling fields of a mastery state.
func (p *printer) state(s spacedrep.MasteryState, now time.Time) {
	p.field("repetition", fmt.Sprintf("%d", s.Repetition))
	p.field("interval", pluralDays(s.IntervalDays))
	p.field("ease factor", fmt.Sprintf("%.2f", s.EaseFactor))
	p.field("next review", fmt.Sprintf("%s (%s)", formatTime(s.NextReviewAt), relativeDue(s, now)))
	p.field("status", p.status(s.Status(now)))
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func relativeDue(s spacedrep.MasteryState, now time.Time) string {
	if s.IsDue(now) {
		overdue := int(spacedrep.OverdueDays(s.NextReviewAt, now))
		if overdue == 0 {
			return "due now"
		}
		return "due " + pluralDays(overdue) + " ago"
	}
	return "in " + pluralDays(s.DaysUntilReview(now))
}
