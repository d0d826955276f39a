package ui

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines the color tokens used across widgets and text tags.
type Theme struct {
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color

	TableHeader   tcell.Color
	TableHeaderBg tcell.Color
	TableRow      tcell.Color

	PriorityCritical tcell.Color
	PriorityHigh     tcell.Color
	PriorityMedium   tcell.Color
	PriorityLow      tcell.Color

	// Text tag colors for tview dynamic color markup
	TagMuted            string
	TagSuccess          string
	TagWarning          string
	TagError            string
	TagPriorityCritical string
	TagPriorityHigh     string
	TagPriorityMedium   string
	TagPriorityLow      string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),

		TableHeader:   hex("#eab308"),
		TableHeaderBg: hex("#1a2332"),
		TableRow:      hex("#e6edf3"),

		PriorityCritical: hex("#ff5f5f"),
		PriorityHigh:     hex("#ffaf5f"),
		PriorityMedium:   hex("#ffd75f"),
		PriorityLow:      hex("#87ffaf"),

		TagMuted:            "#8a939f",
		TagSuccess:          "#22c55e",
		TagWarning:          "#f59e0b",
		TagError:            "#ef4444",
		TagPriorityCritical: "#ff5f5f",
		TagPriorityHigh:     "#ffaf5f",
		TagPriorityMedium:   "#ffd75f",
		TagPriorityLow:      "#87ffaf",
	}
}

func themeHighContrast() Theme {
	return Theme{
		Bg:          hex("#000000"),
		Surface:     hex("#000000"),
		Border:      hex("#ffffff"),
		FocusBorder: hex("#ffff00"),
		SelectionBg: hex("#ffffff"),
		SelectionFg: hex("#000000"),
		TextPrimary: hex("#ffffff"),
		TextMuted:   hex("#cccccc"),

		TableHeader:   hex("#ffffff"),
		TableHeaderBg: hex("#000000"),
		TableRow:      hex("#ffffff"),

		PriorityCritical: hex("#ff0000"),
		PriorityHigh:     hex("#ff8800"),
		PriorityMedium:   hex("#ffff00"),
		PriorityLow:      hex("#00ff00"),

		TagMuted:            "#cccccc",
		TagSuccess:          "#00ff00",
		TagWarning:          "#ffff00",
		TagError:            "#ff0000",
		TagPriorityCritical: "#ff0000",
		TagPriorityHigh:     "#ff8800",
		TagPriorityMedium:   "#ffff00",
		TagPriorityLow:      "#00ff00",
	}
}

func detectTrueColor() bool {
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "truecolor") || strings.Contains(term, "256color")
}

// priorityTag returns the markup color tag for a priority value.
func (t Theme) priorityTag(p string) string {
	switch p {
	case "critical":
		return t.TagPriorityCritical
	case "high":
		return t.TagPriorityHigh
	case "medium":
		return t.TagPriorityMedium
	default:
		return t.TagPriorityLow
	}
}
