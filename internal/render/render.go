// Package render formats calculation results and the preset list for the
// terminal using lipgloss.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/presets"
)

// Ratio formats a compression ratio as "7.43:1", using the shortest
// representation of the already-rounded value.
func Ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + ":1"
}

// Result renders a boxed summary of res: the ratio, the method line, the
// intermediate values and any clamp warnings.
func Result(res dcr.Result) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dynamic Compression Ratio"))
	b.WriteString("\n")
	b.WriteString(StyleRatio.Render(Ratio(res.DCR)))
	b.WriteString("\n")
	b.WriteString(StyleMethod.Render(res.Method))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Rod length (mm)", fmt.Sprintf("%.2f", res.RodLengthMM)},
		{"Ramp (deg)", fmt.Sprintf("%.1f", res.RampDegrees)},
		{"IVC (deg ABDC)", fmt.Sprintf("%.1f", res.IVCAngleABDC)},
		{"Effective stroke ratio", fmt.Sprintf("%.4f", res.EffectiveStrokeRatio)},
	}
	for i, r := range rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, StyleLabel.Render(r[0]), r[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	for _, d := range res.Diagnostics {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("warning: " + d.Message))
	}

	return StyleBox.Render(b.String())
}

// Presets renders the preset list as a table.
func Presets(list []presets.Preset) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers("NAME", "DUR@050", "LSA", "ADVERTISED", "ADVANCE", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTableHeader
			}
			return StyleTableCell
		})

	for _, p := range list {
		t.Row(
			p.Name,
			num(p.IntakeDurationAt050),
			num(p.LobeSeparation),
			optional(p.AdvertisedDuration),
			optional(p.CamAdvance),
			p.Description,
		)
	}
	return t.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v float64) string {
	if v == 0 {
		return "-"
	}
	return num(v)
}
