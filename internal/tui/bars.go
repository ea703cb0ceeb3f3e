package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"renewables/internal/core"
)

const barRune = "█"

// Bars draws rows as horizontal text bars, the longest spanning width cells.
// A positive value never rounds down to an invisible bar.
func Bars(rows []core.Row, width int) []string {
	if len(rows) == 0 {
		return nil
	}
	if width < 1 {
		width = 1
	}

	labelWidth := 0
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Category); n > labelWidth {
			labelWidth = n
		}
	}
	max := core.MaxValue(rows)

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		n := 0
		if max > 0 && r.Value > 0 {
			n = int(r.Value/max*float64(width) + 0.5)
			if n == 0 {
				n = 1
			}
		}
		bar := strings.Repeat(barRune, n)
		if n > 0 {
			bar += " "
		}
		out = append(out, fmt.Sprintf("%-*s %s%s", labelWidth, r.Category, bar, strconv.FormatFloat(r.Value, 'f', -1, 64)))
	}
	return out
}
