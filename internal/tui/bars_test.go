package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"renewables/internal/core"
)

func TestBarsScaleToLargestValue(t *testing.T) {
	rows := []core.Row{{Category: "A", Value: 10}, {Category: "Bb", Value: 5}}

	got := Bars(rows, 10)

	assert.Equal(t, []string{
		"A  ██████████ 10",
		"Bb █████ 5",
	}, got)
}

func TestBarsTinyValueStillVisible(t *testing.T) {
	rows := []core.Row{{Category: "big", Value: 1000}, {Category: "tiny", Value: 0.5}}

	got := Bars(rows, 10)

	assert.Equal(t, "tiny █ 0.5", got[1])
}

func TestBarsZeroAndNegative(t *testing.T) {
	rows := []core.Row{{Category: "a", Value: 4}, {Category: "z", Value: 0}, {Category: "n", Value: -2}}

	got := Bars(rows, 4)

	assert.Equal(t, []string{"a ████ 4", "z 0", "n -2"}, got)
}

func TestBarsEmpty(t *testing.T) {
	assert.Nil(t, Bars(nil, 10))
	assert.Nil(t, Bars([]core.Row{}, 10))
}
