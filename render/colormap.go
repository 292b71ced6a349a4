// Package render draws surfaces as heatmaps and results as ranked bar charts.
package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/icza/gox/imagex/colorx"
)

// Colormap interpolates linearly from Low through Mid to High.
type Colormap struct {
	Low, Mid, High color.RGBA
}

var (
	// Diverging approximates matplotlib's coolwarm, for scales centred at 0.
	Diverging = mustColormap("#3b4cc0,#dddddd,#b40426")

	// Sequential runs from pale yellow to dark blue.
	Sequential = mustColormap("#ffffd9,#41b6c4,#081d58")

	// MissingColor fills cells without data.
	MissingColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

func mustColormap(colours string) Colormap {
	c, err := ParseColormap(colours)
	if err != nil {
		panic(err)
	}

	return c
}

// ParseColormap reads two or three comma-separated hex colours, such as
// "#3b4cc0,#dddddd,#b40426". With two colours the midpoint is their blend.
func ParseColormap(colours string) (Colormap, error) {
	parts := strings.Split(colours, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return Colormap{}, fmt.Errorf("colormap %q: expected 2 or 3 colours, got %d", colours, len(parts))
	}

	colors := make([]color.RGBA, 0, len(parts))
	for _, p := range parts {
		c, err := colorx.ParseHexColor(strings.TrimSpace(p))
		if err != nil {
			return Colormap{}, fmt.Errorf("colormap %q: %w", colours, err)
		}
		colors = append(colors, c)
	}

	if len(colors) == 2 {
		return Colormap{Low: colors[0], Mid: lerp(colors[0], colors[1], 0.5), High: colors[1]}, nil
	}

	return Colormap{Low: colors[0], Mid: colors[1], High: colors[2]}, nil
}

// At returns the colour at position t, clamped to [0, 1].
func (c Colormap) At(t float64) color.RGBA {
	switch {
	case math.IsNaN(t):
		return MissingColor
	case t <= 0:
		return c.Low
	case t >= 1:
		return c.High
	case t < 0.5:
		return lerp(c.Low, c.Mid, t*2)
	}

	return lerp(c.Mid, c.High, (t-0.5)*2)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}

	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Scale maps values onto [0, 1] for a Colormap.
type Scale struct {
	Min, Max  float64
	Diverging bool
}

// NewScale spans [min, max]. A diverging scale is widened to be symmetric
// about zero, so that zero always maps to the midpoint.
func NewScale(min, max float64, diverging bool) Scale {
	if diverging {
		m := math.Max(math.Abs(min), math.Abs(max))
		return Scale{Min: -m, Max: m, Diverging: true}
	}

	return Scale{Min: min, Max: max}
}

// Position maps v onto [0, 1]. Infinities saturate and NaN stays NaN.
func (s Scale) Position(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return math.NaN()
	case math.IsInf(v, 1):
		return 1
	case math.IsInf(v, -1):
		return 0
	case s.Max == s.Min:
		return 0.5
	}

	return (v - s.Min) / (s.Max - s.Min)
}
