package render

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/carbocation/cytoheat/crosssection"
	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

type HeatmapOptions struct {
	// CellSize is the edge length of one cell in pixels. Defaults to 48.
	CellSize float64

	// Colormap overrides the default, which is Diverging for surfaces whose
	// metric is centred at zero and Sequential otherwise.
	Colormap *Colormap

	// Title defaults to a description of the surface.
	Title string

	// Annotate writes each cell's value inside it.
	Annotate bool
}

const (
	margin      = 12.0
	legendWidth = 16.0
	legendGap   = 24.0
	titleHeight = 28.0
)

// Title describes a surface, e.g. "mean where group = Sick".
func Title(s *crosssection.Surface) string {
	return fmt.Sprintf("%s where %s = %s", s.Metric, s.Fixed, s.Focused)
}

// Heatmap draws s as a PNG: rows top to bottom, columns left to right, with a
// colour bar on the right.
func Heatmap(w io.Writer, s *crosssection.Surface, opts HeatmapOptions) error {
	if len(s.RowLabels) == 0 || len(s.ColumnLabels) == 0 {
		return pfx.Err(fmt.Errorf("surface %s has no cells", Title(s)))
	}

	cell := opts.CellSize
	if cell <= 0 {
		cell = 48
	}
	title := opts.Title
	if title == "" {
		title = Title(s)
	}

	cmap := Sequential
	if s.Diverging() {
		cmap = Diverging
	}
	if opts.Colormap != nil {
		cmap = *opts.Colormap
	}

	min, max, ok := s.Bounds()
	if !ok {
		min, max = 0, 0
	}
	scale := NewScale(min, max, s.Diverging())

	// Measure labels with a scratch context so the canvas can be sized.
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(basicfont.Face7x13)
	rowLabelWidth := widest(measure, s.RowLabels)
	colLabelHeight := widest(measure, s.ColumnLabels)
	legendLabelWidth := widest(measure, []string{formatCell(scale.Min, s.Metric), formatCell(scale.Max, s.Metric)})

	left := margin + rowLabelWidth + margin
	top := margin + titleHeight + colLabelHeight + margin
	gridW := cell * float64(len(s.ColumnLabels))
	gridH := cell * float64(len(s.RowLabels))

	width := left + gridW + legendGap + legendWidth + margin + legendLabelWidth + margin
	height := top + gridH + margin

	dc := gg.NewContext(int(math.Ceil(width)), int(math.Ceil(height)))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, width/2, margin+titleHeight/2, 0.5, 0.5)

	for j, label := range s.ColumnLabels {
		x := left + cell*float64(j) + cell/2
		y := top - margin

		dc.Push()
		dc.RotateAbout(gg.Radians(-90), x, y)
		dc.DrawStringAnchored(label, x, y, 0, 0.5)
		dc.Pop()
	}

	for i, label := range s.RowLabels {
		y := top + cell*float64(i) + cell/2
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(label, left-margin, y, 1, 0.5)

		for j := range s.ColumnLabels {
			v := s.Values[i][j]
			x := left + cell*float64(j)

			fill := cmap.At(scale.Position(v))
			dc.DrawRectangle(x, top+cell*float64(i), cell, cell)
			dc.SetColor(fill)
			dc.Fill()

			if opts.Annotate {
				dc.SetColor(textColor(fill))
				dc.DrawStringAnchored(formatCell(v, s.Metric), x+cell/2, y, 0.5, 0.5)
			}
		}
	}

	drawLegend(dc, cmap, scale, s.Metric, left+gridW+legendGap, top, gridH)

	if err := png.Encode(w, dc.Image()); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func drawLegend(dc *gg.Context, cmap Colormap, scale Scale, metric crosssection.Metric, x, y, h float64) {
	steps := int(math.Max(h, 1))
	for k := 0; k < steps; k++ {
		// Top of the bar is the maximum.
		t := 1 - float64(k)/float64(steps)
		dc.DrawRectangle(x, y+float64(k), legendWidth, 1)
		dc.SetColor(cmap.At(t))
		dc.Fill()
	}

	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, legendWidth, h)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.DrawStringAnchored(formatCell(scale.Max, metric), x+legendWidth+margin/2, y, 0, 0.5)
	dc.DrawStringAnchored(formatCell(scale.Min, metric), x+legendWidth+margin/2, y+h, 0, 0.5)
}

func widest(dc *gg.Context, labels []string) float64 {
	w := 0.0
	for _, l := range labels {
		lw, _ := dc.MeasureString(l)
		w = math.Max(w, lw)
	}

	return w
}

func formatCell(v float64, metric crosssection.Metric) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	case metric == crosssection.MetricRank:
		return fmt.Sprintf("%.0f", v)
	}

	return fmt.Sprintf("%.2f", v)
}

// textColor picks black or white, whichever reads better on bg.
func textColor(bg color.RGBA) color.Color {
	luma := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luma > 140 {
		return color.Black
	}

	return color.White
}
