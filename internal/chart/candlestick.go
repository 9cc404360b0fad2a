// Package chart renders candlestick charts with a volume subpanel as PNG.
package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"stockanalyzer/internal/model"
)

// Settings controls chart styling, taken from the chart_settings config block.
type Settings struct {
	UpColor    string
	DownColor  string
	Background string
	DPI        int
}

const (
	baseWidth  = 1200
	baseHeight = 800

	gridColor = "#404040"
	textColor = "#ffffff"
)

// Render draws the price candles over a volume panel (2:1 ratio) and writes
// the result to path. DPI scales the raster around a 100-dpi base canvas.
func Render(bars []model.Bar, ticker, path string, s Settings) error {
	if len(bars) == 0 {
		return errors.New("no bars to plot")
	}

	scale := float64(s.DPI) / 100
	if scale < 1 {
		scale = 1
	}
	if scale > 4 {
		scale = 4
	}
	w := int(baseWidth * scale)
	h := int(baseHeight * scale)

	dc := gg.NewContext(w, h)
	dc.SetHexColor(s.Background)
	dc.Clear()

	left := 90 * scale
	right := 30 * scale
	top := 60 * scale
	bottom := 50 * scale
	gap := 25 * scale

	plotW := float64(w) - left - right
	plotH := float64(h) - top - bottom - gap
	priceH := plotH * 2 / 3
	volH := plotH - priceH
	priceTop := top
	volTop := top + priceH + gap

	// Price scale with 2% padding
	lo, hi := math.Inf(1), math.Inf(-1)
	volMax := 0.0
	for _, b := range bars {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
		if b.Volume > volMax {
			volMax = b.Volume
		}
	}
	pad := (hi - lo) * 0.02
	if pad == 0 {
		pad = hi * 0.02
	}
	lo -= pad
	hi += pad
	if volMax == 0 {
		volMax = 1
	}

	priceY := func(p float64) float64 {
		return priceTop + priceH*(1-(p-lo)/(hi-lo))
	}
	volY := func(v float64) float64 {
		return volTop + volH*(1-v/volMax)
	}

	drawGrid(dc, left, plotW, priceTop, priceH, scale, 6, func(frac float64) string {
		return fmt.Sprintf("%.2f", lo+(hi-lo)*frac)
	})
	drawGrid(dc, left, plotW, volTop, volH, scale, 3, func(frac float64) string {
		return fmt.Sprintf("%.0f", volMax*frac)
	})

	// Date ticks along the bottom
	dc.SetHexColor(textColor)
	ticks := 6
	if len(bars) < ticks {
		ticks = len(bars)
	}
	for i := 0; i < ticks; i++ {
		idx := i * (len(bars) - 1) / max(ticks-1, 1)
		x := left + plotW*(float64(idx)+0.5)/float64(len(bars))
		label := bars[idx].Time.Format("2006-01-02")
		dc.DrawStringAnchored(label, x, float64(h)-bottom+15*scale, 0.5, 0.5)
	}

	// Candles and volume bars
	cw := plotW / float64(len(bars))
	bodyW := cw * 0.7
	if bodyW < 1 {
		bodyW = 1
	}
	for i, b := range bars {
		x := left + cw*(float64(i)+0.5)

		color := s.UpColor
		if b.Close < b.Open {
			color = s.DownColor
		}
		dc.SetHexColor(color)

		// Wick
		dc.SetLineWidth(1 * scale)
		dc.DrawLine(x, priceY(b.High), x, priceY(b.Low))
		dc.Stroke()

		// Body
		yOpen, yClose := priceY(b.Open), priceY(b.Close)
		yTop := math.Min(yOpen, yClose)
		bodyH := math.Abs(yOpen - yClose)
		if bodyH < 1 {
			bodyH = 1
		}
		dc.DrawRectangle(x-bodyW/2, yTop, bodyW, bodyH)
		dc.Fill()

		// Volume
		dc.DrawRectangle(x-bodyW/2, volY(b.Volume), bodyW, volTop+volH-volY(b.Volume))
		dc.Fill()
	}

	// Panel frames
	dc.SetHexColor(textColor)
	dc.SetLineWidth(1 * scale)
	dc.DrawRectangle(left, priceTop, plotW, priceH)
	dc.Stroke()
	dc.DrawRectangle(left, volTop, plotW, volH)
	dc.Stroke()

	dc.DrawStringAnchored(fmt.Sprintf("%s Stock Analysis", ticker), left+plotW/2, top/2, 0.5, 0.5)

	return dc.SavePNG(path)
}

// drawGrid draws dotted horizontal gridlines with labels on the left edge.
func drawGrid(dc *gg.Context, left, plotW, top, height, scale float64, lines int, label func(frac float64) string) {
	for i := 0; i <= lines; i++ {
		frac := float64(i) / float64(lines)
		y := top + height*(1-frac)

		dc.SetHexColor(gridColor)
		dc.SetLineWidth(1)
		dc.SetDash(2*scale, 4*scale)
		dc.DrawLine(left, y, left+plotW, y)
		dc.Stroke()
		dc.SetDash()

		dc.SetHexColor(textColor)
		dc.DrawStringAnchored(label(frac), left-8*scale, y, 1, 0.5)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
