// Package chart lays out the weekly intake bar chart. It computes canvas
// coordinates only; drawing is left to the client.
package chart

import (
	"strconv"

	"proteinbuddy/internal/models"
)

// Canvas size and bar spacing in pixels
const (
	Width  = 240
	Height = 350

	// YStretch is the bar height per 10 g of protein
	YStretch = 15
	// YGap separates the x axis from the bottom edge
	YGap = 20
	// XStretch is the spacing between bars
	XStretch = 10
	// BarWidth is the width of each bar
	BarWidth = 20
	// XGap separates the first bar from the left edge
	XGap = 20
)

// Bar is one day's rectangle. (X0, Y0) is the top left corner and (X1, Y1)
// the bottom right. The value label is anchored at its bottom left on
// (LabelX, LabelY).
type Bar struct {
	Day    models.Day `json:"day"`
	Value  float64    `json:"value"`
	X0     float64    `json:"x0"`
	Y0     float64    `json:"y0"`
	X1     float64    `json:"x1"`
	Y1     float64    `json:"y1"`
	LabelX float64    `json:"label_x"`
	LabelY float64    `json:"label_y"`
	Label  string     `json:"label"`
}

// Layout is a full chart ready to draw
type Layout struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Bars   []Bar `json:"bars"`
}

// WeekLayout places one bar per value. first is the day of values[0]; later
// values are the following days.
func WeekLayout(first models.Day, values []float64) Layout {
	bars := make([]Bar, len(values))
	for i, v := range values {
		x0 := float64(i*XStretch + i*BarWidth + XGap)
		y0 := Height - (v/10*YStretch + YGap)
		bars[i] = Bar{
			Day:    first.AddDays(i),
			Value:  v,
			X0:     x0,
			Y0:     y0,
			X1:     x0 + BarWidth,
			Y1:     Height - YGap,
			LabelX: x0 + 2,
			LabelY: y0,
			Label:  strconv.FormatFloat(v, 'f', -1, 64),
		}
	}
	return Layout{Width: Width, Height: Height, Bars: bars}
}
