package main

import (
	"image"
	"io"
	"sort"

	gg "github.com/fogleman/gg"
)

const (
	timelineRow    = 18 // pixels per thread
	timelineLabel  = 90 // width of the name column
	timelineMaxPix = 1600
)

// RenderTimeline draws one row per thread and marks every tick the thread
// held the processor. trace is Kernel.Trace, threads its Stats.
func RenderTimeline(trace []int, threads []ThreadStats) image.Image {
	ids := make([]int, 0, len(threads))
	names := map[int]string{}
	for _, s := range threads {
		ids = append(ids, s.ID)
		names[s.ID] = s.Name
	}
	sort.Ints(ids)
	row := map[int]int{}
	for i, id := range ids {
		row[id] = i
	}

	cell := 4.0
	if n := len(trace); n > 0 && float64(n)*cell > timelineMaxPix {
		cell = float64(timelineMaxPix) / float64(n)
	}
	w := timelineLabel + int(float64(len(trace))*cell) + 10
	h := timelineRow*len(ids) + 10
	if h < timelineRow {
		h = timelineRow
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	for i, id := range ids {
		y := float64(5 + i*timelineRow)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawRectangle(timelineLabel, y, float64(w-timelineLabel-10), timelineRow-2)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(names[id], 4, y+timelineRow/2, 0, 0.5)
	}
	for tick, id := range trace {
		i, ok := row[id]
		if !ok {
			continue
		}
		r, g, b := threadColor(id)
		dc.SetRGB(r, g, b)
		dc.DrawRectangle(timelineLabel+float64(tick)*cell, float64(5+i*timelineRow), cell, timelineRow-2)
		dc.Fill()
	}
	return dc.Image()
}

func threadColor(id int) (float64, float64, float64) {
	palette := [][3]float64{
		{0.60, 0.60, 0.60}, // idle
		{0.12, 0.47, 0.71},
		{1.00, 0.50, 0.05},
		{0.17, 0.63, 0.17},
		{0.84, 0.15, 0.16},
		{0.58, 0.40, 0.74},
		{0.55, 0.34, 0.29},
	}
	if id <= 0 {
		c := palette[0]
		return c[0], c[1], c[2]
	}
	c := palette[1+(id-1)%(len(palette)-1)]
	return c[0], c[1], c[2]
}

// SaveTimeline writes the timeline of k as a PNG file
func SaveTimeline(k *Kernel, path string) error {
	dc := gg.NewContextForImage(RenderTimeline(k.Trace(), k.Stats()))
	return dc.SavePNG(path)
}

// EncodeTimeline writes the timeline of k as PNG to w
func EncodeTimeline(k *Kernel, w io.Writer) error {
	dc := gg.NewContextForImage(RenderTimeline(k.Trace(), k.Stats()))
	return dc.EncodePNG(w)
}
