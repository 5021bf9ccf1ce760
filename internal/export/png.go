// Package export produces the downloadable artifacts of a roadmap
// detail view: a PNG raster of the flowchart canvas and a steps
// document synthesized from already-fetched data.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/terra-clan/roadmap-engine/internal/canvas"
	"github.com/terra-clan/roadmap-engine/internal/models"
)

const (
	nodeWidth  = 180
	nodeHeight = 72
	cellGapX   = 60
	cellGapY   = 48
	margin     = 40
	borderPx   = 3
	barHeight  = 6
)

// PNGCanvas rasterizes a flowchart to a PNG image. Nodes are laid out
// on a grid in insertion order; edges are straight connectors between
// node centers.
type PNGCanvas struct {
	Background color.Color
}

// NewPNGCanvas creates a rasterizer with the default light background
func NewPNGCanvas() *PNGCanvas {
	return &PNGCanvas{Background: color.RGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}}
}

// Render implements canvas.Canvas
func (c *PNGCanvas) Render(views []canvas.NodeView, edges []models.FlowEdge) ([]byte, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("export: nothing to render")
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(views)))))
	rows := (len(views) + cols - 1) / cols

	width := margin*2 + cols*nodeWidth + (cols-1)*cellGapX
	height := margin*2 + rows*nodeHeight + (rows-1)*cellGapY

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	// Node centers, for edge endpoints
	centers := make(map[string]image.Point, len(views))
	boxes := make([]image.Rectangle, len(views))
	for i := range views {
		col := i % cols
		row := i / cols
		x := margin + col*(nodeWidth+cellGapX)
		y := margin + row*(nodeHeight+cellGapY)
		boxes[i] = image.Rect(x, y, x+nodeWidth, y+nodeHeight)
		centers[views[i].ID] = image.Pt(x+nodeWidth/2, y+nodeHeight/2)
	}

	// Edges beneath nodes
	edgeColor := color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	for _, e := range edges {
		from, ok := centers[e.Source]
		if !ok {
			continue
		}
		to, ok := centers[e.Target]
		if !ok {
			continue
		}
		drawLine(img, from, to, edgeColor)
	}

	for i, v := range views {
		bg, err := parseHex(v.Appearance.Background)
		if err != nil {
			bg = color.RGBA{R: 0xdb, G: 0xea, B: 0xfe, A: 0xff}
		}
		border, err := parseHex(v.Appearance.Border)
		if err != nil {
			border = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
		}

		box := boxes[i]
		draw.Draw(img, box, image.NewUniform(border), image.Point{}, draw.Src)
		draw.Draw(img, box.Inset(borderPx), image.NewUniform(bg), image.Point{}, draw.Src)

		// Completion bar along the bottom edge of the node
		if v.Completion > 0 {
			inner := box.Inset(borderPx)
			barWidth := inner.Dx() * v.Completion / 100
			bar := image.Rect(inner.Min.X, inner.Max.Y-barHeight, inner.Min.X+barWidth, inner.Max.Y)
			draw.Draw(img, bar, image.NewUniform(border), image.Point{}, draw.Src)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("export: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLine paints a 1px line between two points (Bresenham)
func drawLine(img *image.RGBA, from, to image.Point, c color.Color) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}
	err := dx + dy

	x, y := from.X, from.Y
	for {
		img.Set(x, y, c)
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func parseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("export: invalid color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("export: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
