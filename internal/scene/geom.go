package scene

import "strings"

// Geom is the kind-specific geometry payload of a node. Bounds are in the
// node's local coordinate space.
type Geom interface {
	Bounds() Rect
}

// RectGeom is a rectangle anchored at the node origin.
type RectGeom struct {
	Width        float64
	Height       float64
	CornerRadius float64
}

func (g RectGeom) Bounds() Rect {
	return Rect{Width: g.Width, Height: g.Height}
}

// CircleGeom is a circle centered on the node origin.
type CircleGeom struct {
	Radius float64
}

func (g CircleGeom) Bounds() Rect {
	return Rect{X: -g.Radius, Y: -g.Radius, Width: 2 * g.Radius, Height: 2 * g.Radius}
}

// LineGeom is a polyline (or closed polygon) of flattened x,y pairs.
type LineGeom struct {
	Points []float64
	Closed bool
}

func (g LineGeom) Bounds() Rect {
	if len(g.Points) < 2 {
		return Rect{}
	}
	minX, minY := g.Points[0], g.Points[1]
	maxX, maxY := minX, minY
	for i := 2; i+1 < len(g.Points); i += 2 {
		minX = min(minX, g.Points[i])
		maxX = max(maxX, g.Points[i])
		minY = min(minY, g.Points[i+1])
		maxY = max(maxY, g.Points[i+1])
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// TextGeom is a text block anchored at the node origin.
type TextGeom struct {
	Text      string
	FontSize  float64
	Underline bool
}

// Per-glyph advance and line height as fractions of the font size. The
// renderer frontend measures real glyphs; these estimates only feed
// hit-testing and marquee bounds.
const (
	glyphAdvance = 0.6
	lineHeight   = 1.2
)

func (g TextGeom) Bounds() Rect {
	size := g.FontSize
	if size <= 0 {
		size = 16
	}
	lines := strings.Split(g.Text, "\n")
	longest := 0
	for _, ln := range lines {
		if n := len([]rune(ln)); n > longest {
			longest = n
		}
	}
	return Rect{
		Width:  float64(longest) * size * glyphAdvance,
		Height: float64(len(lines)) * size * lineHeight,
	}
}

// ImageGeom is a raster image anchored at the node origin.
type ImageGeom struct {
	AssetID string
	Width   float64
	Height  float64
}

func (g ImageGeom) Bounds() Rect {
	return Rect{Width: g.Width, Height: g.Height}
}
