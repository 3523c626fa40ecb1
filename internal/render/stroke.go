package render

import (
	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

const (
	penWidth         = 2.0
	markerWidth      = 6.0
	highlighterWidth = 14.0

	highlighterOpacity = 0.4
	hoverWidthBoost    = 2.0
)

// strokeShape renders freehand ink. One implementation covers pen,
// marker and highlighter, which differ only in default width and
// opacity.
type strokeShape struct {
	kind    canvas.ElementType
	hovered bool
}

func newStrokeShape(kind canvas.ElementType) *strokeShape {
	return &strokeShape{kind: kind}
}

func (s *strokeShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	pts := el.Props.Points
	if len(pts) < 4 {
		return nil, nil
	}
	n := scene.NewLine(scene.LineGeom{Points: pts})
	n.SetStyle(s.style(el))
	if s.kind == canvas.TypeHighlighter {
		n.SetOpacity(highlighterOpacity)
	}
	return n, nil
}

func (s *strokeShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	pts := el.Props.Points
	if len(pts) < 4 {
		n.Hide()
		return nil
	}
	n.Show()
	n.SetGeom(scene.LineGeom{Points: pts})
	n.SetStyle(s.style(el))
	return nil
}

func (s *strokeShape) style(el canvas.Element) scene.Style {
	style := scene.Style{
		Stroke:      canvas.DefaultStroke,
		StrokeWidth: s.baseWidth(),
	}
	if el.Props.Stroke != nil {
		style.Stroke = *el.Props.Stroke
	}
	if el.Props.StrokeWidth != nil {
		style.StrokeWidth = *el.Props.StrokeWidth
	}
	if s.hovered {
		style.StrokeWidth += hoverWidthBoost
	}
	return style
}

func (s *strokeShape) baseWidth() float64 {
	switch s.kind {
	case canvas.TypeMarker:
		return markerWidth
	case canvas.TypeHighlighter:
		return highlighterWidth
	default:
		return penWidth
	}
}

// Hover thickens the stroke so thin ink is easier to grab.
func (s *strokeShape) HoverEnter(n *scene.Node, ctx Context) {
	s.hovered = true
	s.bumpWidth(n, hoverWidthBoost)
}

func (s *strokeShape) HoverLeave(n *scene.Node, ctx Context) {
	s.hovered = false
	s.bumpWidth(n, -hoverWidthBoost)
}

func (s *strokeShape) bumpWidth(n *scene.Node, delta float64) {
	style := n.Style()
	style.StrokeWidth += delta
	n.SetStyle(style)
	if l := n.Layer(); l != nil {
		l.BatchDraw()
	}
}
