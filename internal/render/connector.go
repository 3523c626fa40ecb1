package render

import (
	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

const connectorDefaultWidth = 2.0

// connectorShape renders a connector as a polyline through its endpoint
// and control points. A connector with fewer than two resolvable points
// has no visual and is omitted until its geometry fills in.
type connectorShape struct{}

func (s *connectorShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	pts, ok := el.ConnectorPath()
	if !ok {
		return nil, nil
	}
	n := scene.NewLine(scene.LineGeom{Points: pts})
	n.SetStyle(s.style(el))
	return n, nil
}

func (s *connectorShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	pts, ok := el.ConnectorPath()
	if !ok {
		n.Hide()
		return nil
	}
	n.Show()
	n.SetGeom(scene.LineGeom{Points: pts})
	n.SetStyle(s.style(el))
	return nil
}

func (s *connectorShape) style(el canvas.Element) scene.Style {
	style := scene.Style{
		Stroke:      canvas.DefaultStroke,
		StrokeWidth: connectorDefaultWidth,
	}
	if el.Props.Stroke != nil {
		style.Stroke = *el.Props.Stroke
	}
	if el.Props.StrokeWidth != nil {
		style.StrokeWidth = *el.Props.StrokeWidth
	}
	return style
}
