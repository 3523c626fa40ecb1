package render

import (
	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

const (
	defaultShapeSize   = 100.0
	defaultCircleR     = 50.0
	defaultImageSize   = 100.0
	defaultStickySize  = 180.0
	defaultTableRows   = 3
	defaultTableCols   = 3
	stickyShadowColor  = "#00000033"
	stickyDefaultColor = "#fff3b0"
)

func sizeOf(p canvas.Props) (w, h float64) {
	w, h = defaultShapeSize, defaultShapeSize
	if p.Width != nil {
		w = *p.Width
	}
	if p.Height != nil {
		h = *p.Height
	}
	return w, h
}

// --- rectangle ---

type rectShape struct{}

func (s *rectShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	n := scene.NewRect(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return n, nil
}

func (s *rectShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	n.SetGeom(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return nil
}

func (s *rectShape) geom(el canvas.Element) scene.RectGeom {
	w, h := sizeOf(el.Props)
	g := scene.RectGeom{Width: w, Height: h}
	if el.Props.CornerRadius != nil {
		g.CornerRadius = *el.Props.CornerRadius
	}
	return g
}

// --- circle ---

type circleShape struct{}

func (s *circleShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	n := scene.NewCircle(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return n, nil
}

func (s *circleShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	n.SetGeom(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return nil
}

func (s *circleShape) geom(el canvas.Element) scene.CircleGeom {
	r := defaultCircleR
	if el.Props.Radius != nil {
		r = *el.Props.Radius
	}
	return scene.CircleGeom{Radius: r}
}

// --- triangle ---

type triangleShape struct{}

func (s *triangleShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	n := scene.NewLine(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return n, nil
}

func (s *triangleShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	n.SetGeom(s.geom(el))
	n.SetStyle(fillStrokeStyle(el))
	return nil
}

func (s *triangleShape) geom(el canvas.Element) scene.LineGeom {
	w, h := sizeOf(el.Props)
	return scene.LineGeom{
		Points: []float64{w / 2, 0, w, h, 0, h},
		Closed: true,
	}
}

// --- text ---

type textShape struct{}

func (s *textShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	n := scene.NewText(s.geom(el, false))
	n.SetStyle(textStyle(el))
	return n, nil
}

func (s *textShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	underline := false
	if g, ok := n.Geom().(scene.TextGeom); ok {
		underline = g.Underline
	}
	n.SetGeom(s.geom(el, underline))
	n.SetStyle(textStyle(el))
	return nil
}

func (s *textShape) geom(el canvas.Element, underline bool) scene.TextGeom {
	style := canvas.ResolveStyle(el.Props)
	text := ""
	if el.Props.Text != nil {
		text = *el.Props.Text
	}
	return scene.TextGeom{Text: text, FontSize: style.FontSize, Underline: underline}
}

// Text hover shows an editing affordance: a text cursor and an underline
// hint on top of the base cursor behavior.
func (s *textShape) HoverEnter(n *scene.Node, ctx Context) {
	if ctx.Stage != nil {
		ctx.Stage.SetCursor("text")
	}
	s.setUnderline(n, true, ctx)
}

func (s *textShape) HoverLeave(n *scene.Node, ctx Context) {
	s.setUnderline(n, false, ctx)
}

func (s *textShape) setUnderline(n *scene.Node, on bool, ctx Context) {
	if g, ok := n.Geom().(scene.TextGeom); ok {
		g.Underline = on
		n.SetGeom(g)
		if l := n.Layer(); l != nil {
			l.BatchDraw()
		}
	}
}

// --- image ---

type imageShape struct{}

func (s *imageShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	return scene.NewImage(s.geom(el)), nil
}

func (s *imageShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	n.SetGeom(s.geom(el))
	return nil
}

func (s *imageShape) geom(el canvas.Element) scene.ImageGeom {
	w, h := defaultImageSize, defaultImageSize
	if el.Props.Width != nil {
		w = *el.Props.Width
	}
	if el.Props.Height != nil {
		h = *el.Props.Height
	}
	g := scene.ImageGeom{Width: w, Height: h}
	if el.Props.AssetID != nil {
		g.AssetID = *el.Props.AssetID
	}
	return g
}

// --- sticky note ---

type stickyShape struct {
	bg    *scene.Node
	label *scene.Node
}

func (s *stickyShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	group := scene.NewGroup()
	s.bg = scene.NewRect(scene.RectGeom{})
	s.label = scene.NewText(scene.TextGeom{})
	s.label.SetPosition(12, 12)
	s.label.SetListening(false)
	group.Add(s.bg, s.label)
	s.refresh(el)
	return group, nil
}

func (s *stickyShape) UpdateNode(_ *scene.Node, el canvas.Element) error {
	s.refresh(el)
	return nil
}

func (s *stickyShape) refresh(el canvas.Element) {
	w, h := defaultStickySize, defaultStickySize
	if el.Props.Width != nil {
		w = *el.Props.Width
	}
	if el.Props.Height != nil {
		h = *el.Props.Height
	}
	fill := stickyDefaultColor
	if el.Props.Fill != nil {
		fill = *el.Props.Fill
	}
	s.bg.SetGeom(scene.RectGeom{Width: w, Height: h, CornerRadius: 4})
	s.bg.SetStyle(scene.Style{
		Fill: fill,
		Shadow: &scene.Shadow{
			Color: stickyShadowColor, Blur: 6, OffsetX: 2, OffsetY: 3, Opacity: 1,
		},
	})

	style := canvas.ResolveStyle(el.Props)
	text := ""
	if el.Props.Text != nil {
		text = *el.Props.Text
	}
	s.label.SetGeom(scene.TextGeom{Text: text, FontSize: style.FontSize})
	s.label.SetStyle(scene.Style{Fill: style.Stroke})
}

// --- table ---

type tableShape struct{}

func (s *tableShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	group := scene.NewGroup()
	s.build(group, el)
	return group, nil
}

func (s *tableShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	for _, c := range n.Children() {
		c.Destroy()
	}
	s.build(n, el)
	return nil
}

func (s *tableShape) build(group *scene.Node, el canvas.Element) {
	w, h := sizeOf(el.Props)
	rows, cols := defaultTableRows, defaultTableCols
	if el.Props.Rows != nil && *el.Props.Rows > 0 {
		rows = *el.Props.Rows
	}
	if el.Props.Cols != nil && *el.Props.Cols > 0 {
		cols = *el.Props.Cols
	}
	style := fillStrokeStyle(el)

	frame := scene.NewRect(scene.RectGeom{Width: w, Height: h})
	frame.SetStyle(style)
	group.Add(frame)

	gridStyle := scene.Style{Stroke: style.Stroke, StrokeWidth: max(style.StrokeWidth/2, 1)}
	for r := 1; r < rows; r++ {
		y := h * float64(r) / float64(rows)
		line := scene.NewLine(scene.LineGeom{Points: []float64{0, y, w, y}})
		line.SetStyle(gridStyle)
		line.SetListening(false)
		group.Add(line)
	}
	for c := 1; c < cols; c++ {
		x := w * float64(c) / float64(cols)
		line := scene.NewLine(scene.LineGeom{Points: []float64{x, 0, x, h}})
		line.SetStyle(gridStyle)
		line.SetListening(false)
		group.Add(line)
	}
}

func fillStrokeStyle(el canvas.Element) scene.Style {
	style := canvas.ResolveStyle(el.Props)
	return scene.Style{
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
	}
}

func textStyle(el canvas.Element) scene.Style {
	style := canvas.ResolveStyle(el.Props)
	fill := style.Fill
	if el.Props.Fill == nil {
		// Unstyled text draws in the stroke color, not the white shape fill.
		fill = style.Stroke
	}
	return scene.Style{Fill: fill}
}
