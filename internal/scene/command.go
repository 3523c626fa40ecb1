package scene

import "encoding/json"

// PathCommand is a single path segment in Canvas2D form:
// ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// DrawCommand is one paint operation for the frontend (or the PDF
// exporter) to execute. Commands arrive in painter's order.
type DrawCommand struct {
	Op               string        `json:"op"` // "path", "text", "image"
	NodeID           string        `json:"nodeId,omitempty"`
	Name             string        `json:"name,omitempty"`
	Transform        []float64     `json:"transform,omitempty"`
	Path             []PathCommand `json:"path,omitempty"`
	Fill             string        `json:"fill,omitempty"`
	Stroke           string        `json:"stroke,omitempty"`
	StrokeWidth      float64       `json:"strokeWidth,omitempty"`
	FixedStrokeWidth bool          `json:"fixedStrokeWidth,omitempty"`
	Opacity          float64       `json:"opacity,omitempty"`
	Shadow           *Shadow       `json:"shadow,omitempty"`
	Text             string        `json:"text,omitempty"`
	FontSize         float64       `json:"fontSize,omitempty"`
	Underline        bool          `json:"underline,omitempty"`
	ImageAssetID     string        `json:"imageAssetId,omitempty"`
	ImageWidth       float64       `json:"imageWidth,omitempty"`
	ImageHeight      float64       `json:"imageHeight,omitempty"`
}

// Compile flattens a layer's subtree into a draw-command buffer,
// back to front, with world transforms and inherited opacity resolved.
func Compile(l *Layer) []DrawCommand {
	var commands []DrawCommand
	for _, c := range l.Children() {
		compileNode(c, l.Transform(), l.Opacity(), &commands)
	}
	return commands
}

func compileNode(n *Node, parentTransform Matrix2D, parentOpacity float64, commands *[]DrawCommand) {
	if n == nil || !n.Visible() || n.Destroyed() {
		return
	}

	world := parentTransform.Multiply(n.Transform())
	opacity := parentOpacity * n.Opacity()
	style := n.Style()

	switch g := n.Geom().(type) {
	case RectGeom:
		*commands = append(*commands, pathCommand(n, world, opacity, style, rectPath(g)))
	case CircleGeom:
		*commands = append(*commands, pathCommand(n, world, opacity, style, circlePath(g.Radius)))
	case LineGeom:
		if len(g.Points) >= 4 {
			*commands = append(*commands, pathCommand(n, world, opacity, style, linePath(g)))
		}
	case TextGeom:
		*commands = append(*commands, DrawCommand{
			Op:        "text",
			NodeID:    n.ID(),
			Name:      n.Name(),
			Transform: world.ToSlice(),
			Fill:      style.Fill,
			Opacity:   opacity,
			Text:      g.Text,
			FontSize:  g.FontSize,
			Underline: g.Underline,
		})
	case ImageGeom:
		*commands = append(*commands, DrawCommand{
			Op:           "image",
			NodeID:       n.ID(),
			Name:         n.Name(),
			Transform:    world.ToSlice(),
			Opacity:      opacity,
			ImageAssetID: g.AssetID,
			ImageWidth:   g.Width,
			ImageHeight:  g.Height,
		})
	}

	for _, c := range n.children {
		compileNode(c, world, opacity, commands)
	}
}

func pathCommand(n *Node, world Matrix2D, opacity float64, style Style, path []PathCommand) DrawCommand {
	return DrawCommand{
		Op:               "path",
		NodeID:           n.ID(),
		Name:             n.Name(),
		Transform:        world.ToSlice(),
		Path:             path,
		Fill:             style.Fill,
		Stroke:           style.Stroke,
		StrokeWidth:      style.StrokeWidth,
		FixedStrokeWidth: style.FixedStrokeWidth,
		Shadow:           style.Shadow,
		Opacity:          opacity,
	}
}

func rectPath(g RectGeom) []PathCommand {
	w, h := g.Width, g.Height
	r := g.CornerRadius
	if r <= 0 {
		return []PathCommand{
			{"M", 0.0, 0.0},
			{"L", w, 0.0},
			{"L", w, h},
			{"L", 0.0, h},
			{"Z"},
		}
	}
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	k := bezierCircleK * r
	return []PathCommand{
		{"M", r, 0.0},
		{"L", w - r, 0.0},
		{"C", w - r + k, 0.0, w, r - k, w, r},
		{"L", w, h - r},
		{"C", w, h - r + k, w - r + k, h, w - r, h},
		{"L", r, h},
		{"C", r - k, h, 0.0, h - r + k, 0.0, h - r},
		{"L", 0.0, r},
		{"C", 0.0, r - k, r - k, 0.0, r, 0.0},
		{"Z"},
	}
}

// bezierCircleK is the control-point offset factor for approximating a
// quarter circle with one cubic bezier: 4*(sqrt(2)-1)/3.
const bezierCircleK = 0.5522847498

func circlePath(r float64) []PathCommand {
	k := bezierCircleK * r
	return []PathCommand{
		{"M", r, 0.0},
		{"C", r, k, k, r, 0.0, r},
		{"C", -k, r, -r, k, -r, 0.0},
		{"C", -r, -k, -k, -r, 0.0, -r},
		{"C", k, -r, r, -k, r, 0.0},
		{"Z"},
	}
}

func linePath(g LineGeom) []PathCommand {
	out := make([]PathCommand, 0, len(g.Points)/2+1)
	out = append(out, PathCommand{"M", g.Points[0], g.Points[1]})
	for i := 2; i+1 < len(g.Points); i += 2 {
		out = append(out, PathCommand{"L", g.Points[i], g.Points[i+1]})
	}
	if g.Closed {
		out = append(out, PathCommand{"Z"})
	}
	return out
}

// CommandsToJSON serializes a command buffer for the wire.
func CommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
