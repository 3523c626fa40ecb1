package canvas

// ElementType is the discriminated tag of a board element.
type ElementType string

const (
	TypeRectangle   ElementType = "rectangle"
	TypeCircle      ElementType = "circle"
	TypeTriangle    ElementType = "triangle"
	TypeText        ElementType = "text"
	TypePenStroke   ElementType = "pen-stroke"
	TypeMarker      ElementType = "marker"
	TypeHighlighter ElementType = "highlighter"
	TypeImage       ElementType = "image"
	TypeStickyNote  ElementType = "sticky-note"
	TypeConnector   ElementType = "connector"
	TypeTable       ElementType = "table"
)

// Point is a 2D coordinate in board space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Endpoint names one end of a connector.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

// Element is a single board element. Elements are value objects: consumers
// never mutate one in place, they build a replacement and resubmit it.
type Element struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Rotation  float64     `json:"rotation,omitempty"`
	ScaleX    float64     `json:"scaleX"`
	ScaleY    float64     `json:"scaleY"`
	Opacity   float64     `json:"opacity"`
	Visible   bool        `json:"visible"`
	Listening bool        `json:"listening"`
	Draggable bool        `json:"draggable"`

	Props Props `json:"props"`

	// Connector geometry. A renderable connector needs at least two
	// coordinate pairs, from either PathPoints or the Start/End pair.
	StartPoint    *Point  `json:"startPoint,omitempty"`
	EndPoint      *Point  `json:"endPoint,omitempty"`
	ControlPoints []Point `json:"controlPoints,omitempty"`
	PathPoints    []float64 `json:"pathPoints,omitempty"`
}

// Props holds the type-specific payload. Absent fields mean "use the
// default"; ResolveStyle makes that resolution explicit.
type Props struct {
	Width        *float64  `json:"width,omitempty"`
	Height       *float64  `json:"height,omitempty"`
	Radius       *float64  `json:"radius,omitempty"`
	Points       []float64 `json:"points,omitempty"`
	Text         *string   `json:"text,omitempty"`
	FontSize     *float64  `json:"fontSize,omitempty"`
	Fill         *string   `json:"fill,omitempty"`
	Stroke       *string   `json:"stroke,omitempty"`
	StrokeWidth  *float64  `json:"strokeWidth,omitempty"`
	CornerRadius *float64  `json:"cornerRadius,omitempty"`
	AssetID      *string   `json:"assetId,omitempty"`
	Rows         *int      `json:"rows,omitempty"`
	Cols         *int      `json:"cols,omitempty"`
}

// Style is the fully resolved paint state of an element.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	FontSize    float64
}

// Default paint values applied when a Props field is absent.
const (
	DefaultFill        = "#ffffff"
	DefaultStroke      = "#1a1a2e"
	DefaultStrokeWidth = 2.0
	DefaultFontSize    = 16.0
)

// ResolveStyle resolves the optional style fields of p against the defaults.
func ResolveStyle(p Props) Style {
	s := Style{
		Fill:        DefaultFill,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
		FontSize:    DefaultFontSize,
	}
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	if p.Stroke != nil {
		s.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		s.StrokeWidth = *p.StrokeWidth
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	return s
}

// Patch is a partial element update. Nil fields are left untouched.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	ScaleX   *float64 `json:"scaleX,omitempty"`
	ScaleY   *float64 `json:"scaleY,omitempty"`
	Text     *string  `json:"text,omitempty"`
}

// Apply returns a copy of e with the patch folded in.
func (p Patch) Apply(e Element) Element {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.ScaleX != nil {
		e.ScaleX = *p.ScaleX
	}
	if p.ScaleY != nil {
		e.ScaleY = *p.ScaleY
	}
	if p.Text != nil {
		text := *p.Text
		e.Props.Text = &text
	}
	return e
}

// EndpointDraft is the single-slot transient state of an in-flight
// connector endpoint drag. At most one exists at a time.
type EndpointDraft struct {
	ConnectorID string   `json:"connectorId"`
	End         Endpoint `json:"end"`
	Pos         Point    `json:"pos"`
}

// ConnectorPath returns the flattened x,y pairs the connector should be
// drawn with: the explicit path-point array when present, otherwise the
// start/end pair (with any control points between them). ok is false when
// fewer than two coordinate pairs resolve; such a connector must not be
// drawn.
func (e Element) ConnectorPath() (points []float64, ok bool) {
	if e.Type != TypeConnector {
		return nil, false
	}
	if len(e.PathPoints) >= 4 {
		return e.PathPoints, true
	}
	if e.StartPoint == nil || e.EndPoint == nil {
		return nil, false
	}
	points = []float64{e.StartPoint.X, e.StartPoint.Y}
	for _, c := range e.ControlPoints {
		points = append(points, c.X, c.Y)
	}
	points = append(points, e.EndPoint.X, e.EndPoint.Y)
	return points, true
}

// Endpoints resolves the connector's start and end coordinates.
func (e Element) Endpoints() (start, end Point, ok bool) {
	pts, ok := e.ConnectorPath()
	if !ok {
		return Point{}, Point{}, false
	}
	start = Point{X: pts[0], Y: pts[1]}
	end = Point{X: pts[len(pts)-2], Y: pts[len(pts)-1]}
	return start, end, true
}

// WithEndpoint returns a copy of e with the named endpoint moved to pos.
// Both the flattened path array and the explicit start/end pair are kept
// in sync with the move.
func (e Element) WithEndpoint(end Endpoint, pos Point) Element {
	if len(e.PathPoints) >= 4 {
		pts := make([]float64, len(e.PathPoints))
		copy(pts, e.PathPoints)
		if end == EndpointStart {
			pts[0], pts[1] = pos.X, pos.Y
		} else {
			pts[len(pts)-2], pts[len(pts)-1] = pos.X, pos.Y
		}
		e.PathPoints = pts
	}
	p := pos
	if end == EndpointStart {
		if e.StartPoint != nil || len(e.PathPoints) == 0 {
			e.StartPoint = &p
		}
	} else {
		if e.EndPoint != nil || len(e.PathPoints) == 0 {
			e.EndPoint = &p
		}
	}
	return e
}

// Clone returns a deep copy of e. Needed because the value type carries
// slices and optional pointers that snapshots must not share.
func (e Element) Clone() Element {
	out := e
	out.Props = e.Props.clone()
	if e.StartPoint != nil {
		p := *e.StartPoint
		out.StartPoint = &p
	}
	if e.EndPoint != nil {
		p := *e.EndPoint
		out.EndPoint = &p
	}
	if e.ControlPoints != nil {
		out.ControlPoints = append([]Point(nil), e.ControlPoints...)
	}
	if e.PathPoints != nil {
		out.PathPoints = append([]float64(nil), e.PathPoints...)
	}
	return out
}

func (p Props) clone() Props {
	out := p
	out.Width = cloneFloat(p.Width)
	out.Height = cloneFloat(p.Height)
	out.Radius = cloneFloat(p.Radius)
	out.FontSize = cloneFloat(p.FontSize)
	out.StrokeWidth = cloneFloat(p.StrokeWidth)
	out.CornerRadius = cloneFloat(p.CornerRadius)
	if p.Points != nil {
		out.Points = append([]float64(nil), p.Points...)
	}
	out.Text = cloneString(p.Text)
	out.Fill = cloneString(p.Fill)
	out.Stroke = cloneString(p.Stroke)
	out.AssetID = cloneString(p.AssetID)
	if p.Rows != nil {
		v := *p.Rows
		out.Rows = &v
	}
	if p.Cols != nil {
		v := *p.Cols
		out.Cols = &v
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v, for building Props literals.
func Float(v float64) *float64 { return &v }

// Str returns a pointer to v, for building Props literals.
func Str(v string) *string { return &v }

// Int returns a pointer to v, for building Props literals.
func Int(v int) *int { return &v }
