package render

import (
	"strings"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
)

// Constructor builds a renderer bound to one element and a rendering
// context.
type Constructor func(el canvas.Element, ctx Context) *Renderer

// Registry maps element type tags to renderer constructors. Lookup is
// case-insensitive; the last registration for a tag wins. An unregistered
// tag is not an error, it simply renders nothing.
type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func (r *Registry) Register(tag canvas.ElementType, ctor Constructor) {
	if ctor == nil {
		return
	}
	r.ctors[strings.ToLower(string(tag))] = ctor
}

// Registered reports whether a constructor exists for the tag.
func (r *Registry) Registered(tag canvas.ElementType) bool {
	_, ok := r.ctors[strings.ToLower(string(tag))]
	return ok
}

// CreateRenderer constructs a renderer for the element, or returns nil
// when its type has no registered constructor.
func (r *Registry) CreateRenderer(el canvas.Element, ctx Context) *Renderer {
	ctor, ok := r.ctors[strings.ToLower(string(el.Type))]
	if !ok {
		return nil
	}
	return ctor(el, ctx)
}

// CreateRenderers constructs and renders a renderer per supported element.
func (r *Registry) CreateRenderers(elements map[string]canvas.Element, ctx Context) map[string]*Renderer {
	out := make(map[string]*Renderer, len(elements))
	for id, el := range elements {
		if rd := r.CreateRenderer(el, ctx); rd != nil {
			rd.Render()
			out[id] = rd
		}
	}
	return out
}

// UpdateRenderers pushes new element values into existing renderers.
// Ids without a renderer or without a value are skipped.
func (r *Registry) UpdateRenderers(renderers map[string]*Renderer, elements map[string]canvas.Element) {
	for id, rd := range renderers {
		if el, ok := elements[id]; ok {
			rd.Update(el)
		}
	}
}

// DestroyRenderers destroys every renderer in the map and clears it.
func (r *Registry) DestroyRenderers(renderers map[string]*Renderer) {
	for id, rd := range renderers {
		rd.Destroy()
		delete(renderers, id)
	}
}

// forShape adapts a per-renderer shape factory into a Constructor.
func forShape(newShape func() Shape) Constructor {
	return func(el canvas.Element, ctx Context) *Renderer {
		return NewRenderer(el, ctx, newShape())
	}
}

// Defaults returns a registry with every built-in element kind registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(canvas.TypeRectangle, forShape(func() Shape { return &rectShape{} }))
	r.Register(canvas.TypeCircle, forShape(func() Shape { return &circleShape{} }))
	r.Register(canvas.TypeTriangle, forShape(func() Shape { return &triangleShape{} }))
	r.Register(canvas.TypeText, forShape(func() Shape { return &textShape{} }))
	r.Register(canvas.TypePenStroke, forShape(func() Shape { return newStrokeShape(canvas.TypePenStroke) }))
	r.Register(canvas.TypeMarker, forShape(func() Shape { return newStrokeShape(canvas.TypeMarker) }))
	r.Register(canvas.TypeHighlighter, forShape(func() Shape { return newStrokeShape(canvas.TypeHighlighter) }))
	r.Register(canvas.TypeImage, forShape(func() Shape { return &imageShape{} }))
	r.Register(canvas.TypeStickyNote, forShape(func() Shape { return &stickyShape{} }))
	r.Register(canvas.TypeConnector, forShape(func() Shape { return &connectorShape{} }))
	r.Register(canvas.TypeTable, forShape(func() Shape { return &tableShape{} }))
	return r
}
