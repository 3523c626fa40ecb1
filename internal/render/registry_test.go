package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

func TestRegistryDefaultsCoverBuiltins(t *testing.T) {
	r := Defaults()
	for _, typ := range []canvas.ElementType{
		canvas.TypeRectangle, canvas.TypeCircle, canvas.TypeTriangle,
		canvas.TypeText, canvas.TypePenStroke, canvas.TypeMarker,
		canvas.TypeHighlighter, canvas.TypeImage, canvas.TypeStickyNote,
		canvas.TypeConnector, canvas.TypeTable,
	} {
		assert.True(t, r.Registered(typ), "missing constructor for %s", typ)
	}
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register("Rectangle", forShape(func() Shape { return &rectShape{} }))

	assert.True(t, r.Registered("rectangle"))
	assert.True(t, r.Registered("RECTANGLE"))

	ctx, _, _ := testContext(t)
	el := rectElement("el_1")
	el.Type = "ReCtAnGlE"
	assert.NotNil(t, r.CreateRenderer(el, ctx))
}

func TestRegistryUnsupportedTypeIsNil(t *testing.T) {
	r := Defaults()
	ctx, _, _ := testContext(t)

	el := rectElement("el_1")
	el.Type = "hologram"
	assert.Nil(t, r.CreateRenderer(el, ctx))
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(canvas.TypeRectangle, forShape(func() Shape { return &rectShape{} }))
	r.Register(canvas.TypeRectangle, forShape(func() Shape { return &circleShape{} }))

	ctx, _, _ := testContext(t)
	rd := r.CreateRenderer(rectElement("el_1"), ctx)
	require.NotNil(t, rd)
	node := rd.Render()
	require.NotNil(t, node)
	_, isCircle := node.Geom().(scene.CircleGeom)
	assert.True(t, isCircle)
}

func TestRegistryNilConstructorIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register(canvas.TypeRectangle, nil)
	assert.False(t, r.Registered(canvas.TypeRectangle))
}

func TestRegistryBatchHelpers(t *testing.T) {
	r := Defaults()
	ctx, _, layer := testContext(t)

	elements := map[string]canvas.Element{
		"el_1": rectElement("el_1"),
		"el_2": {
			ID: "el_2", Type: canvas.TypeCircle, Visible: true, Listening: true,
			Props: canvas.Props{Radius: canvas.Float(30)},
		},
		"el_3": {ID: "el_3", Type: "hologram"},
	}

	renderers := r.CreateRenderers(elements, ctx)
	assert.Len(t, renderers, 2, "unsupported types are skipped, not errors")
	assert.Len(t, layer.Children(), 2)

	moved := rectElement("el_1")
	moved.X = 400
	elements["el_1"] = moved
	r.UpdateRenderers(renderers, elements)
	x, _ := renderers["el_1"].Node().Position()
	assert.Equal(t, 400.0, x)

	r.DestroyRenderers(renderers)
	assert.Empty(t, renderers)
	assert.Empty(t, layer.Children())
}
