package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/engine"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// pt converts board pixels to PDF points at 96 dpi.
const pxToPt = 72.0 / 96.0

// WritePDF renders a board document to a single-page PDF. The page is
// sized to the board and elements are drawn from the compiled scene, so
// the export matches what the canvas shows.
func WritePDF(doc *canvas.Document, w io.Writer) error {
	width := float64(doc.Board.Width)
	height := float64(doc.Board.Height)
	if width <= 0 {
		width = 1920
	}
	if height <= 0 {
		height = 1080
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width * pxToPt, Ht: height * pxToPt},
	})
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()

	// Board background
	if doc.Board.Background != "" {
		r, g, b := parseHexColor(doc.Board.Background)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(0, 0, width*pxToPt, height*pxToPt, "F")
	}

	eng := engine.NewEngine(width, height)
	eng.Store().LoadDocument(doc)

	for _, layer := range eng.Stage().Layers() {
		for _, cmd := range scene.Compile(layer) {
			drawCommand(pdf, cmd)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawCommand(pdf *gofpdf.Fpdf, cmd scene.DrawCommand) {
	if cmd.Opacity <= 0 {
		return
	}
	alpha := cmd.Opacity
	if alpha > 1 {
		alpha = 1
	}
	pdf.SetAlpha(alpha, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	switch cmd.Op {
	case "path":
		drawPath(pdf, cmd)
	case "text":
		drawText(pdf, cmd)
	case "image":
		// Image bytes live in asset storage, not in the document, so
		// exports draw a placeholder frame where the image sits.
		drawImageFrame(pdf, cmd)
	}
}

func drawPath(pdf *gofpdf.Fpdf, cmd scene.DrawCommand) {
	hasFill := cmd.Fill != ""
	hasStroke := cmd.Stroke != "" && cmd.StrokeWidth > 0
	if !hasFill && !hasStroke {
		return
	}

	if hasFill {
		r, g, b := parseHexColor(cmd.Fill)
		pdf.SetFillColor(r, g, b)
	}
	if hasStroke {
		r, g, b := parseHexColor(cmd.Stroke)
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(cmd.StrokeWidth * pxToPt)
	}

	m := matrixFrom(cmd.Transform)
	started := false
	for _, seg := range cmd.Path {
		if len(seg) == 0 {
			continue
		}
		op, _ := seg[0].(string)
		switch op {
		case "M":
			x, y := transformedPoint(m, seg, 1)
			pdf.MoveTo(x, y)
			started = true
		case "L":
			if !started {
				continue
			}
			x, y := transformedPoint(m, seg, 1)
			pdf.LineTo(x, y)
		case "C":
			if !started {
				continue
			}
			x1, y1 := transformedPoint(m, seg, 1)
			x2, y2 := transformedPoint(m, seg, 3)
			x, y := transformedPoint(m, seg, 5)
			pdf.CurveBezierCubicTo(x1, y1, x2, y2, x, y)
		case "Z":
			pdf.ClosePath()
		}
	}
	if !started {
		return
	}

	style := ""
	if hasFill {
		style += "F"
	}
	if hasStroke {
		style += "D"
	}
	pdf.DrawPath(style)
}

func drawText(pdf *gofpdf.Fpdf, cmd scene.DrawCommand) {
	if cmd.Text == "" {
		return
	}
	size := cmd.FontSize
	if size <= 0 {
		size = canvas.DefaultFontSize
	}
	styleStr := ""
	if cmd.Underline {
		styleStr = "U"
	}
	pdf.SetFont("Helvetica", styleStr, size*pxToPt)
	if cmd.Fill != "" {
		r, g, b := parseHexColor(cmd.Fill)
		pdf.SetTextColor(r, g, b)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}

	m := matrixFrom(cmd.Transform)
	x, y := m.TransformPoint(0, 0)
	// The scene measures text from the top-left corner; PDF text draws
	// from the baseline.
	pdf.Text(x*pxToPt, (y+size)*pxToPt, cmd.Text)
}

func drawImageFrame(pdf *gofpdf.Fpdf, cmd scene.DrawCommand) {
	m := matrixFrom(cmd.Transform)
	x, y := m.TransformPoint(0, 0)
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(1)
	pdf.Rect(x*pxToPt, y*pxToPt, cmd.ImageWidth*pxToPt, cmd.ImageHeight*pxToPt, "D")
}

func matrixFrom(t []float64) scene.Matrix2D {
	if len(t) != 6 {
		return scene.Identity()
	}
	return scene.Matrix2D{t[0], t[1], t[2], t[3], t[4], t[5]}
}

func transformedPoint(m scene.Matrix2D, seg scene.PathCommand, i int) (float64, float64) {
	x := floatAt(seg, i)
	y := floatAt(seg, i+1)
	tx, ty := m.TransformPoint(x, y)
	return tx * pxToPt, ty * pxToPt
}

func floatAt(seg scene.PathCommand, i int) float64 {
	if i >= len(seg) {
		return 0
	}
	switch v := seg[i].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// parseHexColor decodes #rgb, #rrggbb and #rrggbbaa colors. Unparseable
// input comes back black.
func parseHexColor(s string) (r, g, b int) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) < 6 {
		return 0, 0, 0
	}
	rv, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	gv, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	bv, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return int(rv), int(gv), int(bv)
}
