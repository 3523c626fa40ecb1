package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
)

const maxDocumentSize = 32 << 20 // 32MB

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ExportPDF handles POST /export/pdf. The request body is a board
// document; the response is the rendered PDF.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	var doc canvas.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}
	if doc.Elements == nil {
		doc.Elements = map[string]canvas.Element{}
	}

	name := doc.Board.Name
	if name == "" {
		name = "board"
	}
	name = sanitizeFilename(name)

	slog.Info("pdf export", "board", doc.Board.ID, "elements", len(doc.Elements))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))

	if err := WritePDF(&doc, w); err != nil {
		slog.Error("pdf export failed", "board", doc.Board.ID, "error", err)
	}
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
