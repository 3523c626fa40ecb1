//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/quillboard/quillboard/backend-go/internal/engine"
)

var eng *engine.Engine

const defaultStageWidth, defaultStageHeight = 1920.0, 1080.0

func main() {
	eng = engine.NewEngine(defaultStageWidth, defaultStageHeight)

	// Create the engine API object
	quillboardEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	quillboardEngine.Set("loadDocument", js.FuncOf(loadDocument))
	quillboardEngine.Set("updateDocument", js.FuncOf(updateDocument))
	quillboardEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	quillboardEngine.Set("setSelection", js.FuncOf(setSelection))
	quillboardEngine.Set("submitOperation", js.FuncOf(submitOperation))
	quillboardEngine.Set("undo", js.FuncOf(undo))
	quillboardEngine.Set("pointerDown", js.FuncOf(pointerDown))
	quillboardEngine.Set("pointerMove", js.FuncOf(pointerMove))
	quillboardEngine.Set("pointerUp", js.FuncOf(pointerUp))
	quillboardEngine.Set("stopTextEdit", js.FuncOf(stopTextEdit))
	quillboardEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	quillboardEngine.Set("render", js.FuncOf(render))
	quillboardEngine.Set("hitTest", js.FuncOf(hitTest))
	quillboardEngine.Set("queryRect", js.FuncOf(queryRect))
	quillboardEngine.Set("getDocument", js.FuncOf(getDocument))
	quillboardEngine.Set("getSelection", js.FuncOf(getSelection))
	quillboardEngine.Set("getCursor", js.FuncOf(getCursor))
	quillboardEngine.Set("editingElementId", js.FuncOf(editingElementID))

	// Register on global scope
	js.Global().Set("quillboardEngine", quillboardEngine)

	// Signal that WASM is ready
	js.Global().Set("quillboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	jsonData := args[0].String()
	if err := eng.LoadDocument(jsonData); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	jsonData := args[0].String()
	if err := eng.UpdateDocument(jsonData); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	boardID := "board_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		boardID = args[0].String()
	}

	eng.LoadSampleDocument(boardID)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func submitOperation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing operation JSON"})
	}

	seq, err := eng.SubmitOperation(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true, "seq": seq})
}

func undo(this js.Value, args []js.Value) interface{} {
	if err := eng.Undo(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerDown(args[0].Float(), args[1].Float())
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerMove(args[0].Float(), args[1].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerUp(args[0].Float(), args[1].Float())
	return nil
}

func stopTextEdit(this js.Value, args []js.Value) interface{} {
	eng.StopTextEdit()
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func queryRect(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf([]interface{}{})
	}

	ids := eng.QueryRect(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getCursor(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetCursor())
}

func editingElementID(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.EditingElementID())
}
