package engine

import (
	"encoding/json"

	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// LayerFrame is one drawn layer in a tick: its name and the compiled
// draw commands, in paint order.
type LayerFrame struct {
	Layer    string              `json:"layer"`
	Commands []scene.DrawCommand `json:"commands"`
}

// frameSink collects layer flushes between resets. The engine resets it
// at the top of every tick and serializes whatever arrived.
type frameSink struct {
	frames []LayerFrame
}

func newFrameSink() *frameSink {
	return &frameSink{}
}

func (f *frameSink) Flush(l *scene.Layer, commands []scene.DrawCommand) {
	if commands == nil {
		commands = []scene.DrawCommand{}
	}
	f.frames = append(f.frames, LayerFrame{Layer: l.Name(), Commands: commands})
}

func (f *frameSink) reset() {
	f.frames = f.frames[:0]
}

func (f *frameSink) toJSON() string {
	if len(f.frames) == 0 {
		return "[]"
	}
	data, err := json.Marshal(f.frames)
	if err != nil {
		return "[]"
	}
	return string(data)
}
