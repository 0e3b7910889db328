package document

import (
	"encoding/json"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// Sample builds the demo document shown to new projects: a few shapes, a
// group and a caption.
func Sample() *Document {
	doc := NewEmpty(1280, 720)
	doc.Background = "#1a1a2e"

	rect := scene.NewRect(160, 140, 240, 160)
	rect.Fill = "#e94560"
	rect.SetRx(12)
	rect.SetRy(12)
	rect.SetAngle(-8)

	ellipse := scene.NewEllipse(520, 180, 110, 70)
	ellipse.Fill = "#0f3460"
	ellipse.Stroke = "#f5f5f5"
	ellipse.SetStrokeWidth(4)

	triangle := scene.NewPolygon([]geom.Point{{X: 0, Y: 120}, {X: 70, Y: 0}, {X: 140, Y: 120}})
	triangle.SetPosition(860, 160)
	triangle.Fill = "#16c79a"

	wheelRim := scene.NewCircle(0, 0, 60)
	wheelRim.Fill = ""
	wheelRim.Stroke = "#f5f5f5"
	wheelRim.SetStrokeWidth(6)
	wheelSpoke := scene.NewRect(55, 0, 10, 120)
	wheelSpoke.Fill = "#f5f5f5"
	wheel := scene.NewGroup([]scene.Drawable{wheelRim, wheelSpoke}, scene.GroupOptions{})
	wheel.SetPosition(300, 420)

	wave, err := scene.NewPath("M 0 40 Q 60 0 120 40 T 240 40 T 360 40")
	if err == nil {
		wave.SetPosition(700, 460)
		wave.Fill = ""
		wave.Stroke = "#ffd460"
		wave.SetStrokeWidth(5)
	}

	caption := scene.NewTextbox("inamate canvas", 160, 600, 480)
	caption.Fill = "#f5f5f5"
	caption.SetFontSize(36)

	objects := []scene.Drawable{rect, ellipse, triangle, wheel, caption}
	if wave != nil {
		objects = append(objects, wave)
	}
	for _, d := range objects {
		raw, err := json.Marshal(d.Base())
		if err != nil {
			continue
		}
		doc.Objects = append(doc.Objects, raw)
	}
	return doc
}
