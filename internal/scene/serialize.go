package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/jinzhu/copier"

	"github.com/inamate/inamate/canvas-go/internal/filter"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// ObjectRecord is the persisted form shared by every object kind. Empty
// paints serialize as null.
type ObjectRecord struct {
	Type                     string          `json:"type"`
	Version                  string          `json:"version"`
	OriginX                  geom.Origin     `json:"originX"`
	OriginY                  geom.Origin     `json:"originY"`
	Left                     float64         `json:"left"`
	Top                      float64         `json:"top"`
	Width                    float64         `json:"width"`
	Height                   float64         `json:"height"`
	Fill                     *string         `json:"fill"`
	Stroke                   *string         `json:"stroke"`
	StrokeWidth              float64         `json:"strokeWidth"`
	StrokeDashArray          []float64       `json:"strokeDashArray"`
	StrokeLineCap            string          `json:"strokeLineCap"`
	StrokeDashOffset         float64         `json:"strokeDashOffset"`
	StrokeLineJoin           string          `json:"strokeLineJoin"`
	StrokeUniform            bool            `json:"strokeUniform"`
	StrokeMiterLimit         float64         `json:"strokeMiterLimit"`
	ScaleX                   float64         `json:"scaleX"`
	ScaleY                   float64         `json:"scaleY"`
	Angle                    float64         `json:"angle"`
	FlipX                    bool            `json:"flipX"`
	FlipY                    bool            `json:"flipY"`
	Opacity                  float64         `json:"opacity"`
	Shadow                   *Shadow         `json:"shadow"`
	Visible                  bool            `json:"visible"`
	BackgroundColor          string          `json:"backgroundColor"`
	FillRule                 string          `json:"fillRule"`
	PaintFirst               string          `json:"paintFirst"`
	GlobalCompositeOperation string          `json:"globalCompositeOperation"`
	SkewX                    float64         `json:"skewX"`
	SkewY                    float64         `json:"skewY"`
	ClipPath                 json.RawMessage `json:"clipPath,omitempty"`
	Inverted                 bool            `json:"inverted,omitempty"`
	AbsolutePositioned       bool            `json:"absolutePositioned,omitempty"`
	ID                       string          `json:"id,omitempty"`
}

type RectRecord struct {
	ObjectRecord
	Rx float64 `json:"rx"`
	Ry float64 `json:"ry"`
}

type CircleRecord struct {
	ObjectRecord
	Radius           float64 `json:"radius"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	CounterClockwise bool    `json:"counterClockwise"`
}

type EllipseRecord struct {
	ObjectRecord
	Rx float64 `json:"rx"`
	Ry float64 `json:"ry"`
}

type LineRecord struct {
	ObjectRecord
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type PolyRecord struct {
	ObjectRecord
	Points []geom.Point `json:"points"`
}

type PathRecord struct {
	ObjectRecord
	Path []PathCommand `json:"path"`
}

type TextRecord struct {
	ObjectRecord
	Text        string  `json:"text"`
	FontSize    float64 `json:"fontSize"`
	FontWeight  string  `json:"fontWeight"`
	FontFamily  string  `json:"fontFamily"`
	FontStyle   string  `json:"fontStyle"`
	LineHeight  float64 `json:"lineHeight"`
	TextAlign   string  `json:"textAlign"`
	Underline   bool    `json:"underline"`
	Overline    bool    `json:"overline"`
	Linethrough bool    `json:"linethrough"`
	MinWidth    float64 `json:"minWidth,omitempty"`
}

type ImageRecord struct {
	ObjectRecord
	Src     string          `json:"src"`
	CropX   float64         `json:"cropX"`
	CropY   float64         `json:"cropY"`
	Filters []filter.Filter `json:"filters"`
}

// LayoutManagerRecord names a group's layout strategy.
type LayoutManagerRecord struct {
	Type     string `json:"type"`
	Strategy string `json:"strategy"`
}

type GroupRecord struct {
	ObjectRecord
	Objects        []json.RawMessage    `json:"objects"`
	LayoutManager  *LayoutManagerRecord `json:"layoutManager,omitempty"`
	SubTargetCheck bool                 `json:"subTargetCheck"`
	Interactive    bool                 `json:"interactive"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (o *Object) digits() int { return o.engine().NumFractionDigits }

// baseRecord captures the common fields, rounded to digits fraction digits
// (negative keeps full precision).
func (o *Object) baseRecord(digits int) ObjectRecord {
	fx := func(v float64) float64 { return geom.ToFixed(v, digits) }
	rec := ObjectRecord{
		Type:                     o.self.Type(),
		Version:                  Version,
		OriginX:                  o.originX,
		OriginY:                  o.originY,
		Left:                     fx(o.left),
		Top:                      fx(o.top),
		Width:                    fx(o.width),
		Height:                   fx(o.height),
		Fill:                     nullable(o.Fill),
		Stroke:                   nullable(o.Stroke),
		StrokeWidth:              fx(o.strokeWidth),
		StrokeDashArray:          slices.Clone(o.StrokeDashArray),
		StrokeLineCap:            o.StrokeLineCap,
		StrokeDashOffset:         o.StrokeDashOffset,
		StrokeLineJoin:           o.StrokeLineJoin,
		StrokeUniform:            o.strokeUniform,
		StrokeMiterLimit:         fx(o.StrokeMiterLimit),
		ScaleX:                   fx(o.scaleX),
		ScaleY:                   fx(o.scaleY),
		Angle:                    fx(o.angle),
		FlipX:                    o.flipX,
		FlipY:                    o.flipY,
		Opacity:                  fx(o.Opacity),
		Visible:                  o.Visible,
		BackgroundColor:          o.BackgroundColor,
		FillRule:                 o.FillRule,
		PaintFirst:               o.PaintFirst,
		GlobalCompositeOperation: o.GlobalCompositeOperation,
		SkewX:                    fx(o.skewX),
		SkewY:                    fx(o.skewY),
		Inverted:                 o.Inverted,
		AbsolutePositioned:       o.AbsolutePositioned,
		ID:                       o.ID,
	}
	if o.Shadow != nil {
		sh := *o.Shadow
		rec.Shadow = &sh
	}
	if o.ClipPath != nil {
		if raw, err := json.Marshal(o.ClipPath.Base().record(digits)); err == nil {
			rec.ClipPath = raw
		}
	}
	return rec
}

type recorder interface {
	toRecord(digits int) any
}

func (o *Object) record(digits int) any {
	if r, ok := o.self.(recorder); ok {
		return r.toRecord(digits)
	}
	return o.baseRecord(digits)
}

// ToObject returns the persisted record of the object, rounded to the
// engine's fraction digits.
func (o *Object) ToObject() any { return o.record(o.digits()) }

// MarshalJSON encodes ToObject.
func (o *Object) MarshalJSON() ([]byte, error) { return json.Marshal(o.ToObject()) }

// prefill is the unrounded record of the current state. Decoding over it
// keeps every field the input leaves out.
func (o *Object) prefill() ObjectRecord {
	rec := o.baseRecord(-1)
	rec.ClipPath = nil
	return rec
}

// applyBase writes a decoded record onto the object.
func (o *Object) applyBase(ctx context.Context, reg *Registry, rec *ObjectRecord) error {
	o.originX, o.originY = rec.OriginX, rec.OriginY
	o.left, o.top = rec.Left, rec.Top
	o.width, o.height = rec.Width, rec.Height
	o.Fill, o.Stroke = deref(rec.Fill), deref(rec.Stroke)
	o.strokeWidth = rec.StrokeWidth
	o.StrokeDashArray = rec.StrokeDashArray
	o.StrokeLineCap = rec.StrokeLineCap
	o.StrokeDashOffset = rec.StrokeDashOffset
	o.StrokeLineJoin = rec.StrokeLineJoin
	o.strokeUniform = rec.StrokeUniform
	o.StrokeMiterLimit = rec.StrokeMiterLimit
	o.flipX = rec.FlipX != (rec.ScaleX < 0)
	o.flipY = rec.FlipY != (rec.ScaleY < 0)
	o.scaleX = o.constrainScale(math.Abs(rec.ScaleX))
	o.scaleY = o.constrainScale(math.Abs(rec.ScaleY))
	o.angle = rec.Angle
	o.Opacity = rec.Opacity
	o.Shadow = rec.Shadow
	o.Visible = rec.Visible
	o.BackgroundColor = rec.BackgroundColor
	o.FillRule = rec.FillRule
	o.PaintFirst = rec.PaintFirst
	o.GlobalCompositeOperation = rec.GlobalCompositeOperation
	o.skewX, o.skewY = rec.SkewX, rec.SkewY
	o.Inverted = rec.Inverted
	o.AbsolutePositioned = rec.AbsolutePositioned
	if rec.ID != "" {
		o.ID = rec.ID
	}
	switch {
	case rec.ClipPath == nil:
	case string(rec.ClipPath) == "null":
		o.ClipPath = nil
	default:
		clip, err := reg.Enliven(ctx, rec.ClipPath)
		if err != nil {
			return fmt.Errorf("clip path: %w", err)
		}
		clip.Base().SetCanvas(o.canvas)
		o.ClipPath = clip
	}
	o.touch()
	o.MarkDirty()
	return nil
}

type decoder interface {
	decodeRecord(ctx context.Context, reg *Registry, data []byte) error
}

func (o *Object) decode(ctx context.Context, reg *Registry, data []byte) error {
	if d, ok := o.self.(decoder); ok {
		return d.decodeRecord(ctx, reg, data)
	}
	rec := o.prefill()
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	return o.applyBase(ctx, reg, &rec)
}

// Patch merges the properties in data into d. Keys the record leaves out
// keep their values; geometry and caches are refreshed.
func Patch(ctx context.Context, reg *Registry, d Drawable, data []byte) error {
	o := d.Base()
	if err := o.decode(ctx, reg, data); err != nil {
		return fmt.Errorf("patch %s %s: %w", d.Type(), o.ID, err)
	}
	o.SetCoords()
	if o.group != nil {
		o.group.MarkDirty()
	}
	return nil
}

func (r *Rect) toRecord(digits int) any {
	return RectRecord{
		ObjectRecord: r.baseRecord(digits),
		Rx:           geom.ToFixed(r.rx, digits),
		Ry:           geom.ToFixed(r.ry, digits),
	}
}

func (r *Rect) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := RectRecord{ObjectRecord: r.prefill(), Rx: r.rx, Ry: r.ry}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	r.rx, r.ry = rec.Rx, rec.Ry
	return r.applyBase(ctx, reg, &rec.ObjectRecord)
}

func (c *Circle) toRecord(digits int) any {
	return CircleRecord{
		ObjectRecord:     c.baseRecord(digits),
		Radius:           geom.ToFixed(c.radius, digits),
		StartAngle:       geom.ToFixed(c.StartAngle, digits),
		EndAngle:         geom.ToFixed(c.EndAngle, digits),
		CounterClockwise: c.CounterClockwise,
	}
}

func (c *Circle) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := CircleRecord{
		ObjectRecord: c.prefill(), Radius: c.radius,
		StartAngle: c.StartAngle, EndAngle: c.EndAngle, CounterClockwise: c.CounterClockwise,
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := c.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	c.StartAngle, c.EndAngle, c.CounterClockwise = rec.StartAngle, rec.EndAngle, rec.CounterClockwise
	c.setRadius(rec.Radius)
	return nil
}

func (e *Ellipse) toRecord(digits int) any {
	return EllipseRecord{
		ObjectRecord: e.baseRecord(digits),
		Rx:           geom.ToFixed(e.rx, digits),
		Ry:           geom.ToFixed(e.ry, digits),
	}
}

func (e *Ellipse) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := EllipseRecord{ObjectRecord: e.prefill(), Rx: e.rx, Ry: e.ry}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := e.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	e.SetRx(rec.Rx)
	e.SetRy(rec.Ry)
	return nil
}

func (l *Line) toRecord(digits int) any {
	return LineRecord{
		ObjectRecord: l.baseRecord(digits),
		X1:           geom.ToFixed(l.x1, digits),
		Y1:           geom.ToFixed(l.y1, digits),
		X2:           geom.ToFixed(l.x2, digits),
		Y2:           geom.ToFixed(l.y2, digits),
	}
}

// decodeRecord keeps the recorded position; the endpoints only size the box.
func (l *Line) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := LineRecord{ObjectRecord: l.prefill(), X1: l.x1, Y1: l.y1, X2: l.x2, Y2: l.y2}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	l.x1, l.y1, l.x2, l.y2 = rec.X1, rec.Y1, rec.X2, rec.Y2
	rec.Width, rec.Height = math.Abs(l.x2-l.x1), math.Abs(l.y2-l.y1)
	return l.applyBase(ctx, reg, &rec.ObjectRecord)
}

func (p *Polyline) toRecord(digits int) any {
	pts := make([]geom.Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = geom.Pt(geom.ToFixed(pt.X, digits), geom.ToFixed(pt.Y, digits))
	}
	return PolyRecord{ObjectRecord: p.baseRecord(digits), Points: pts}
}

func (p *Polyline) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := PolyRecord{ObjectRecord: p.prefill(), Points: p.Points()}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	p.setPoints(rec.Points, false)
	rec.Width, rec.Height = p.width, p.height
	return p.applyBase(ctx, reg, &rec.ObjectRecord)
}

func (p *Path) toRecord(digits int) any {
	cmds := make([]PathCommand, len(p.path))
	for i, c := range p.path {
		args := make([]float64, len(c.Args))
		for j, a := range c.Args {
			args[j] = geom.ToFixed(a, digits)
		}
		cmds[i] = PathCommand{Op: c.Op, Args: args}
	}
	return PathRecord{ObjectRecord: p.baseRecord(digits), Path: cmds}
}

func (p *Path) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := PathRecord{ObjectRecord: p.prefill(), Path: p.path}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	p.setPath(rec.Path, false)
	rec.Width, rec.Height = p.width, p.height
	return p.applyBase(ctx, reg, &rec.ObjectRecord)
}

func (t *Text) textRecord(digits int) TextRecord {
	return TextRecord{
		ObjectRecord: t.baseRecord(digits),
		Text:         t.text,
		FontSize:     t.fontSize,
		FontWeight:   t.fontWeight,
		FontFamily:   t.fontFamily,
		FontStyle:    t.fontStyle,
		LineHeight:   t.lineHeight,
		TextAlign:    t.TextAlign,
		Underline:    t.Underline,
		Overline:     t.Overline,
		Linethrough:  t.Linethrough,
	}
}

func (t *Text) toRecord(digits int) any { return t.textRecord(digits) }

func (t *Text) applyText(rec *TextRecord) {
	t.text = rec.Text
	t.fontSize = rec.FontSize
	t.fontWeight = rec.FontWeight
	t.fontFamily = rec.FontFamily
	t.fontStyle = rec.FontStyle
	t.lineHeight = rec.LineHeight
	t.TextAlign = rec.TextAlign
	t.Underline, t.Overline, t.Linethrough = rec.Underline, rec.Overline, rec.Linethrough
	t.initDimensions()
}

func (t *Text) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := t.textRecord(-1)
	rec.ClipPath = nil
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := t.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	t.applyText(&rec)
	return nil
}

func (t *Textbox) toRecord(digits int) any {
	rec := t.textRecord(digits)
	rec.MinWidth = t.MinWidth
	return rec
}

func (t *Textbox) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := t.textRecord(-1)
	rec.ClipPath = nil
	rec.MinWidth = t.MinWidth
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := t.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	t.MinWidth = rec.MinWidth
	t.applyText(&rec)
	return nil
}

func (m *Image) toRecord(digits int) any {
	return ImageRecord{
		ObjectRecord: m.baseRecord(digits),
		Src:          m.src,
		CropX:        geom.ToFixed(m.CropX, digits),
		CropY:        geom.ToFixed(m.CropY, digits),
		Filters:      slices.Clone(m.Filters),
	}
}

// decodeRecord loads a changed src through the registry's loader and runs
// the filter chain.
func (m *Image) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := ImageRecord{
		ObjectRecord: m.prefill(), Src: m.src, CropX: m.CropX, CropY: m.CropY,
		Filters: slices.Clone(m.Filters),
	}
	var size struct {
		Width  *float64 `json:"width"`
		Height *float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &size); err != nil {
		return err
	}
	if rec.Src != m.src || m.element == nil {
		if rec.Src != "" && reg.Loader != nil {
			img, err := reg.Loader.LoadImage(ctx, rec.Src)
			if err != nil {
				return fmt.Errorf("load image %q: %w", rec.Src, err)
			}
			m.element = img
			m.filtered = nil
			// a record without a size takes the bitmap's
			b := img.Bounds()
			if size.Width == nil {
				rec.Width = float64(b.Dx())
			}
			if size.Height == nil {
				rec.Height = float64(b.Dy())
			}
		}
		m.src = rec.Src
	}
	if reg.Filters != nil {
		m.backend = reg.Filters
	}
	m.CropX, m.CropY = rec.CropX, rec.CropY
	m.Filters = rec.Filters
	if err := m.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	return m.ApplyFilters(ctx)
}

func (g *Group) groupRecord(digits int) GroupRecord {
	rec := GroupRecord{
		ObjectRecord:   g.baseRecord(digits),
		Objects:        make([]json.RawMessage, 0, len(g.objects)),
		SubTargetCheck: g.SubTargetCheck,
		Interactive:    g.Interactive,
	}
	if g.LayoutManager != nil {
		rec.LayoutManager = &LayoutManagerRecord{Type: "layoutManager", Strategy: g.LayoutManager.Strategy.Name()}
	}
	for _, d := range g.objects {
		if d.Base().ExcludeFromExport {
			continue
		}
		raw, err := json.Marshal(d.Base().record(digits))
		if err != nil {
			continue
		}
		rec.Objects = append(rec.Objects, raw)
	}
	return rec
}

func (g *Group) toRecord(digits int) any { return g.groupRecord(digits) }

// decodeRecord replaces the members when the record lists objects. Members
// are stored in the group plane, so they enter without a plane change and
// the recorded box is kept as is.
func (g *Group) decodeRecord(ctx context.Context, reg *Registry, data []byte) error {
	rec := GroupRecord{
		ObjectRecord:   g.prefill(),
		SubTargetCheck: g.SubTargetCheck,
		Interactive:    g.Interactive,
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if rec.Objects != nil {
		members, err := reg.EnlivenObjects(ctx, rec.Objects)
		if err != nil {
			return err
		}
		g.restoreMembers(members)
	}
	if rec.LayoutManager != nil {
		g.LayoutManager.Strategy = StrategyByName(rec.LayoutManager.Strategy)
	}
	g.SubTargetCheck, g.Interactive = rec.SubTargetCheck, rec.Interactive
	if err := g.applyBase(ctx, reg, &rec.ObjectRecord); err != nil {
		return err
	}
	for _, d := range g.objects {
		d.Base().SetCoords()
	}
	return nil
}

func (g *Group) restoreMembers(members []Drawable) {
	for _, d := range g.objects {
		g.LayoutManager.unsubscribe(d)
		g.behaviour().exitGroup(d, true)
		d.Base().Dispose()
	}
	g.objects = g.objects[:0]
	for _, d := range g.filterObjectsBeforeEnteringGroup(members) {
		g.objects = append(g.objects, d)
		g.behaviour().enterGroup(d, false)
		g.LayoutManager.subscribe(d, g)
	}
}

// interactionState is what Clone carries over besides the record:
// selection and control styling that is not persisted.
type interactionState struct {
	Selectable              bool
	Evented                 bool
	HasControls             bool
	HasBorders              bool
	Padding                 float64
	BorderColor             string
	BorderDashArray         []float64
	BorderScaleFactor       float64
	BorderOpacityWhenMoving float64
	CornerColor             string
	CornerStrokeColor       string
	CornerStyle             string
	CornerSize              float64
	TouchCornerSize         float64
	TransparentCorners      bool
	SelectionBackground     string
	HoverCursor             string
	MoveCursor              string
	ExcludeFromExport       bool
	PerPixelTargetFind      bool
	LockMovementX           bool
	LockMovementY           bool
	LockRotation            bool
	LockScalingX            bool
	LockScalingY            bool
	LockSkewingX            bool
	LockSkewingY            bool
	LockScalingFlip         bool
	MinScaleLimit           float64
	CenteredScaling         bool
	CenteredRotation        bool
	SnapAngle               float64
	SnapThreshold           float64
	ObjectCaching           bool
	NoScaleCache            bool
}

// Clone builds an independent copy through the object's record. The copy
// gets a new ID and no canvas.
func Clone(ctx context.Context, reg *Registry, d Drawable) (Drawable, error) {
	raw, err := json.Marshal(d.Base().record(-1))
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", d.Type(), err)
	}
	out, err := reg.Enliven(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", d.Type(), err)
	}
	var state interactionState
	opt := copier.Option{DeepCopy: true}
	if err := copier.CopyWithOption(&state, d.Base(), opt); err != nil {
		return nil, fmt.Errorf("clone %s: %w", d.Type(), err)
	}
	if err := copier.CopyWithOption(out.Base(), &state, opt); err != nil {
		return nil, fmt.Errorf("clone %s: %w", d.Type(), err)
	}
	renewIDs(out)
	return out, nil
}

func renewIDs(d Drawable) {
	o := d.Base()
	o.ID = typeid.NewObjectID()
	if g, ok := d.(interface{ AsGroup() *Group }); ok {
		for _, m := range g.AsGroup().objects {
			renewIDs(m)
		}
	}
	if o.ClipPath != nil {
		renewIDs(o.ClipPath)
	}
}
