package scene

import (
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// LayoutStrategy computes where a group goes and how big it is.
type LayoutStrategy interface {
	// Name is the persisted strategy type.
	Name() string
	// CalcLayoutResult returns nil when no layout should happen.
	CalcLayoutResult(ctx *LayoutContext, objects []Drawable) *LayoutResult
	ShouldLayoutClipPath(ctx *LayoutContext) bool
}

// Stock strategies.
var (
	FitContent  LayoutStrategy = &FitContentLayout{}
	Fixed       LayoutStrategy = &FixedLayout{}
	ClipPathFit LayoutStrategy = &ClipPathLayout{}
)

// StrategyByName resolves a persisted strategy name, defaulting to FitContent.
func StrategyByName(name string) LayoutStrategy {
	switch name {
	case Fixed.Name():
		return Fixed
	case ClipPathFit.Name():
		return ClipPathFit
	}
	return FitContent
}

func shouldPerformLayoutBase(ctx *LayoutContext) bool {
	return ctx.Type == LayoutInitialization || ctx.Type == LayoutImperative ||
		(ctx.PrevStrategy != nil && ctx.Strategy != ctx.PrevStrategy)
}

func shouldLayoutClipPathBase(ctx *LayoutContext) bool {
	cp := ctx.Target.ClipPath
	return ctx.Type != LayoutInitialization && cp != nil && !cp.Base().AbsolutePositioned
}

// calcBoundingBox unions the member bounds in the group plane. initialSize
// may replace the measured size on initialization.
func calcBoundingBox(ctx *LayoutContext, objects []Drawable, initialSize func(geom.Point) geom.Point) *LayoutResult {
	if ctx.Type == LayoutImperative && ctx.Overrides != nil {
		return ctx.Overrides
	}
	if len(objects) == 0 {
		return nil
	}
	target := ctx.Target
	pts := make([]geom.Point, 0, 2*len(objects))
	for _, d := range objects {
		a, b := ObjectBounds(target, d)
		pts = append(pts, a, b)
	}
	box := geom.MakeBoundingBoxFromPoints(pts)
	size := geom.Pt(box.Width, box.Height)
	center := geom.Pt(box.Left, box.Top).Add(size.ScalarDivide(2))
	if ctx.Type == LayoutInitialization {
		actual := size
		if initialSize != nil {
			actual = initialSize(size)
		}
		return &LayoutResult{Center: center, Size: actual}
	}
	return &LayoutResult{Center: center.Transform(target.CalcOwnMatrix(), false), Size: size}
}

// FitContentLayout resizes the group around its members on every change.
type FitContentLayout struct{}

func (*FitContentLayout) Name() string { return "fit-content" }

func (*FitContentLayout) CalcLayoutResult(ctx *LayoutContext, objects []Drawable) *LayoutResult {
	return calcBoundingBox(ctx, objects, nil)
}

func (*FitContentLayout) ShouldLayoutClipPath(ctx *LayoutContext) bool {
	return shouldLayoutClipPathBase(ctx)
}

// FixedLayout keeps the group's size once set; members only move it on
// initialization or explicit relayout.
type FixedLayout struct{}

func (*FixedLayout) Name() string { return "fixed" }

func (*FixedLayout) CalcLayoutResult(ctx *LayoutContext, objects []Drawable) *LayoutResult {
	if !shouldPerformLayoutBase(ctx) {
		return nil
	}
	target := ctx.Target
	return calcBoundingBox(ctx, objects, func(size geom.Point) geom.Point {
		w, h := target.width, target.height
		if w == 0 {
			w = size.X
		}
		if h == 0 {
			h = size.Y
		}
		return geom.Pt(w, h)
	})
}

func (*FixedLayout) ShouldLayoutClipPath(ctx *LayoutContext) bool {
	return shouldLayoutClipPathBase(ctx)
}

// ClipPathLayout sizes the group to its clip path.
type ClipPathLayout struct{}

func (*ClipPathLayout) Name() string { return "clip-path" }

func (*ClipPathLayout) CalcLayoutResult(ctx *LayoutContext, objects []Drawable) *LayoutResult {
	target := ctx.Target
	clip := target.ClipPath
	if clip == nil || !shouldPerformLayoutBase(ctx) {
		return nil
	}
	cb := clip.Base()
	a, b := ObjectBounds(target, clip)
	box := geom.MakeBoundingBoxFromPoints([]geom.Point{a, b})
	size := geom.Pt(box.Width, box.Height)
	if cb.AbsolutePositioned {
		var to *geom.Matrix2D
		if target.group != nil {
			to = geom.Ref(target.group.CalcTransformMatrix(false))
		}
		return &LayoutResult{Center: geom.SendPointToPlane(cb.RelativeCenterPoint(), nil, to), Size: size}
	}
	clipCenter := cb.RelativeCenterPoint().Transform(target.CalcOwnMatrix(), true)
	res := calcBoundingBox(ctx, objects, nil)
	var center, correction geom.Point
	if res != nil {
		center, correction = res.Center, res.Correction
	}
	return &LayoutResult{
		Center:     center.Add(clipCenter),
		Correction: correction.Subtract(clipCenter),
		Size:       size,
	}
}

func (*ClipPathLayout) ShouldLayoutClipPath(*LayoutContext) bool { return false }
