package svgimport

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\n' || c == '\r' || c == '\t'
}

// parseNumber reads a length. A trailing unit such as px is ignored.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, n := strconv.ParseFloat([]byte(s))
	if n == 0 {
		return 0, fmt.Errorf("%w: number %q", ErrSyntax, s)
	}
	return v, nil
}

// parseNumbers reads a comma or whitespace separated number list.
func parseNumbers(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := 0
	for {
		for i < len(b) && isSeparator(b[i]) {
			i++
		}
		if i >= len(b) {
			return out, nil
		}
		v, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, fmt.Errorf("%w: number list %q at %d", ErrSyntax, s, i)
		}
		out = append(out, v)
		i += n
	}
}

// parsePoints reads a points attribute. A dangling odd coordinate is
// dropped, as renderers do.
func parsePoints(s string) ([]geom.Point, error) {
	nums, err := parseNumbers(s)
	if err != nil {
		return nil, err
	}
	points := make([]geom.Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		points = append(points, geom.Pt(nums[i], nums[i+1]))
	}
	return points, nil
}

// parseTransform reads a transform list into one matrix. Functions apply
// right to left, so "translate(10) scale(2)" scales first.
func parseTransform(s string) (geom.Matrix2D, error) {
	m := geom.Identity()
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return m, fmt.Errorf("%w: transform %q", ErrSyntax, s)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumbers(rest[open+1 : end])
		if err != nil {
			return m, err
		}
		t, err := transformFunc(name, args)
		if err != nil {
			return m, err
		}
		m = geom.Multiply(m, t, false)
		rest = strings.TrimLeft(rest[end+1:], " ,\n\r\t")
	}
	return m, nil
}

func transformFunc(name string, a []float64) (geom.Matrix2D, error) {
	arity := func(counts ...int) error {
		for _, c := range counts {
			if len(a) == c {
				return nil
			}
		}
		return fmt.Errorf("%w: %s takes %v arguments, got %d", ErrSyntax, name, counts, len(a))
	}
	switch name {
	case "matrix":
		if err := arity(6); err != nil {
			return geom.Identity(), err
		}
		return geom.Matrix2D{a[0], a[1], a[2], a[3], a[4], a[5]}, nil
	case "translate":
		if err := arity(1, 2); err != nil {
			return geom.Identity(), err
		}
		if len(a) == 1 {
			return geom.Translate(a[0], 0), nil
		}
		return geom.Translate(a[0], a[1]), nil
	case "scale":
		if err := arity(1, 2); err != nil {
			return geom.Identity(), err
		}
		if len(a) == 1 {
			return geom.Scale(a[0], a[0]), nil
		}
		return geom.Scale(a[0], a[1]), nil
	case "rotate":
		if err := arity(1, 3); err != nil {
			return geom.Identity(), err
		}
		if len(a) == 1 {
			return geom.Rotate(a[0], geom.Point{}), nil
		}
		return geom.Rotate(a[0], geom.Pt(a[1], a[2])), nil
	case "skewX":
		if err := arity(1); err != nil {
			return geom.Identity(), err
		}
		return geom.SkewX(a[0]), nil
	case "skewY":
		if err := arity(1); err != nil {
			return geom.Identity(), err
		}
		return geom.SkewY(a[0]), nil
	}
	return geom.Identity(), fmt.Errorf("%w: unknown transform %q", ErrSyntax, name)
}
