package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// PathCommand is one absolute drawing command: M, L, C, Q or Z with its
// coordinates. It serializes as ["C", x1, y1, x2, y2, x, y].
type PathCommand struct {
	Op   byte
	Args []float64
}

func (c PathCommand) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(c.Args)+1)
	out = append(out, string(c.Op))
	for _, a := range c.Args {
		out = append(out, a)
	}
	return json.Marshal(out)
}

func (c *PathCommand) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("path command: empty")
	}
	op, ok := raw[0].(string)
	if !ok || len(op) != 1 {
		return fmt.Errorf("path command: bad operator %v", raw[0])
	}
	c.Op = op[0]
	c.Args = c.Args[:0]
	for _, v := range raw[1:] {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("path command %s: bad argument %v", op, v)
		}
		c.Args = append(c.Args, f)
	}
	return nil
}

var commandArgs = map[byte]int{
	'M': 2, 'Z': 0, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7,
}

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t') {
		i++
	}
	return i
}

// ParsePath reads SVG path data into absolute M, L, C, Q and Z commands.
// Relative commands are resolved, H and V become lines, S and T get their
// reflected control points and arcs are converted to cubic curves.
func ParsePath(d string) ([]PathCommand, error) {
	path := []byte(d)
	i := skipCommaWhitespace(path)
	if i >= len(path) {
		return nil, nil
	}
	if path[i] < 'A' {
		return nil, fmt.Errorf("parse path: path should start with a command")
	}

	var out []PathCommand
	var f [7]float64
	var p0, start, ctrl geom.Point
	prevCmd := byte('z')
	for {
		i += skipCommaWhitespace(path[i:])
		if i >= len(path) {
			break
		}
		cmd := prevCmd
		repeat := true
		c := path[i]
		if cmd == 'z' || cmd == 'Z' || !(c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+') {
			cmd = c
			repeat = false
			i++
			i += skipCommaWhitespace(path[i:])
		}
		upper := cmd
		if 'a' <= cmd && cmd <= 'z' {
			upper -= 'a' - 'A'
		}
		n, known := commandArgs[upper]
		if !known {
			return nil, fmt.Errorf("parse path: unknown command %q at position %d", cmd, i)
		}
		for j := 0; j < n; j++ {
			if upper == 'A' && (j == 3 || j == 4) {
				if i >= len(path) || (path[i] != '0' && path[i] != '1') {
					return nil, fmt.Errorf("parse path: arc flags should be 0 or 1 at position %d", i+1)
				}
				f[j] = float64(path[i] - '0')
				i++
			} else {
				v, m := strconv.ParseFloat(path[i:])
				if m == 0 {
					if repeat && j == 0 {
						return nil, fmt.Errorf("parse path: unknown command %q at position %d", path[i], i+1)
					}
					return nil, fmt.Errorf("parse path: %d numbers should follow %q at position %d", n, cmd, i+1)
				}
				f[j] = v
				i += m
			}
			i += skipCommaWhitespace(path[i:])
		}

		rel := cmd != upper
		abs := func(x, y float64) geom.Point {
			if rel {
				return geom.Pt(x+p0.X, y+p0.Y)
			}
			return geom.Pt(x, y)
		}
		var p1 geom.Point
		switch upper {
		case 'M':
			p1 = abs(f[0], f[1])
			start = p1
			out = append(out, PathCommand{'M', []float64{p1.X, p1.Y}})
			// extra pairs after a moveto are implicit linetos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'Z':
			p1 = start
			out = append(out, PathCommand{Op: 'Z'})
		case 'L':
			p1 = abs(f[0], f[1])
			out = append(out, PathCommand{'L', []float64{p1.X, p1.Y}})
		case 'H':
			p1 = geom.Pt(f[0], p0.Y)
			if rel {
				p1.X += p0.X
			}
			out = append(out, PathCommand{'L', []float64{p1.X, p1.Y}})
		case 'V':
			p1 = geom.Pt(p0.X, f[0])
			if rel {
				p1.Y += p0.Y
			}
			out = append(out, PathCommand{'L', []float64{p1.X, p1.Y}})
		case 'C':
			c1, c2 := abs(f[0], f[1]), abs(f[2], f[3])
			p1 = abs(f[4], f[5])
			out = append(out, PathCommand{'C', []float64{c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y}})
			ctrl = c2
		case 'S':
			c1 := p0
			if prevCmd == 'C' || prevCmd == 'c' || prevCmd == 'S' || prevCmd == 's' {
				c1 = p0.ScalarMultiply(2).Subtract(ctrl)
			}
			c2 := abs(f[0], f[1])
			p1 = abs(f[2], f[3])
			out = append(out, PathCommand{'C', []float64{c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y}})
			ctrl = c2
		case 'Q':
			q := abs(f[0], f[1])
			p1 = abs(f[2], f[3])
			out = append(out, PathCommand{'Q', []float64{q.X, q.Y, p1.X, p1.Y}})
			ctrl = q
		case 'T':
			q := p0
			if prevCmd == 'Q' || prevCmd == 'q' || prevCmd == 'T' || prevCmd == 't' {
				q = p0.ScalarMultiply(2).Subtract(ctrl)
			}
			p1 = abs(f[0], f[1])
			out = append(out, PathCommand{'Q', []float64{q.X, q.Y, p1.X, p1.Y}})
			ctrl = q
		case 'A':
			p1 = abs(f[5], f[6])
			out = append(out, arcToBeziers(p0, p1, f[0], f[1], f[2], f[3] == 1, f[4] == 1)...)
		}
		prevCmd = cmd
		p0 = p1
	}
	return out, nil
}

// arcToBeziers converts an SVG endpoint arc into cubic curves of at most
// a quarter turn each.
func arcToBeziers(from, to geom.Point, rx, ry, rotation float64, large, sweep bool) []PathCommand {
	if from.Eq(to) {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []PathCommand{{'L', []float64{to.X, to.Y}}}
	}
	phi := geom.DegreesToRadians(rotation)
	sinPhi, cosPhi := geom.Sin(phi), geom.Cos(phi)
	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}
	numer := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(math.Max(0, numer/den))
	if large == sweep {
		coef = -coef
	}
	cxp, cyp := coef*rx*y1/ry, -coef*ry*x1/rx
	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	theta1 := math.Atan2((y1-cyp)/ry, (x1-cxp)/rx)
	delta := math.Atan2((-y1-cyp)/ry, (-x1-cxp)/rx) - theta1
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(segments)
	t := 4.0 / 3 * math.Tan(step/4)
	mapPt := func(x, y float64) (float64, float64) {
		return cx + rx*x*cosPhi - ry*y*sinPhi, cy + rx*x*sinPhi + ry*y*cosPhi
	}
	out := make([]PathCommand, 0, segments)
	a := theta1
	for s := 0; s < segments; s++ {
		b := a + step
		cosA, sinA := math.Cos(a), math.Sin(a)
		cosB, sinB := math.Cos(b), math.Sin(b)
		c1x, c1y := mapPt(cosA-t*sinA, sinA+t*cosA)
		c2x, c2y := mapPt(cosB+t*sinB, sinB-t*cosB)
		ex, ey := mapPt(cosB, sinB)
		if s == segments-1 {
			ex, ey = to.X, to.Y
		}
		out = append(out, PathCommand{'C', []float64{c1x, c1y, c2x, c2y, ex, ey}})
		a = b
	}
	return out
}

// JoinPath renders commands as SVG path data.
func JoinPath(cmds []PathCommand, digits int) string {
	parts := make([]string, 0, len(cmds))
	for _, c := range cmds {
		s := []string{string(c.Op)}
		for _, a := range c.Args {
			s = append(s, num(geom.ToFixed(a, digits)))
		}
		parts = append(parts, strings.Join(s, " "))
	}
	return strings.Join(parts, " ")
}

// CurveBounds returns the endpoints and axis extrema of a cubic curve.
func CurveBounds(p0, c1, c2, p3 geom.Point) []geom.Point {
	pts := []geom.Point{p0, p3}
	at := func(t float64) geom.Point {
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		return geom.Pt(
			a*p0.X+b*c1.X+c*c2.X+d*p3.X,
			a*p0.Y+b*c1.Y+c*c2.Y+d*p3.Y)
	}
	for _, axis := range [][4]float64{{p0.X, c1.X, c2.X, p3.X}, {p0.Y, c1.Y, c2.Y, p3.Y}} {
		for _, t := range derivativeRoots(axis[0], axis[1], axis[2], axis[3]) {
			pts = append(pts, at(t))
		}
	}
	return pts
}

// derivativeRoots solves B'(t) = 0 on (0, 1) for one axis of a cubic.
func derivativeRoots(p0, p1, p2, p3 float64) []float64 {
	a := 3 * (-p0 + 3*p1 - 3*p2 + p3)
	b := 6 * (p0 - 2*p1 + p2)
	c := 3 * (p1 - p0)
	var roots []float64
	inRange := func(t float64) {
		if t > 0 && t < 1 {
			roots = append(roots, t)
		}
	}
	if math.Abs(a) < 1e-12 {
		if math.Abs(b) > 1e-12 {
			inRange(-c / b)
		}
		return roots
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return roots
	}
	sq := math.Sqrt(disc)
	inRange((-b + sq) / (2 * a))
	inRange((-b - sq) / (2 * a))
	return roots
}

// Path is a shape drawn from path commands. Commands are in their own
// plane; PathOffset, the center of their bounds, maps to the object's
// center.
type Path struct {
	Object

	path       []PathCommand
	pathOffset geom.Point
}

// NewPath parses d and positions the path where its commands draw.
func NewPath(d string) (*Path, error) {
	cmds, err := ParsePath(d)
	if err != nil {
		return nil, err
	}
	return NewPathFromCommands(cmds), nil
}

// NewPathFromCommands builds a path from absolute commands.
func NewPathFromCommands(cmds []PathCommand) *Path {
	p := &Path{}
	p.init(p)
	p.setPath(cmds, true)
	return p
}

func (p *Path) Type() string { return "path" }

// Commands returns the absolute commands.
func (p *Path) Commands() []PathCommand { return p.path }

// PathOffset is the center of the commands' bounds.
func (p *Path) PathOffset() geom.Point { return p.pathOffset }

// SetPath replaces the commands and refits the box.
func (p *Path) SetPath(cmds []PathCommand, adjustPosition bool) {
	p.setPath(cmds, adjustPosition)
	p.MarkDirty()
}

func (p *Path) setPath(cmds []PathCommand, adjustPosition bool) {
	p.path = cmds
	box := p.calcBoundsFromPath()
	p.SetWidth(box.Width)
	p.SetHeight(box.Height)
	p.pathOffset = box.Center()
	if adjustPosition {
		p.SetPositionByOrigin(p.pathOffset, geom.OriginCenter, geom.OriginCenter)
	}
}

func (p *Path) calcBoundsFromPath() geom.Rect {
	var bounds []geom.Point
	var cur, start geom.Point
	for _, c := range p.path {
		a := c.Args
		switch c.Op {
		case 'M':
			cur = geom.Pt(a[0], a[1])
			start = cur
			bounds = append(bounds, cur)
		case 'L':
			cur = geom.Pt(a[0], a[1])
			bounds = append(bounds, cur)
		case 'C':
			end := geom.Pt(a[4], a[5])
			bounds = append(bounds, CurveBounds(cur, geom.Pt(a[0], a[1]), geom.Pt(a[2], a[3]), end)...)
			cur = end
		case 'Q':
			q, end := geom.Pt(a[0], a[1]), geom.Pt(a[2], a[3])
			// elevate to cubic
			c1 := cur.Add(q.Subtract(cur).ScalarMultiply(2.0 / 3))
			c2 := end.Add(q.Subtract(end).ScalarMultiply(2.0 / 3))
			bounds = append(bounds, CurveBounds(cur, c1, c2, end)...)
			cur = end
		case 'Z':
			cur = start
		}
	}
	if len(bounds) == 0 {
		return geom.Rect{}
	}
	return geom.MakeBoundingBoxFromPoints(bounds)
}

func (p *Path) complexity() int { return len(p.path) }

func (p *Path) DrawShape(ctx surface.Context) {
	l, t := -p.pathOffset.X, -p.pathOffset.Y
	ctx.BeginPath()
	for _, c := range p.path {
		a := c.Args
		switch c.Op {
		case 'M':
			ctx.MoveTo(a[0]+l, a[1]+t)
		case 'L':
			ctx.LineTo(a[0]+l, a[1]+t)
		case 'C':
			ctx.BezierCurveTo(a[0]+l, a[1]+t, a[2]+l, a[3]+t, a[4]+l, a[5]+t)
		case 'Q':
			ctx.QuadraticCurveTo(a[0]+l, a[1]+t, a[2]+l, a[3]+t)
		case 'Z':
			ctx.ClosePath()
		}
	}
	p.RenderPaintInOrder(ctx)
}

func (p *Path) svgAdditionalTransform(digits int) string {
	return fmt.Sprintf("translate(%s, %s)",
		num(geom.ToFixed(-p.pathOffset.X, digits)), num(geom.ToFixed(-p.pathOffset.Y, digits)))
}

func (p *Path) svgElement(common string, digits int) string {
	return fmt.Sprintf(`<path %sd="%s" stroke-linecap="round" />`+"\n", common, JoinPath(p.path, digits))
}
