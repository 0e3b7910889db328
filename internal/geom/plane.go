package geom

// CalcPlaneChangeMatrix returns the matrix re-expressing coordinates of plane
// from in plane to, i.e. invert(to) * from. Nil means the root plane.
func CalcPlaneChangeMatrix(from, to *Matrix2D) Matrix2D {
	f, t := Identity(), Identity()
	if from != nil {
		f = *from
	}
	if to != nil {
		t = *to
	}
	return t.Invert().Multiply(f)
}

// SendPointToPlane moves a point from one plane to another.
func SendPointToPlane(p Point, from, to *Matrix2D) Point {
	return p.Transform(CalcPlaneChangeMatrix(from, to), false)
}

// SendVectorToPlane is SendPointToPlane without the translation part.
func SendVectorToPlane(p Point, from, to *Matrix2D) Point {
	return p.Transform(CalcPlaneChangeMatrix(from, to), true)
}

// Ref returns a pointer to a copy of m, handy for the plane helpers.
func Ref(m Matrix2D) *Matrix2D {
	return &m
}
