package geom

import (
	"encoding/json"
	"strconv"
)

// Origin is an anchor along one axis: "left", "center", "right", "top",
// "bottom", or a number in [0, 1] where 0 is the leading edge.
type Origin string

const (
	OriginLeft   Origin = "left"
	OriginCenter Origin = "center"
	OriginRight  Origin = "right"
	OriginTop    Origin = "top"
	OriginBottom Origin = "bottom"
)

// ResolveOrigin maps an origin onto [-0.5, 0.5].
func ResolveOrigin(o Origin) float64 {
	switch o {
	case OriginLeft, OriginTop:
		return -0.5
	case OriginCenter, "":
		return 0
	case OriginRight, OriginBottom:
		return 0.5
	}
	if v, err := strconv.ParseFloat(string(o), 64); err == nil {
		return v - 0.5
	}
	return 0
}

// NumericOrigin builds an origin from a value in [0, 1].
func NumericOrigin(v float64) Origin {
	return Origin(strconv.FormatFloat(v, 'f', -1, 64))
}

// InvertOrigin mirrors an origin across the center.
func InvertOrigin(o Origin) Origin {
	return NumericOrigin(-ResolveOrigin(o) + 0.5)
}

// MarshalJSON emits numeric origins as JSON numbers.
func (o Origin) MarshalJSON() ([]byte, error) {
	if v, err := strconv.ParseFloat(string(o), 64); err == nil {
		return json.Marshal(v)
	}
	return json.Marshal(string(o))
}

// UnmarshalJSON accepts a keyword or a number.
func (o *Origin) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = Origin(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = NumericOrigin(v)
	return nil
}
