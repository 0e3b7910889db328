package geom

import "math"

const (
	halfPi  = math.Pi / 2
	piBy180 = math.Pi / 180
)

// Cos returns exact values at quarter turns so callers can compare against 0 and ±1.
func Cos(angle float64) float64 {
	if angle == 0 {
		return 1
	}
	switch math.Abs(angle) / halfPi {
	case 1, 3:
		return 0
	case 2:
		return -1
	}
	return math.Cos(angle)
}

// Sin returns exact values at quarter turns.
func Sin(angle float64) float64 {
	if angle == 0 {
		return 0
	}
	sign := 1.0
	if angle < 0 {
		sign = -1
	}
	switch math.Abs(angle) / halfPi {
	case 1:
		return sign
	case 2:
		return 0
	case 3:
		return -sign
	}
	return math.Sin(angle)
}

func DegreesToRadians(deg float64) float64 {
	return deg * piBy180
}

func RadiansToDegrees(rad float64) float64 {
	return rad / piBy180
}
