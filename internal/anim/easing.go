package anim

import "math"

// Easing names accepted by Ease.
const (
	Linear          = "linear"
	EaseInQuad      = "easeInQuad"
	EaseOutQuad     = "easeOutQuad"
	EaseInOutQuad   = "easeInOutQuad"
	EaseInCubic     = "easeInCubic"
	EaseOutCubic    = "easeOutCubic"
	EaseInOutCubic  = "easeInOutCubic"
	EaseInQuart     = "easeInQuart"
	EaseOutQuart    = "easeOutQuart"
	EaseInOutQuart  = "easeInOutQuart"
	EaseInQuint     = "easeInQuint"
	EaseOutQuint    = "easeOutQuint"
	EaseInOutQuint  = "easeInOutQuint"
	EaseInSine      = "easeInSine"
	EaseOutSine     = "easeOutSine"
	EaseInOutSine   = "easeInOutSine"
	EaseInExpo      = "easeInExpo"
	EaseOutExpo     = "easeOutExpo"
	EaseInOutExpo   = "easeInOutExpo"
	EaseInCirc      = "easeInCirc"
	EaseOutCirc     = "easeOutCirc"
	EaseInOutCirc   = "easeInOutCirc"
	EaseInElastic   = "easeInElastic"
	EaseOutElastic  = "easeOutElastic"
	EaseInBack      = "easeInBack"
	EaseOutBack     = "easeOutBack"
	EaseInOutBack   = "easeInOutBack"
	EaseInBounce    = "easeInBounce"
	EaseOutBounce   = "easeOutBounce"
	EaseInOutBounce = "easeInOutBounce"
)

const (
	backC1 = 1.70158
	backC3 = backC1 + 1
)

// Ease maps progress t in [0, 1] through the named curve. Unknown names
// are linear.
func Ease(name string, t float64) float64 {
	switch name {
	case EaseInQuad:
		return t * t
	case EaseOutQuad:
		return t * (2 - t)
	case EaseInOutQuad:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t

	case EaseInCubic:
		return t * t * t
	case EaseOutCubic:
		return 1 - math.Pow(1-t, 3)
	case EaseInOutCubic:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2

	case EaseInQuart:
		return math.Pow(t, 4)
	case EaseOutQuart:
		return 1 - math.Pow(1-t, 4)
	case EaseInOutQuart:
		if t < 0.5 {
			return 8 * math.Pow(t, 4)
		}
		return 1 - math.Pow(-2*t+2, 4)/2

	case EaseInQuint:
		return math.Pow(t, 5)
	case EaseOutQuint:
		return 1 - math.Pow(1-t, 5)
	case EaseInOutQuint:
		if t < 0.5 {
			return 16 * math.Pow(t, 5)
		}
		return 1 - math.Pow(-2*t+2, 5)/2

	case EaseInSine:
		return 1 - math.Cos(t*math.Pi/2)
	case EaseOutSine:
		return math.Sin(t * math.Pi / 2)
	case EaseInOutSine:
		return -(math.Cos(math.Pi*t) - 1) / 2

	case EaseInExpo:
		if t == 0 {
			return 0
		}
		return math.Pow(2, 10*t-10)
	case EaseOutExpo:
		if t == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	case EaseInOutExpo:
		switch {
		case t == 0 || t == 1:
			return t
		case t < 0.5:
			return math.Pow(2, 20*t-10) / 2
		}
		return (2 - math.Pow(2, -20*t+10)) / 2

	case EaseInCirc:
		return 1 - math.Sqrt(1-t*t)
	case EaseOutCirc:
		return math.Sqrt(1 - math.Pow(t-1, 2))
	case EaseInOutCirc:
		if t < 0.5 {
			return (1 - math.Sqrt(1-math.Pow(2*t, 2))) / 2
		}
		return (math.Sqrt(1-math.Pow(-2*t+2, 2)) + 1) / 2

	case EaseInElastic:
		if t == 0 || t == 1 {
			return t
		}
		c4 := (2 * math.Pi) / 3
		return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*c4)
	case EaseOutElastic:
		if t == 0 || t == 1 {
			return t
		}
		c4 := (2 * math.Pi) / 3
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1

	case EaseInBack:
		return backC3*t*t*t - backC1*t*t
	case EaseOutBack:
		t2 := t - 1
		return 1 + backC3*t2*t2*t2 + backC1*t2*t2
	case EaseInOutBack:
		c2 := backC1 * 1.525
		if t < 0.5 {
			return (math.Pow(2*t, 2) * ((c2+1)*2*t - c2)) / 2
		}
		return (math.Pow(2*t-2, 2)*((c2+1)*(t*2-2)+c2) + 2) / 2

	case EaseInBounce:
		return 1 - bounceOut(1-t)
	case EaseOutBounce:
		return bounceOut(t)
	case EaseInOutBounce:
		if t < 0.5 {
			return (1 - bounceOut(1-2*t)) / 2
		}
		return (1 + bounceOut(2*t-1)) / 2
	}
	return t
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	}
	t -= 2.625 / d1
	return n1*t*t + 0.984375
}
