package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#f00", Color{R: 255, A: 1}},
		{"#00ff0080", Color{G: 255, A: 128.0 / 255}},
		{"#0000FF", Color{B: 255, A: 1}},
		{"rgb(10, 20, 30)", Color{R: 10, G: 20, B: 30, A: 1}},
		{"rgba(10,20,30,0.5)", Color{R: 10, G: 20, B: 30, A: 0.5}},
		{"rgb(100%, 0%, 50%)", Color{R: 255, B: 128, A: 1}},
		{"hsl(120, 100%, 50%)", Color{G: 255, A: 1}},
		{"hsla(0, 0%, 100%, 0.25)", Color{R: 255, G: 255, B: 255, A: 0.25}},
		{"transparent", Color{}},
		{"Navy", Color{B: 128, A: 1}},
		{"ff8800", Color{R: 255, G: 136, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseUnrecognizedFallsBackToBlack(t *testing.T) {
	for _, in := range []string{"", "not-a-color", "#12", "rgb(1,2)"} {
		c := Parse(in)
		assert.True(t, c.Unrecognized, in)
		assert.Equal(t, Black.Std(), c.Std(), in)
	}
}

func TestFormat(t *testing.T) {
	c := Color{R: 255, G: 136, B: 0, A: 0.5}
	assert.Equal(t, "rgba(255,136,0,0.5)", c.ToRgba())
	assert.Equal(t, "rgb(255,136,0)", c.ToRgb())
	assert.Equal(t, "FF8800", c.ToHex())
	assert.Equal(t, "FF880080", c.ToHexa())
	assert.Equal(t, "rgba(255,136,0,0.5)", c.ToLive())
	assert.Equal(t, "rgb(255,136,0)", c.WithAlpha(2).ToLive())
}

func TestIsTransparent(t *testing.T) {
	assert.True(t, IsTransparent("transparent"))
	assert.True(t, IsTransparent("rgba(1,2,3,0)"))
	assert.False(t, IsTransparent("red"))
	assert.False(t, IsTransparent("garbage"))
}
