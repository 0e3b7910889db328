package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Engine holds the render engine tuning shared by a canvas and its objects.
type Engine struct {
	// Total pixel budget of one object cache.
	PerfLimitSizeTotal int `toml:"perf_limit_size_total" envconfig:"PERF_LIMIT_SIZE_TOTAL"`
	// Largest side of one object cache.
	MaxCacheSideLimit int `toml:"max_cache_side_limit" envconfig:"MAX_CACHE_SIDE_LIMIT"`
	// Smallest side of one object cache.
	MinCacheSideLimit int `toml:"min_cache_side_limit" envconfig:"MIN_CACHE_SIDE_LIMIT"`
	// Digits kept when numbers are serialized.
	NumFractionDigits int `toml:"num_fraction_digits" envconfig:"NUM_FRACTION_DIGITS"`

	DevicePixelRatio          float64 `toml:"device_pixel_ratio" envconfig:"DEVICE_PIXEL_RATIO"`
	EnableRetinaScaling       bool    `toml:"enable_retina_scaling" envconfig:"ENABLE_RETINA_SCALING"`
	BrowserShadowBlurConstant float64 `toml:"browser_shadow_blur_constant" envconfig:"BROWSER_SHADOW_BLUR_CONSTANT"`

	// Largest image side the filter backend processes before downscaling.
	FilterMaxSize int `toml:"filter_max_size" envconfig:"FILTER_MAX_SIZE"`
}

// DefaultEngine returns the stock tuning.
func DefaultEngine() *Engine {
	return &Engine{
		PerfLimitSizeTotal:        2097152,
		MaxCacheSideLimit:         4096,
		MinCacheSideLimit:         256,
		NumFractionDigits:         4,
		DevicePixelRatio:          1,
		EnableRetinaScaling:       true,
		BrowserShadowBlurConstant: 1,
		FilterMaxSize:             4096,
	}
}

// LoadEngine reads a TOML tuning file on top of the defaults, then applies
// ENGINE_* environment overrides. An empty path skips the file.
func LoadEngine(path string) (*Engine, error) {
	cfg := DefaultEngine()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read engine config: %w", err)
		}
		if err := DecodeEngine(data, cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("ENGINE", cfg); err != nil {
		return nil, fmt.Errorf("engine env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeEngine decodes TOML into cfg, keeping fields the document omits.
func DecodeEngine(data []byte, cfg *Engine) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode engine config: %w", err)
	}
	return nil
}

// Validate rejects limits that would make cache sizing meaningless.
func (e *Engine) Validate() error {
	var errs []error
	if e.PerfLimitSizeTotal <= 0 {
		errs = append(errs, errors.New("perf_limit_size_total must be positive"))
	}
	if e.MinCacheSideLimit <= 0 || e.MaxCacheSideLimit < e.MinCacheSideLimit {
		errs = append(errs, fmt.Errorf("cache side limits %d..%d are invalid", e.MinCacheSideLimit, e.MaxCacheSideLimit))
	}
	if e.DevicePixelRatio <= 0 {
		errs = append(errs, errors.New("device_pixel_ratio must be positive"))
	}
	return errors.Join(errs...)
}

// RetinaScaling is the device pixel ratio when retina scaling is enabled.
func (e *Engine) RetinaScaling() float64 {
	if e.EnableRetinaScaling && e.DevicePixelRatio > 0 {
		return e.DevicePixelRatio
	}
	return 1
}
