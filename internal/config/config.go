// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Layout  LayoutConfig  `yaml:"layout"`
	Network NetworkConfig `yaml:"network"`
	Export  ExportConfig  `yaml:"export"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" validate:"required"`
	Width      int    `yaml:"width" validate:"min=64,max=16384"`
	Height     int    `yaml:"height" validate:"min=64,max=16384"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds rendering settings.
type RenderConfig struct {
	Use2D            bool       `yaml:"use_2d"`
	Background       [4]float32 `yaml:"background" validate:"dive,min=0,max=1"`
	FastEdges        bool       `yaml:"fast_edges"`
	EdgesIntensity   float32    `yaml:"edges_intensity" validate:"min=0"`
	AdditiveBlending bool       `yaml:"additive_blending"`
	PickingRatio     float32    `yaml:"picking_ratio" validate:"gt=0,max=1"`
	MinDPR           float32    `yaml:"min_dpr" validate:"gte=1"`
}

// CameraConfig holds camera settings.
type CameraConfig struct {
	Distance  float32 `yaml:"distance" validate:"gt=0"`
	MinZoom   float32 `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom   float32 `yaml:"max_zoom" validate:"gtfield=MinZoom"`
	WheelStep float32 `yaml:"wheel_step" validate:"gt=0"`
}

// LayoutConfig holds layout worker and interpolation settings.
type LayoutConfig struct {
	Enabled bool `yaml:"enabled"`
	// Engine is the worker engine: force3d or eades.
	Engine string `yaml:"engine" validate:"oneof=force3d eades"`
	// Address of an out-of-process worker (tcp:// or ipc://). Empty runs
	// the worker in-process.
	Address       string        `yaml:"address"`
	TickRate      float64       `yaml:"tick_rate" validate:"gt=0,max=1000"`
	Interpolation float32       `yaml:"interpolation" validate:"gt=0,max=1"`
	Threshold     float32       `yaml:"threshold" validate:"gt=0"`
	StepInterval  time.Duration `yaml:"step_interval" validate:"gt=0"`
	Seed          uint64        `yaml:"seed"`
}

// NetworkConfig holds network input settings.
type NetworkConfig struct {
	// Input is a JSON construction input. Empty generates a network.
	Input         string  `yaml:"input"`
	ColorScale    float32 `yaml:"color_scale" validate:"gt=0"`
	GenerateNodes int     `yaml:"generate_nodes" validate:"min=0"`
	GenerateEdges int     `yaml:"generate_edges" validate:"min=0"`
	Seed          uint64  `yaml:"seed"`
}

// ExportConfig holds figure export defaults.
type ExportConfig struct {
	Dir         string  `yaml:"dir"`
	Scale       float32 `yaml:"scale" validate:"gt=0"`
	Supersample float32 `yaml:"supersample" validate:"gte=1,max=16"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Listen address for /metrics, e.g. ":9464". Empty disables it.
	Listen string `yaml:"listen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "netviz",
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Render: RenderConfig{
			Background:     [4]float32{0.5, 0.5, 0.5, 1.0},
			EdgesIntensity: 1.0,
			PickingRatio:   0.25,
			MinDPR:         1.0,
		},
		Camera: CameraConfig{
			Distance:  450,
			MinZoom:   0.01,
			MaxZoom:   100,
			WheelStep: 0.15,
		},
		Layout: LayoutConfig{
			Enabled:       true,
			Engine:        "force3d",
			TickRate:      60,
			Interpolation: 0.025,
			Threshold:     1.0,
			StepInterval:  100 * time.Millisecond,
			Seed:          1,
		},
		Network: NetworkConfig{
			ColorScale:    1,
			GenerateNodes: 2000,
			GenerateEdges: 4000,
			Seed:          1,
		},
		Export: ExportConfig{
			Dir:         ".",
			Scale:       1,
			Supersample: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
