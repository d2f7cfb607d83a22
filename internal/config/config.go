// Package config handles viewer configuration loading and management.
package config

import (
	"github.com/Faultbox/facemorph/internal/engine/camera"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/internal/sim"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Morph   MorphConfig   `yaml:"morph"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CameraConfig holds orbit camera tuning.
type CameraConfig struct {
	Damping       float32 `yaml:"damping"`
	DefaultRadius float32 `yaml:"default_radius"`
	MinRadius     float32 `yaml:"min_radius"`
	MaxRadius     float32 `yaml:"max_radius"`
	RotateSpeed   float32 `yaml:"rotate_speed"`
	ZoomSpeed     float32 `yaml:"zoom_speed"`
	PoleEpsilon   float32 `yaml:"pole_epsilon"`
}

// MorphConfig holds morph engine settings.
type MorphConfig struct {
	HistoryLimit  int     `yaml:"history_limit"`
	ChangeEpsilon float32 `yaml:"change_epsilon"`
	Incremental   bool    `yaml:"incremental"`
}

// DataConfig holds input and session paths.
type DataConfig struct {
	FlameDir      string `yaml:"flame_dir"`    // FLAME web export directory
	SessionPath   string `yaml:"session_path"` // empty disables persistence
	WatchSession  bool   `yaml:"watch_session"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	cam := camera.DefaultSettings()
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			Damping:       cam.Damping,
			DefaultRadius: cam.DefaultRadius,
			MinRadius:     cam.MinRadius,
			MaxRadius:     cam.MaxRadius,
			RotateSpeed:   cam.RotateSpeed,
			ZoomSpeed:     cam.ZoomSpeed,
			PoleEpsilon:   cam.PoleEpsilon,
		},
		Morph: MorphConfig{
			HistoryLimit:  morph.DefaultHistoryLimit,
			ChangeEpsilon: morph.DefaultChangeEpsilon,
			Incremental:   true,
		},
		Data: DataConfig{
			FlameDir:      "models/flame/web",
			SessionPath:   "",
			WatchSession:  false,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// CameraSettings converts the camera section.
func (c *Config) CameraSettings() camera.Settings {
	return camera.Settings{
		Damping:       c.Camera.Damping,
		DefaultRadius: c.Camera.DefaultRadius,
		MinRadius:     c.Camera.MinRadius,
		MaxRadius:     c.Camera.MaxRadius,
		RotateSpeed:   c.Camera.RotateSpeed,
		ZoomSpeed:     c.Camera.ZoomSpeed,
		PoleEpsilon:   c.Camera.PoleEpsilon,
	}
}

// MorphConfig converts the morph section.
func (c *Config) MorphConfig() morph.Config {
	return morph.Config{
		HistoryLimit:  c.Morph.HistoryLimit,
		ChangeEpsilon: c.Morph.ChangeEpsilon,
		Incremental:   c.Morph.Incremental,
	}
}

// SimConfig assembles the simulation settings.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Morph:    c.MorphConfig(),
		Camera:   c.CameraSettings(),
		TickRate: sim.DefaultTickRate,
	}
}
