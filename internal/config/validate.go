package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks values the rest of the program cannot recover from.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.Damping <= 0 || c.Camera.Damping > 1 {
		return fmt.Errorf("%w: camera damping %v outside (0, 1]", ErrInvalid, c.Camera.Damping)
	}
	if c.Camera.MinRadius <= 0 || c.Camera.MaxRadius < c.Camera.MinRadius {
		return fmt.Errorf("%w: camera radius range [%v, %v]", ErrInvalid, c.Camera.MinRadius, c.Camera.MaxRadius)
	}
	if c.Morph.HistoryLimit < 1 {
		return fmt.Errorf("%w: history limit %d", ErrInvalid, c.Morph.HistoryLimit)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
