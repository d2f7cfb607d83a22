// Package viewer runs the interactive face morph window: it owns the frame
// loop and wires SDL input, the simulation and the OpenGL renderer together.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/config"
	"github.com/Faultbox/facemorph/internal/engine/input"
	"github.com/Faultbox/facemorph/internal/engine/picking"
	"github.com/Faultbox/facemorph/internal/engine/render"
	"github.com/Faultbox/facemorph/internal/engine/screenshot"
	"github.com/Faultbox/facemorph/internal/engine/window"
	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/session"
	"github.com/Faultbox/facemorph/internal/sim"
	"github.com/Faultbox/facemorph/pkg/flame"
)

const appTitle = "FaceMorph"

// Viewer is the interactive application.
type Viewer struct {
	cfg      *config.Config
	model    *flame.Model
	sim      *sim.Sim
	window   *window.Window
	renderer *render.Renderer
	input    *input.Input
	shots    *screenshot.Capture

	reload  <-chan struct{}
	coef    session.Coefficients // the loaded base was derived with these
	dirty   bool                 // edits since the last save or load
	title   string
	capture bool
}

// New opens the window, creates the renderer and loads the model into a
// fresh simulation.
func New(cfg *config.Config, model *flame.Model) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		model: model,
		sim:   sim.New(cfg.SimConfig()),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      appTitle,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context, so it comes after the window.
	w, h := v.window.DrawableSize()
	v.renderer, err = render.New(render.Config{Width: w, Height: h})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = screenshot.New(cfg.Data.ScreenshotDir, "facemorph")
	v.sim.Load(model.Base(), model.RegionTable())

	if path := cfg.Data.SessionPath; path != "" {
		_, err := session.LoadEngine(path, v.sim.Engine, v.rebase)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("no session yet", zap.String("path", path))
		case err != nil:
			logger.Warn("failed to load session", zap.String("path", path), zap.Error(err))
		default:
			logger.Info("session loaded", zap.String("path", path), zap.Int("changes", len(v.sim.Engine.Changes())))
		}
	}

	logger.Info("viewer initialized",
		zap.Int("vertices", model.Template.VertexCount),
		zap.Int("regions", v.sim.Engine.Regions().Len()),
	)
	return v, nil
}

// Run drives the frame loop until the window closes or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if v.cfg.Data.WatchSession && v.cfg.Data.SessionPath != "" {
		ch, err := session.Watch(ctx, v.cfg.Data.SessionPath)
		if err != nil {
			logger.Warn("session watch disabled", zap.Error(err))
		} else {
			v.reload = ch
		}
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for {
		if ctx.Err() != nil {
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.processInput() {
			return nil
		}

		select {
		case <-v.reload:
			v.reloadSession()
		default:
		}

		v.sim.Update(dt)
		if err := v.sim.Render(v.renderer); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if v.capture {
			v.saveScreenshot()
			v.capture = false
		}
		v.window.SwapBuffers()
		v.updateTitle()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// processInput handles pending events and reports whether to quit.
func (v *Viewer) processInput() bool {
	quit := v.input.Update()
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
			continue
		case input.EventPick:
			v.pick(event.X, event.Y)
			continue
		}
		out := handleEvent(v.sim, event)
		if out.changed {
			v.dirty = true
		}
		if out.save {
			v.saveSession()
		}
		if out.capture {
			v.capture = true
		}
		if out.quit {
			quit = true
		}
	}
	return quit
}

// pick selects the region under a window position.
func (v *Viewer) pick(x, y int) {
	w, h := v.window.Size()
	if w <= 0 || h <= 0 {
		return
	}
	cam := v.sim.Camera
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), cam.Position(), cam.Target, v.renderer.FovY())
	if _, ok := v.sim.PickRegion(ray); !ok {
		logger.Debug("pick missed the mesh", zap.Int("x", x), zap.Int("y", y))
	}
}

func (v *Viewer) saveSession() {
	path := v.cfg.Data.SessionPath
	if path == "" {
		logger.Warn("no session path configured")
		return
	}
	if err := session.SaveEngine(path, v.sim.Engine, v.coef); err != nil {
		logger.Error("failed to save session", zap.String("path", path), zap.Error(err))
		return
	}
	v.dirty = false
	logger.Info("session saved", zap.String("path", path))
}

// saveScreenshot must run between drawing and the buffer swap.
func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.SavePixels(pixels, w, h)
	if err != nil {
		logger.Error("failed to save screenshot", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// reloadSession installs the session file after an external edit. Our own
// saves come back through the watcher too and are skipped as unchanged.
func (v *Viewer) reloadSession() {
	path := v.cfg.Data.SessionPath
	f, err := session.Load(path)
	if err != nil {
		logger.Warn("failed to reload session", zap.String("path", path), zap.Error(err))
		return
	}
	state, versions := f.Restore()
	if state.Equal(v.sim.Engine.State()) && len(versions) == len(v.sim.Engine.Versions()) && f.Coefficients.Equal(v.coef) {
		return
	}
	if err := f.Install(v.sim.Engine, v.rebase); err != nil {
		logger.Warn("failed to reload session", zap.String("path", path), zap.Error(err))
		return
	}
	v.dirty = false
	logger.Info("session reloaded", zap.String("path", path))
}

// rebase derives the base mesh from a session's coefficients. Unchanged
// coefficients keep the current base.
func (v *Viewer) rebase(c session.Coefficients) error {
	if c.Equal(v.coef) {
		return nil
	}
	if !v.sim.Rebase(v.model.Derive(c.Shape, c.Expression)) {
		return errors.New("derived mesh does not match the loaded topology")
	}
	v.coef = c
	return nil
}

func (v *Viewer) updateTitle() {
	t := windowTitle(v.sim.Selected(), len(v.sim.Engine.Changes()), v.sim.Overlay.Enabled(), v.dirty)
	if t != v.title {
		v.window.SetTitle(t)
		v.title = t
	}
}

// windowTitle formats the title bar status.
func windowTitle(region string, changes int, comparing, dirty bool) string {
	if region == "" {
		region = "no region"
	}
	t := fmt.Sprintf("%s - %s (%d changed)", appTitle, region, changes)
	if dirty {
		t += " *"
	}
	if comparing {
		t += " [compare]"
	}
	return t
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
