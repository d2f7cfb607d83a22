// Package script runs YAML edit scripts against a morph engine, so a morph
// can be built and exported without a window.
package script

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/pkg/math"
)

// ErrInvalidStep is returned for a step that names no action or several.
var ErrInvalidStep = errors.New("invalid script step")

// Delta is one region's parameter delta.
type Delta struct {
	Region    string     `yaml:"region"`
	Inflate   float32    `yaml:"inflate"`
	Translate [3]float32 `yaml:"translate"`
	Smooth    int        `yaml:"smooth"`
}

// Change converts the delta into an engine change.
func (d Delta) Change() morph.Change {
	return morph.Change{
		Region: d.Region,
		Params: morph.Params{
			Inflate:   d.Inflate,
			Translate: math.Vec3{X: d.Translate[0], Y: d.Translate[1], Z: d.Translate[2]},
			Smooth:    d.Smooth,
		},
	}
}

// Step is one script action. Exactly one of its fields is set.
type Step struct {
	Apply []Delta `yaml:"apply,omitempty"`
	Undo  int     `yaml:"undo,omitempty"`
	Redo  int     `yaml:"redo,omitempty"`
	Reset bool    `yaml:"reset,omitempty"`
	Save  *string `yaml:"save_version,omitempty"`
	Load  *int    `yaml:"load_version,omitempty"`
}

// Script is an edit script. Shape and Expression are optional FLAME
// coefficients that rebase the mesh before the steps run.
type Script struct {
	Shape      []float32 `yaml:"shape,omitempty"`
	Expression []float32 `yaml:"expression,omitempty"`
	Steps      []Step    `yaml:"steps"`
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return nil, fmt.Errorf("%w: step %d has %d actions", ErrInvalidStep, i+1, n)
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{len(st.Apply) > 0, st.Undo > 0, st.Redo > 0, st.Reset, st.Save != nil, st.Load != nil} {
		if set {
			n++
		}
	}
	return n
}

// Result summarizes a run.
type Result struct {
	Applied int // steps that changed the state
	Skipped int // steps that had no effect
}

// Run executes the steps in order. Rebasing is left to the caller since it
// needs the model.
func (s *Script) Run(e *morph.Engine) Result {
	var r Result
	for i, st := range s.Steps {
		if s.runStep(e, st) {
			r.Applied++
			continue
		}
		r.Skipped++
		logger.Debug("script step had no effect", zap.Int("step", i+1))
	}
	return r
}

func (s *Script) runStep(e *morph.Engine, st Step) bool {
	switch {
	case len(st.Apply) > 0:
		changes := make([]morph.Change, len(st.Apply))
		for i, d := range st.Apply {
			changes[i] = d.Change()
		}
		return len(e.ApplyChanges(changes)) > 0
	case st.Undo > 0:
		return repeat(st.Undo, e.Undo)
	case st.Redo > 0:
		return repeat(st.Redo, e.Redo)
	case st.Reset:
		if !e.Loaded() {
			return false
		}
		e.Reset()
		return true
	case st.Save != nil:
		e.SaveVersion(*st.Save)
		return true
	case st.Load != nil:
		return e.LoadVersion(*st.Load)
	}
	return false
}

// repeat calls fn up to n times, stopping at the first false, and reports
// whether any call succeeded.
func repeat(n int, fn func() bool) bool {
	ok := false
	for range n {
		if !fn() {
			break
		}
		ok = true
	}
	return ok
}
