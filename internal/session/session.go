// Package session persists the morph state and the saved versions as YAML.
// Every numeric field is optional; absent fields decode as zero.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/pkg/math"
)

// FormatVersion is the session layout written by this package.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for a session written by a newer layout.
var ErrUnsupportedVersion = errors.New("unsupported session format version")

// Vec3 is the YAML form of a translation.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Entry is one region of a persisted state.
type Entry struct {
	Region    string  `yaml:"region"`
	Inflate   float32 `yaml:"inflate"`
	Translate Vec3    `yaml:"translate"`
	Smooth    int     `yaml:"smooth"`
}

// Version is a persisted named snapshot.
type Version struct {
	Name      string    `yaml:"name"`
	CreatedAt time.Time `yaml:"created_at"`
	State     []Entry   `yaml:"state"`
}

// Coefficients are the FLAME shape and expression weights the base mesh was
// derived with. Region params apply on top of that base.
type Coefficients struct {
	Shape      []float32 `yaml:"shape,omitempty"`
	Expression []float32 `yaml:"expression,omitempty"`
}

// Empty reports whether the base is the plain template.
func (c Coefficients) Empty() bool {
	return len(c.Shape) == 0 && len(c.Expression) == 0
}

// Equal reports whether both coefficient sets derive the same base.
func (c Coefficients) Equal(other Coefficients) bool {
	return slices.Equal(c.Shape, other.Shape) && slices.Equal(c.Expression, other.Expression)
}

// File is the session document.
type File struct {
	Format       int `yaml:"format"`
	Coefficients `yaml:",inline"`
	State        []Entry   `yaml:"state"`
	Versions     []Version `yaml:"versions,omitempty"`
}

// Capture builds a session document from a state and its versions.
func Capture(state *morph.State, versions []morph.Version) *File {
	f := &File{
		Format: FormatVersion,
		State:  entries(state),
	}
	for _, v := range versions {
		f.Versions = append(f.Versions, Version{
			Name:      v.Name,
			CreatedAt: v.CreatedAt,
			State:     entries(v.State),
		})
	}
	return f
}

// Restore converts the document back into a state and versions. Entries
// without a region name are skipped; values are clamped to their ranges.
func (f *File) Restore() (*morph.State, []morph.Version) {
	versions := make([]morph.Version, 0, len(f.Versions))
	for i, v := range f.Versions {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("Version %d", i+1)
		}
		versions = append(versions, morph.Version{
			Name:      name,
			CreatedAt: v.CreatedAt,
			State:     state(v.State),
		})
	}
	return state(f.State), versions
}

func entries(s *morph.State) []Entry {
	out := make([]Entry, 0, s.Len())
	for _, region := range s.Regions() {
		p, _ := s.Get(region)
		out = append(out, Entry{
			Region:    region,
			Inflate:   p.Inflate,
			Translate: Vec3{X: p.Translate.X, Y: p.Translate.Y, Z: p.Translate.Z},
			Smooth:    p.Smooth,
		})
	}
	return out
}

func state(es []Entry) *morph.State {
	s := morph.NewState()
	for _, e := range es {
		if e.Region == "" {
			continue
		}
		s.Set(e.Region, morph.Params{
			Inflate:   e.Inflate,
			Translate: math.Vec3{X: e.Translate.X, Y: e.Translate.Y, Z: e.Translate.Z},
			Smooth:    e.Smooth,
		}.Clamp())
	}
	return s
}

// Parse decodes a session document. A missing format field means the
// current layout.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	if f.Format > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Format)
	}
	if f.Format == 0 {
		f.Format = FormatVersion
	}
	return &f, nil
}

// Marshal encodes the document.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Load reads and parses a session file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return Parse(data)
}

// Save writes the document to path through a temporary file in the same
// directory, so watchers never observe a partial write.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing session: %w", err)
	}
	return nil
}

// SaveEngine writes the engine's current state and versions to path along
// with the coefficients its base was derived from.
func SaveEngine(path string, e *morph.Engine, c Coefficients) error {
	f := Capture(e.State(), e.Versions())
	f.Coefficients = c
	return f.Save(path)
}

// Install rebuilds the base from the stored coefficients through rebase, then
// installs the state and versions into e. The rebase comes first because it
// clears the engine state. A nil rebase keeps the current base.
func (f *File) Install(e *morph.Engine, rebase func(Coefficients) error) error {
	if rebase != nil {
		if err := rebase(f.Coefficients); err != nil {
			return fmt.Errorf("rebasing session: %w", err)
		}
	}
	s, versions := f.Restore()
	e.Restore(s, versions)
	return nil
}

// LoadEngine reads path and installs it into e with Install.
func LoadEngine(path string, e *morph.Engine, rebase func(Coefficients) error) (*File, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.Install(e, rebase); err != nil {
		return nil, err
	}
	return f, nil
}
