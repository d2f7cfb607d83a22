package morph

import (
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/logger"
)

var deepCopy = copier.Option{DeepCopy: true}

// State is the sparse, insertion-ordered map of region name to Params that
// defines what has been done to a face. Replay order equals insertion order.
type State struct {
	order  []string
	params map[string]Params
}

// NewState returns an empty state.
func NewState() *State {
	return &State{params: make(map[string]Params)}
}

// Get returns the params of a region and whether the region has an entry.
func (s *State) Get(region string) (Params, bool) {
	if s == nil {
		return Params{}, false
	}
	p, ok := s.params[region]
	return p, ok
}

// Set stores params for a region, appending it to the order on first use.
func (s *State) Set(region string, p Params) {
	if s.params == nil {
		s.params = make(map[string]Params)
	}
	if _, ok := s.params[region]; !ok {
		s.order = append(s.order, region)
	}
	s.params[region] = p
}

// Regions returns region names in insertion order.
func (s *State) Regions() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored regions, including zeroed ones.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Active returns, in insertion order, every region with a field whose
// magnitude exceeds eps.
func (s *State) Active(eps float32) []Change {
	if s == nil {
		return nil
	}
	var out []Change
	for _, region := range s.order {
		p := s.params[region]
		if p.Significant(eps) {
			out = append(out, Change{Region: region, Params: p})
		}
	}
	return out
}

// Clone returns a deep copy that shares no memory with s.
func (s *State) Clone() *State {
	c := NewState()
	if s == nil || len(s.order) == 0 {
		return c
	}

	err := copier.CopyWithOption(&c.order, s.order, deepCopy)
	if err == nil {
		err = copier.CopyWithOption(&c.params, s.params, deepCopy)
	}
	if err != nil || len(c.order) != len(s.order) || len(c.params) != len(s.params) {
		logger.Warn("state deep copy fell back to manual copy", zap.Error(err))
		c = NewState()
		for _, region := range s.order {
			c.Set(region, s.params[region])
		}
	}
	return c
}

// Equal reports whether two states hold the same regions, in the same order,
// with the same params.
func (s *State) Equal(other *State) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, region := range s.Regions() {
		if other.order[i] != region {
			return false
		}
		if s.params[region] != other.params[region] {
			return false
		}
	}
	return true
}
