package morph

import "time"

// Version is a named, timestamped snapshot of a State. Versions live outside
// the undo history and are never evicted.
type Version struct {
	Name      string
	CreatedAt time.Time
	State     *State
}

// Clone returns a copy of v with its own State.
func (v Version) Clone() Version {
	return Version{Name: v.Name, CreatedAt: v.CreatedAt, State: v.State.Clone()}
}
