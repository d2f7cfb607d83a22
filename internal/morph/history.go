package morph

// DefaultHistoryLimit is the number of snapshots kept when no limit is configured.
const DefaultHistoryLimit = 50

// History is a bounded linear undo/redo stack of State snapshots. The current
// index always points at the snapshot that is rendered. Pushing after an undo
// discards the redo tail; pushing past the limit evicts the oldest snapshot.
type History struct {
	entries []*State
	index   int
	limit   int
}

// NewHistory creates an empty history holding at most limit snapshots.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{index: -1, limit: limit}
}

// Push records a deep copy of s as the new current snapshot.
func (h *History) Push(s *State) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, s.Clone())
	if over := len(h.entries) - h.limit; over > 0 {
		// Drop references so evicted snapshots can be collected.
		for i := 0; i < over; i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[over:]
	}
	h.index = len(h.entries) - 1
}

// Reset discards every snapshot and starts over with a copy of s.
func (h *History) Reset(s *State) {
	h.entries = []*State{s.Clone()}
	h.index = 0
}

// Undo steps back one snapshot and returns a copy of it. It returns false when
// already at the oldest snapshot.
func (h *History) Undo() (*State, bool) {
	if h.index <= 0 {
		return nil, false
	}
	h.index--
	return h.entries[h.index].Clone(), true
}

// Redo steps forward one snapshot and returns a copy of it. It returns false
// when already at the newest snapshot.
func (h *History) Redo() (*State, bool) {
	if h.index < 0 || h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return h.entries[h.index].Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	return h.index >= 0 && h.index < len(h.entries)-1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// Index returns the position of the current snapshot, or -1 when empty.
func (h *History) Index() int {
	return h.index
}

// Limit returns the maximum number of snapshots kept.
func (h *History) Limit() int {
	return h.limit
}

// Current returns a copy of the current snapshot, or nil when empty.
func (h *History) Current() *State {
	if h.index < 0 {
		return nil
	}
	return h.entries[h.index].Clone()
}
