package state

import (
	"sort"
	"sync"

	"InkBoard/internal/geom"
	"InkBoard/internal/logging"
)

// Viewport reports the board-space region currently on screen.
type Viewport interface {
	VisibleRect() geom.Rect
}

// Board owns the committed strokes of one board and answers spatial
// queries over them. Strokes come back from queries in draw order.
//
// Local commits and erasures are applied optimistically and remembered
// until the stroke feed reflects them, so resyncing never makes ink pop in
// or out.
type Board struct {
	id string

	mu      sync.RWMutex
	idx     *index
	entries map[string]*entry
	seq     uint64

	pendingAdds map[string]*entry
	// pendingDeletes maps an erased id to whether its creation has yet to
	// show up in the feed.
	pendingDeletes map[string]bool
}

// NewBoard returns an empty board.
func NewBoard(id string) *Board {
	return &Board{
		id:             id,
		idx:            newIndex(),
		entries:        make(map[string]*entry),
		pendingAdds:    make(map[string]*entry),
		pendingDeletes: make(map[string]bool),
	}
}

// ID returns the board id.
func (b *Board) ID() string { return b.id }

// AddObject indexes a stroke, replacing any stroke with the same id.
func (b *Board) AddObject(s *Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.add(s)
}

func (b *Board) add(s *Stroke) *entry {
	if old, ok := b.entries[s.ID]; ok {
		b.idx.remove(old)
	}
	b.seq++
	e := &entry{stroke: s, seq: b.seq}
	b.idx.insert(e)
	b.entries[s.ID] = e
	return e
}

// RemoveObject drops a stroke by id and reports whether it was present.
func (b *Board) RemoveObject(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(id)
}

func (b *Board) remove(id string) bool {
	e, ok := b.entries[id]
	if !ok {
		return false
	}
	b.idx.remove(e)
	delete(b.entries, id)
	return true
}

// Clear empties the index. Pending local changes are kept.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clear()
}

func (b *Board) clear() {
	b.idx = newIndex()
	b.entries = make(map[string]*entry)
}

// Get returns a stroke by id.
func (b *Board) Get(id string) (*Stroke, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[id]
	if !ok {
		return nil, false
	}
	return e.stroke, true
}

// Count returns the number of indexed strokes.
func (b *Board) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// All returns every stroke in draw order.
func (b *Board) All() []*Stroke {
	b.mu.RLock()
	defer b.mu.RUnlock()
	es := make([]*entry, 0, len(b.entries))
	for _, e := range b.entries {
		es = append(es, e)
	}
	return ordered(es)
}

// QueryRegion returns every stroke whose bounding box intersects r. The
// test is box level; callers needing exact hits re-check the points.
func (b *Board) QueryRegion(r geom.Rect) []*Stroke {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ordered(b.idx.search(r))
}

// VisibleObjects returns the strokes intersecting the viewport.
func (b *Board) VisibleObjects(v Viewport) []*Stroke {
	return b.QueryRegion(v.VisibleRect())
}

// Commit adds a locally created stroke ahead of the feed.
func (b *Board) Commit(s *Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingAdds[s.ID] = b.add(s)
}

// Erase removes strokes ahead of the feed and returns the ids that were
// present.
func (b *Board) Erase(ids ...string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var removed []string
	for _, id := range ids {
		if !b.remove(id) {
			continue
		}
		_, unconfirmed := b.pendingAdds[id]
		delete(b.pendingAdds, id)
		b.pendingDeletes[id] = unconfirmed
		removed = append(removed, id)
	}
	return removed
}

// Pending reports how many local commits and erasures the feed has not yet
// reflected.
func (b *Board) Pending() (adds, deletes int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pendingAdds), len(b.pendingDeletes)
}

// Sync rebuilds the index from the authoritative stroke list. Local commits
// missing from the feed are kept; local erasures still in the feed stay
// hidden.
func (b *Board) Sync(feed []*Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clear()
	seen := make(map[string]bool, len(feed))
	for _, s := range feed {
		if s.BoardID != "" && s.BoardID != b.id {
			continue
		}
		seen[s.ID] = true
		delete(b.pendingAdds, s.ID)
		if _, erased := b.pendingDeletes[s.ID]; erased {
			b.pendingDeletes[s.ID] = false
			continue
		}
		b.add(s)
	}
	for id, awaiting := range b.pendingDeletes {
		if !seen[id] && !awaiting {
			delete(b.pendingDeletes, id)
		}
	}
	local := make([]*entry, 0, len(b.pendingAdds))
	for _, e := range b.pendingAdds {
		local = append(local, e)
	}
	for _, s := range ordered(local) {
		b.pendingAdds[s.ID] = b.add(s)
	}

	logging.For("board").Debug("resynced",
		"board", b.id, "feed", len(feed), "strokes", len(b.entries),
		"pending_adds", len(b.pendingAdds), "pending_deletes", len(b.pendingDeletes))
}

func ordered(es []*entry) []*Stroke {
	sort.Slice(es, func(i, j int) bool { return es[i].seq < es[j].seq })
	out := make([]*Stroke, len(es))
	for i, e := range es {
		out[i] = e.stroke
	}
	return out
}
