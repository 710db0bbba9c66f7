package schedule

import (
	"github.com/phrazzld/artquiz-api/internal/domain"
)

// snapshot is a value copy of the scheduler state. Restoring it leaves no
// reference shared with the state it was taken from.
type snapshot struct {
	slots   []domain.ContextKey
	nodes   map[domain.ContextKey]node
	pointer int
}

func (s *Scheduler) snapshotLocked() snapshot {
	snap := snapshot{
		slots:   make([]domain.ContextKey, len(s.slots)),
		nodes:   make(map[domain.ContextKey]node, len(s.nodes)),
		pointer: s.pointer,
	}
	copy(snap.slots, s.slots)
	for k, n := range s.nodes {
		snap.nodes[k] = *n
	}
	return snap
}

func (s *Scheduler) restoreLocked(snap snapshot) {
	s.slots = make([]domain.ContextKey, len(snap.slots))
	copy(s.slots, snap.slots)
	s.nodes = make(map[domain.ContextKey]*node, len(snap.nodes))
	for k, n := range snap.nodes {
		restored := n
		s.nodes[k] = &restored
	}
	s.pointer = snap.pointer
}
