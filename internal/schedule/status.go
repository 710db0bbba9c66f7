package schedule

import (
	"sort"

	"github.com/phrazzld/artquiz-api/internal/domain"
)

// NodeStatus describes one registered context.
type NodeStatus struct {
	Key           domain.ContextKey  `json:"key"`
	Context       domain.QuizContext `json:"context"`
	Slot          int                `json:"slot"`
	ScheduleCount uint64             `json:"schedule_count"`
	IsFixed       bool               `json:"is_fixed"`
}

// Status is a point-in-time copy of the scheduler state.
type Status struct {
	Capacity   int                 `json:"capacity"`
	Pointer    int                 `json:"pointer"`
	Occupied   int                 `json:"occupied"`
	FixedCount int                 `json:"fixed_count"`
	Slots      []domain.ContextKey `json:"slots"`
	Nodes      []NodeStatus        `json:"nodes"`
	// InvariantError is empty when the slot table and node map agree.
	InvariantError string `json:"invariant_error,omitempty"`
}

func (s *Scheduler) reportLocked() Status {
	status := Status{
		Capacity: s.capacity,
		Pointer:  s.pointer,
		Occupied: len(s.nodes),
		Slots:    make([]domain.ContextKey, len(s.slots)),
		Nodes:    make([]NodeStatus, 0, len(s.nodes)),
	}
	copy(status.Slots, s.slots)

	for _, n := range s.nodes {
		if n.isFixed {
			status.FixedCount++
		}
		status.Nodes = append(status.Nodes, NodeStatus{
			Key:           n.key,
			Context:       n.context,
			Slot:          n.slotIndex,
			ScheduleCount: n.scheduleCount,
			IsFixed:       n.isFixed,
		})
	}
	sort.Slice(status.Nodes, func(i, j int) bool {
		return status.Nodes[i].Slot < status.Nodes[j].Slot
	})

	if err := s.checkInvariantsLocked(); err != nil {
		status.InvariantError = err.Error()
	}
	return status
}
