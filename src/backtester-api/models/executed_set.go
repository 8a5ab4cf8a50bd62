package models

// ExecutedSet records every order id that has either filled or been
// cancelled by a dependency. It only grows during a run.
type ExecutedSet struct {
	resolutions map[uint]BacktesterOrderStatus
	ids         []uint
}

func (s *ExecutedSet) Contains(id uint) bool {
	_, found := s.resolutions[id]
	return found
}

func (s *ExecutedSet) MarkFilled(id uint) bool {
	return s.mark(id, BacktesterOrderStatusFilled)
}

func (s *ExecutedSet) MarkCancelled(id uint) bool {
	return s.mark(id, BacktesterOrderStatusCancelled)
}

func (s *ExecutedSet) mark(id uint, status BacktesterOrderStatus) bool {
	if _, found := s.resolutions[id]; found {
		return false
	}

	s.resolutions[id] = status
	s.ids = append(s.ids, id)
	return true
}

// GetStatus returns pending for ids that have not been resolved.
func (s *ExecutedSet) GetStatus(id uint) BacktesterOrderStatus {
	status, found := s.resolutions[id]
	if !found {
		return BacktesterOrderStatusPending
	}

	return status
}

func (s *ExecutedSet) Len() int {
	return len(s.ids)
}

// IDs returns the resolved ids in resolution order.
func (s *ExecutedSet) IDs() []uint {
	out := make([]uint, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *ExecutedSet) FilledIDs() []uint {
	return s.filter(BacktesterOrderStatusFilled)
}

func (s *ExecutedSet) CancelledIDs() []uint {
	return s.filter(BacktesterOrderStatusCancelled)
}

func (s *ExecutedSet) filter(status BacktesterOrderStatus) []uint {
	out := []uint{}
	for _, id := range s.ids {
		if s.resolutions[id] == status {
			out = append(out, id)
		}
	}

	return out
}

func NewExecutedSet() *ExecutedSet {
	return &ExecutedSet{
		resolutions: make(map[uint]BacktesterOrderStatus),
	}
}
