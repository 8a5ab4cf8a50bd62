package strategy

import "fmt"

// orderIDSequence hands out the order ids of a single run, starting at 1.
type orderIDSequence struct {
	next uint
}

func (s *orderIDSequence) Peek() uint {
	return s.next
}

// Reserve returns the first of n consecutive ids.
func (s *orderIDSequence) Reserve(n int) uint {
	first := s.next
	s.next += uint(n)
	return first
}

func newOrderIDSequence() *orderIDSequence {
	return &orderIDSequence{next: 1}
}

func validatePercents(stopLossPercent, takeProfitPercent float64) error {
	if stopLossPercent <= 0 || stopLossPercent >= 1 {
		return fmt.Errorf("stop loss percent must be in (0, 1), got %v", stopLossPercent)
	}

	if takeProfitPercent <= 0 || takeProfitPercent >= 1 {
		return fmt.Errorf("take profit percent must be in (0, 1), got %v", takeProfitPercent)
	}

	return nil
}
