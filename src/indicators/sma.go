package indicators

import "github.com/jiaming2012/bar-backtester/src/eventmodels"

// Sma is a simple moving average of closes. Until Period closes have been
// seen it averages whatever is available.
type Sma struct {
	Period  int
	window  []float64
	sum     float64
	history []float64
}

func (s *Sma) Update(bar eventmodels.Bar) float64 {
	s.window = append(s.window, bar.Close)
	s.sum += bar.Close

	if len(s.window) > s.Period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}

	value := s.sum / float64(len(s.window))
	s.history = append(s.history, value)
	return value
}

func (s *Sma) IsReady() bool {
	return len(s.window) >= s.Period
}

func (s *Sma) Latest() float64 {
	return latest(s.history)
}

func (s *Sma) History() []float64 {
	return copyHistory(s.history)
}

func NewSma(period int) *Sma {
	return &Sma{
		Period: period,
	}
}
