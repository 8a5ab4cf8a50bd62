package indicators

func latest(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}

	return history[len(history)-1]
}

func copyHistory(history []float64) []float64 {
	out := make([]float64, len(history))
	copy(out, history)
	return out
}
