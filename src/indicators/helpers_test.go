package indicators

import "github.com/jiaming2012/bar-backtester/src/eventmodels"

const equalityThreshold = 1e-2

func closeBar(close float64) eventmodels.Bar {
	return eventmodels.Bar{Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func closeBars(closes ...float64) []eventmodels.Bar {
	bars := make([]eventmodels.Bar, len(closes))
	for i, c := range closes {
		bars[i] = closeBar(c)
	}

	return bars
}
