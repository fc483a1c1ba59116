package core

// SeriesPoint is the mean of the selected metric on one date
type SeriesPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// ScatterPoint is the volatility and beta of one symbol on the snapshot date
type ScatterPoint struct {
	Symbol     string  `json:"symbol"`
	Volatility float64 `json:"volatility"`
	Beta       float64 `json:"beta"`
}
