package domain

// AmountStatistics describes the distribution of recent posted line amounts.
// It is the baseline against which the unusual-amount check compares.
type AmountStatistics struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"` // sample standard deviation, 0 with fewer than 2 points
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}
