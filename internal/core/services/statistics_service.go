package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
	portsrepo "github.com/bookcheck-dev/bookcheck/internal/core/ports/repositories"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
)

// statisticsService computes descriptive statistics over a trailing window of
// posted line amounts. It recomputes on every call; callers running detection
// over large batches must expect repeated scans.
type statisticsService struct {
	journalRepo   portsrepo.JournalReader
	windowDays    int
	minDataPoints int
}

// NewStatisticsService creates a new historical statistics provider.
func NewStatisticsService(journalRepo portsrepo.JournalReader, windowDays, minDataPoints int) portssvc.StatisticsSvcFacade {
	return &statisticsService{
		journalRepo:   journalRepo,
		windowDays:    windowDays,
		minDataPoints: minDataPoints,
	}
}

var _ portssvc.StatisticsSvcFacade = (*statisticsService)(nil)

// HistoricalAmountStatistics scans posted lines whose parent entry is dated
// within the windowDays preceding asOf (inclusive), collects every nonzero
// debit and credit amount, and returns mean, sample standard deviation,
// median, and count. It returns (nil, nil) when fewer than minDataPoints
// amounts remain; that is "no baseline available", not a failure.
func (s *statisticsService) HistoricalAmountStatistics(ctx context.Context, asOf time.Time) (*domain.AmountStatistics, error) {
	start := asOf.AddDate(0, 0, -s.windowDays)

	entries, err := s.journalRepo.FindEntriesByDateRange(ctx, start, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for historical statistics: %w", err)
	}

	var amounts []float64
	for _, entry := range entries {
		if !entry.IsPosted {
			continue
		}
		for _, line := range entry.Lines {
			if line.DebitAmount.IsPositive() {
				amounts = append(amounts, line.DebitAmount.InexactFloat64())
			}
			if line.CreditAmount.IsPositive() {
				amounts = append(amounts, line.CreditAmount.InexactFloat64())
			}
		}
	}

	if len(amounts) < s.minDataPoints {
		return nil, nil
	}

	return &domain.AmountStatistics{
		Mean:   mean(amounts),
		StdDev: sampleStdDev(amounts),
		Median: median(amounts),
		Count:  len(amounts),
	}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
