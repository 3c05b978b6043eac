package app

import (
	"context"
	"sort"
	"time"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// productiveScoreFloor is the productivity score at or above which an
// interval's time counts as productive hours.
const productiveScoreFloor = 7

// ClientCount is one entry of the weekly top-clients list.
type ClientCount struct {
	Client string `json:"client"`
	Count  int    `json:"count"`
}

// DayMinutes is one weekday row of the weekly report; days with no
// activity still appear with zero minutes.
type DayMinutes struct {
	Day     string  `json:"day"`
	Minutes float64 `json:"minutes"`
}

// WeeklyReport is the Monday-Sunday rollup for one user.
type WeeklyReport struct {
	WeekStart       string             `json:"week_start"`
	WeekEnd         string             `json:"week_end"`
	TotalHours      float64            `json:"total_hours"`
	ProductiveHours float64            `json:"productive_hours"`
	AvgProductivity float64            `json:"avg_productivity"`
	TopClients      []ClientCount      `json:"top_clients"`
	CategoryMinutes map[string]float64 `json:"category_minutes"`
	DailyMinutes    []DayMinutes       `json:"daily_minutes"`
	TrendSlope      float64            `json:"trend_slope"`
}

// ReportService computes read-side rollups over persisted intervals.
type ReportService struct {
	clock      core.Clock
	activities ports.ActivityRepository
}

// NewReportService wires the aggregation engine.
func NewReportService(clock core.Clock, activities ports.ActivityRepository) *ReportService {
	return &ReportService{clock: clock, activities: activities}
}

// DailySummary returns the rollup for one calendar date.
func (s *ReportService) DailySummary(ctx context.Context, userID uuid.UUID, date time.Time) (*ports.DailySummary, error) {
	summary, err := s.activities.SummarizeDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	summary.TotalMinutes, _ = stats.Round(summary.TotalMinutes, 2)
	summary.TotalHours, _ = stats.Round(summary.TotalMinutes/60.0, 2)
	summary.AvgProductivity, _ = stats.Round(summary.AvgProductivity, 1)
	return summary, nil
}

// ClientSummary returns per-client minutes for one calendar date.
func (s *ReportService) ClientSummary(ctx context.Context, userID uuid.UUID, date time.Time) ([]ports.ClientMinutes, error) {
	return s.activities.SummarizeClients(ctx, userID, date)
}

// Weekly computes the report for the Monday-Sunday week containing today.
// Null/zero productivity scores are excluded from the average but their
// time is included in totals.
func (s *ReportService) Weekly(ctx context.Context, userID uuid.UUID) (*WeeklyReport, error) {
	now := s.clock.Now()
	monday, next := core.WeekBounds(now)

	intervals, err := s.activities.ListByUserAndRange(ctx, userID, monday, next)
	if err != nil {
		return nil, err
	}

	report := &WeeklyReport{
		WeekStart:       monday.Format("2006-01-02"),
		WeekEnd:         next.AddDate(0, 0, -1).Format("2006-01-02"),
		CategoryMinutes: make(map[string]float64),
		DailyMinutes:    make([]DayMinutes, len(core.WeekdayLabels)),
	}
	for i, label := range core.WeekdayLabels {
		report.DailyMinutes[i] = DayMinutes{Day: label}
	}

	var totalMinutes, productiveMinutes float64
	var scores []float64
	clientCounts := make(map[string]int)

	for _, interval := range intervals {
		minutes := interval.Duration(now)
		totalMinutes += minutes

		if interval.Productivity >= productiveScoreFloor {
			productiveMinutes += minutes
		}
		if interval.Productivity > 0 {
			scores = append(scores, float64(interval.Productivity))
		}
		if interval.ClientName != "" && interval.ClientName != models.ClientNone {
			clientCounts[interval.ClientName]++
		}

		category := interval.Category
		if category == "" {
			category = "Work"
		}
		report.CategoryMinutes[category] += minutes
		report.DailyMinutes[core.WeekdayIndex(interval.StartTime)].Minutes += minutes
	}

	report.TotalHours, _ = stats.Round(totalMinutes/60.0, 2)
	report.ProductiveHours, _ = stats.Round(productiveMinutes/60.0, 2)
	if len(scores) > 0 {
		mean, err := stats.Mean(scores)
		if err == nil {
			report.AvgProductivity, _ = stats.Round(mean, 2)
		}
	}

	report.TopClients = topClients(clientCounts, 3)
	report.TrendSlope = dailyTrend(report.DailyMinutes)

	return report, nil
}

// topClients ranks clients by occurrence count, ties broken by name.
func topClients(counts map[string]int, limit int) []ClientCount {
	ranked := make([]ClientCount, 0, len(counts))
	for client, count := range counts {
		ranked = append(ranked, ClientCount{Client: client, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Client < ranked[j].Client
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// dailyTrend fits a least-squares line through the seven daily totals and
// returns its slope in minutes per day.
func dailyTrend(days []DayMinutes) float64 {
	xs := make([]float64, len(days))
	ys := make([]float64, len(days))
	for i, day := range days {
		xs[i] = float64(i)
		ys[i] = day.Minutes
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	rounded, _ := stats.Round(slope, 2)
	return rounded
}
