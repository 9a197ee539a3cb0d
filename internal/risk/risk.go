// Package risk combines weighted activity signals into the composite risk
// pulse for the snapshot day.
package risk

import (
	"math"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// DefaultFloor is the minimum score reported even when every component is
// zero or invalid.
const DefaultFloor = 1.0

// deadlineWindowDays bounds the "near-term deadline" count feeding the
// deadline component.
const deadlineWindowDays = 14

// Component weights. Order matters: it is the order components are reported
// in.
var componentWeights = []struct {
	name   string
	weight float64
}{
	{"high_impact", 0.35},
	{"urgency", 0.20},
	{"authority", 0.15},
	{"deadline", 0.15},
	{"task", 0.15},
}

// Inputs carries everything the risk pulse needs.
type Inputs struct {
	Today            []models.RegulatoryUpdate
	RecentPool       []models.RegulatoryUpdate
	ReferenceDate    time.Time
	OutstandingTasks int
	Floor            float64
}

// Compute builds the risk pulse. When the primary day window is empty the
// same components are recomputed over the most recent populated historical
// day before falling back to the floor.
func Compute(in Inputs) models.RiskPulse {
	floor := in.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}

	history := timeutil.GroupUpdatesByDay(in.RecentPool)

	scores := componentScores(in.Today, history, in.ReferenceDate, in.OutstandingTasks)
	if len(in.Today) == 0 {
		if fallback, ok := mostRecentPopulatedDay(history); ok {
			scores = componentScores(fallback, history, in.ReferenceDate, in.OutstandingTasks)
		}
	}

	score := weightedTotal(scores)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = floor
	}
	score = round1(math.Min(10, math.Max(floor, score)))

	baseline := baselineScore(in.RecentPool, in.OutstandingTasks, floor)

	components := make([]models.RiskComponent, 0, len(componentWeights))
	for i, cw := range componentWeights {
		components = append(components, models.RiskComponent{
			Name:   cw.name,
			Score:  round1(scores[i]),
			Weight: cw.weight,
		})
	}

	return models.RiskPulse{
		Score:      score,
		Label:      Label(score),
		Delta:      round1(score - baseline),
		Components: components,
	}
}

// Label maps a score to its severity label.
func Label(score float64) string {
	switch {
	case score >= 8:
		return models.RiskCritical
	case score >= 5:
		return models.RiskElevated
	default:
		return models.RiskStable
	}
}

// componentScores computes the five named components, each clamped to
// [0, 10], in componentWeights order.
func componentScores(today []models.RegulatoryUpdate, history map[string][]models.RegulatoryUpdate, referenceDate time.Time, outstanding int) []float64 {
	return []float64{
		ratioScore(countHighImpact(today), averageDaily(history, countHighImpact)),
		urgencyScore(today),
		ratioScore(countAuthorities(today), averageDaily(history, countAuthorities)),
		deadlineScore(countNearDeadlines(today, referenceDate)),
		taskScore(outstanding),
	}
}

// ratioScore scales today's count against the historical daily average,
// defaulting the ratio to 2 when no history exists.
func ratioScore(todayCount int, historicalAvg float64) float64 {
	if todayCount == 0 {
		return 0
	}
	ratio := 2.0
	if historicalAvg > 0 {
		ratio = float64(todayCount) / historicalAvg
	}
	score := ratio * 5
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return math.Min(10, math.Max(0, score))
}

func urgencyScore(pool []models.RegulatoryUpdate) float64 {
	if len(pool) == 0 {
		return 0
	}
	total := 0.0
	for _, u := range pool {
		total += urgencyWeight(u.Urgency)
	}
	return total / float64(len(pool))
}

func urgencyWeight(raw string) float64 {
	switch updates.NormalizeUrgency(raw) {
	case models.UrgencyHigh:
		return 10
	case models.UrgencyMedium:
		return 6
	default:
		return 2
	}
}

func deadlineScore(nearDeadlines int) float64 {
	switch {
	case nearDeadlines >= 3:
		return 10
	case nearDeadlines >= 1:
		return 7
	default:
		return 3
	}
}

func taskScore(outstanding int) float64 {
	if outstanding <= 0 {
		return 2
	}
	return math.Min(10, float64(outstanding)*2)
}

func countHighImpact(pool []models.RegulatoryUpdate) int {
	count := 0
	for _, u := range pool {
		if updates.IsHighImpact(u) {
			count++
		}
	}
	return count
}

func countAuthorities(pool []models.RegulatoryUpdate) int {
	seen := make(map[string]bool)
	for _, u := range pool {
		seen[updates.AuthorityKey(u.Authority)] = true
	}
	return len(seen)
}

func countNearDeadlines(pool []models.RegulatoryUpdate, referenceDate time.Time) int {
	count := 0
	for _, u := range pool {
		if _, ok := updates.UpcomingDeadline(u, referenceDate, deadlineWindowDays); ok {
			count++
		}
	}
	return count
}

func averageDaily(history map[string][]models.RegulatoryUpdate, count func([]models.RegulatoryUpdate) int) float64 {
	if len(history) == 0 {
		return 0
	}
	total := 0
	for _, day := range history {
		total += count(day)
	}
	return float64(total) / float64(len(history))
}

func mostRecentPopulatedDay(history map[string][]models.RegulatoryUpdate) ([]models.RegulatoryUpdate, bool) {
	bestKey := ""
	for key, day := range history {
		if len(day) == 0 {
			continue
		}
		if key > bestKey {
			bestKey = key
		}
	}
	if bestKey == "" {
		return nil, false
	}
	return history[bestKey], true
}

func weightedTotal(scores []float64) float64 {
	total := 0.0
	for i, cw := range componentWeights {
		total += scores[i] * cw.weight
	}
	return total
}

// baselineScore applies the same composite formula over the recent pool as
// a whole: pool-wide urgency, neutral 5 placeholders for the impact,
// authority, and deadline components, and the actual task component.
func baselineScore(recentPool []models.RegulatoryUpdate, outstanding int, floor float64) float64 {
	scores := []float64{5, urgencyScore(recentPool), 5, 5, taskScore(outstanding)}
	total := scores[0]*componentWeights[0].weight +
		scores[1]*componentWeights[1].weight +
		scores[2]*componentWeights[2].weight +
		scores[3]*componentWeights[3].weight +
		scores[4]*componentWeights[4].weight
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return floor
	}
	return round1(math.Min(10, math.Max(floor, total)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
