package briefing

import (
	"math"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// priorityDeadlineWindowDays is the deadline window that contributes to an
// update's priority score.
const priorityDeadlineWindowDays = 21

// businessImpactCap bounds the business-impact contribution. Upstream scores
// run 0-10, so 0.4 per point reaches the cap at a full-score update.
const businessImpactCap = 4.0

// RankUpdatePriority scores one update for surfacing order. Higher is more
// urgent.
func RankUpdatePriority(u models.RegulatoryUpdate, referenceDate time.Time) float64 {
	score := 1.0
	if updates.IsHighImpact(u) {
		score += 4
	}
	switch updates.NormalizeUrgency(u.Urgency) {
	case models.UrgencyHigh:
		score += 3
	case models.UrgencyMedium:
		score += 1.5
	}
	if u.BusinessImpactScore > 0 {
		score += math.Min(businessImpactCap, u.BusinessImpactScore*0.4)
	}
	if _, ok := updates.UpcomingDeadline(u, referenceDate, priorityDeadlineWindowDays); ok {
		score += 2
	}
	return score
}
