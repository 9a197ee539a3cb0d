// Package relevance scores regulatory updates against a firm profile on a
// 0-100 scale. A remote scoring service is used when configured; otherwise a
// local heuristic keeps the digest pipeline producing tiers.
package relevance

import (
	"context"
	"strings"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// RemoteScorer is the fragment of the relevance service client used by the
// fallback scorer.
type RemoteScorer interface {
	Score(ctx context.Context, update models.RegulatoryUpdate, profile *models.Profile) (float64, error)
}

// HeuristicScorer rates updates locally from the enrichment fields and
// profile overlap.
type HeuristicScorer struct{}

// Score rates one update. The result is clamped to [0, 100] by construction:
// impact contributes up to 40, urgency up to 25, impact level 15, and
// profile overlap up to 20.
func (HeuristicScorer) Score(_ context.Context, u models.RegulatoryUpdate, profile *models.Profile) (float64, error) {
	score := u.BusinessImpactScore * 4
	if score > 40 {
		score = 40
	}
	if score < 0 {
		score = 0
	}

	switch updates.NormalizeUrgency(u.Urgency) {
	case models.UrgencyHigh:
		score += 25
	case models.UrgencyMedium:
		score += 12
	}

	if updates.IsHighImpact(u) {
		score += 15
	}

	score += profileOverlap(u, profile)

	if score > 100 {
		score = 100
	}
	return score, nil
}

// profileOverlap scores how strongly the update's sector and area line up
// with the declared profile.
func profileOverlap(u models.RegulatoryUpdate, profile *models.Profile) float64 {
	if profile.IsDefault() {
		// No targeting signal, treat all sectors as moderately relevant.
		return 10
	}

	sector := models.NormalizeLabel(u.Sector)
	area := models.NormalizeLabel(u.Area)
	primary := models.NormalizeLabel(profile.ServiceType)

	overlap := 0.0
	if primary != "" && (sector == primary || strings.Contains(area, primary)) {
		overlap += 20
	} else {
		for _, st := range profile.SecondaryServiceTypes {
			secondary := models.NormalizeLabel(st)
			if secondary != "" && (sector == secondary || strings.Contains(area, secondary)) {
				overlap += 10
				break
			}
		}
	}
	if overlap > 20 {
		overlap = 20
	}
	return overlap
}

// FallbackScorer prefers the remote scorer and degrades to the local
// heuristic on any upstream failure.
type FallbackScorer struct {
	Remote    RemoteScorer
	Heuristic HeuristicScorer
	Logger    logging.Logger
}

// Score tries the remote service first. Upstream failures are logged and
// absorbed so stream bucketing never stalls on a scoring outage.
func (s *FallbackScorer) Score(ctx context.Context, u models.RegulatoryUpdate, profile *models.Profile) (float64, error) {
	if s.Remote != nil {
		score, err := s.Remote.Score(ctx, u, profile)
		if err == nil {
			return score, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("update_id", u.ID).Warn("Remote relevance scoring failed, using heuristic")
		}
	}
	return s.Heuristic.Score(ctx, u, profile)
}
