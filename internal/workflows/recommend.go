// Package workflows scores a fixed library of playbook templates against
// the user's profile and behavioral signals and returns ranked
// recommendations.
package workflows

import (
	"fmt"
	"math"
	"sort"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// Scoring constants. Behavioral contributions are scaled then capped so one
// runaway weight cannot dominate.
const (
	primaryServiceScore   = 40.0
	secondaryServiceScore = 15.0
	personaMatchScore     = 10.0
	authorityCap          = 15.0
	authorityScale        = 1.5
	themeCap              = 12.0
	themeScale            = 1.2
	goalScore             = 10.0
	prepareWorkflowsGoal  = "prepare_workflows"
	qualifyingScore       = 10.0
	maxRecommendations    = 3
)

// Inputs carries the signals recommendations are scored against.
type Inputs struct {
	Profile         *models.Profile
	BehaviourScores []models.BehaviorSignal
	Streams         models.StreamBuckets
}

// Recommend scores the template library and returns between one and three
// recommendations, never zero.
func Recommend(in Inputs) []models.WorkflowRecommendation {
	if in.Profile.IsDefault() && len(in.BehaviourScores) == 0 && len(in.Streams.High) == 0 {
		return []models.WorkflowRecommendation{generalRecommendation("No profile or activity signals yet; starting with broad monitoring")}
	}

	authorityWeights, themeWeights := signalWeights(in.BehaviourScores)

	scored := make([]models.WorkflowRecommendation, 0, len(library))
	for _, tmpl := range library {
		rec := scoreTemplate(tmpl, in.Profile, authorityWeights, themeWeights)
		scored = append(scored, rec)
	}

	var qualified []models.WorkflowRecommendation
	for _, rec := range scored {
		if rec.Score > qualifyingScore {
			qualified = append(qualified, rec)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Score > qualified[j].Score
	})
	if len(qualified) > maxRecommendations {
		qualified = qualified[:maxRecommendations]
	}

	if len(qualified) == 0 {
		for _, tmpl := range library {
			if containsNormalized(tmpl.ServiceTypes, "general") {
				return []models.WorkflowRecommendation{recommendationFromTemplate(tmpl, 0,
					[]string{"Closest match for broad regulatory monitoring"})}
			}
		}
		// Library always carries a general template; this is unreachable in
		// practice but keeps the 1-3 guarantee unconditional.
		return []models.WorkflowRecommendation{generalRecommendation("Fallback recommendation")}
	}

	if len(qualified) < maxRecommendations && !containsRecommendation(qualified, GeneralMonitoringID) {
		qualified = append(qualified, generalRecommendation("Baseline monitoring to round out your playbooks"))
	}
	return qualified
}

func signalWeights(signals []models.BehaviorSignal) (map[string]float64, map[string]float64) {
	authorities := make(map[string]float64)
	themes := make(map[string]float64)
	for _, s := range signals {
		key := models.NormalizeLabel(s.EntityID)
		if key == "" {
			continue
		}
		switch models.NormalizeLabel(s.EntityType) {
		case "authority":
			authorities[key] += s.Weight
		case "theme":
			themes[key] += s.Weight
		}
	}
	return authorities, themes
}

func scoreTemplate(tmpl Template, profile *models.Profile, authorityWeights, themeWeights map[string]float64) models.WorkflowRecommendation {
	score := 0.0
	var reasons []string

	if profile != nil {
		if primary := models.NormalizeLabel(profile.ServiceType); primary != "" && containsNormalized(tmpl.ServiceTypes, primary) {
			score += primaryServiceScore
			reasons = append(reasons, fmt.Sprintf("Matches your %s focus", primary))
		}
		for _, secondary := range profile.SecondaryServiceTypes {
			if containsNormalized(tmpl.ServiceTypes, models.NormalizeLabel(secondary)) {
				score += secondaryServiceScore
				reasons = append(reasons, fmt.Sprintf("Relevant to your secondary %s activity", models.NormalizeLabel(secondary)))
				break
			}
		}
		personaMatches := 0
		for _, persona := range profile.Personas {
			if containsNormalized(tmpl.Personas, models.NormalizeLabel(persona)) {
				personaMatches++
			}
		}
		if personaMatches > 0 {
			score += personaMatchScore * float64(personaMatches)
			reasons = append(reasons, fmt.Sprintf("Built for %d of your team roles", personaMatches))
		}
		if profile.HasGoal(prepareWorkflowsGoal) {
			score += goalScore
			reasons = append(reasons, "You asked to prepare workflows")
		}
	}

	for _, authority := range tmpl.Authorities {
		weight, ok := authorityWeights[authority]
		if !ok || weight == 0 {
			continue
		}
		contribution := math.Min(authorityCap, math.Abs(weight)*authorityScale)
		score += contribution
		reasons = append(reasons, fmt.Sprintf("You engage heavily with %s updates", authority))
	}
	for _, theme := range tmpl.Themes {
		weight, ok := themeWeights[theme]
		if !ok || weight == 0 {
			continue
		}
		contribution := math.Min(themeCap, math.Abs(weight)*themeScale)
		score += contribution
		reasons = append(reasons, fmt.Sprintf("Strong interest in the %s theme", theme))
	}

	if len(reasons) == 0 {
		reasons = []string{"General regulatory monitoring fit"}
	}
	return recommendationFromTemplate(tmpl, round1(score), reasons)
}

func generalRecommendation(reason string) models.WorkflowRecommendation {
	for _, tmpl := range library {
		if tmpl.ID == GeneralMonitoringID {
			return recommendationFromTemplate(tmpl, 0, []string{reason})
		}
	}
	return models.WorkflowRecommendation{ID: GeneralMonitoringID, Reasons: []string{reason}}
}

func recommendationFromTemplate(tmpl Template, score float64, reasons []string) models.WorkflowRecommendation {
	return models.WorkflowRecommendation{
		ID:          tmpl.ID,
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Actions:     tmpl.Actions,
		Reasons:     reasons,
		Score:       score,
	}
}

func containsRecommendation(recs []models.WorkflowRecommendation, id string) bool {
	for _, r := range recs {
		if r.ID == id {
			return true
		}
	}
	return false
}

func containsNormalized(haystack []string, needle string) bool {
	for _, h := range haystack {
		if models.NormalizeLabel(h) == needle {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
