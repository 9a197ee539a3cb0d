package briefing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// personaConfig drives how one persona's briefing is phrased.
type personaConfig struct {
	maxItems int
	verbs    map[string]string // normalized urgency -> verb
	summary  func(authorities string, count int) string
	fallback func(pins int) []string
}

var personaConfigs = map[string]personaConfig{
	"executive": {
		maxItems: 3,
		verbs: map[string]string{
			models.UrgencyHigh:   "Escalate",
			models.UrgencyMedium: "Review",
			models.UrgencyLow:    "Note",
		},
		summary: func(authorities string, count int) string {
			return fmt.Sprintf("%d development(s) from %s need executive attention today.", count, authorities)
		},
		fallback: func(pins int) []string {
			if pins > 0 {
				return []string{fmt.Sprintf("Revisit your %d pinned item(s) for board reporting", pins)}
			}
			return []string{"No escalations today; review the risk pulse for context"}
		},
	},
	"operations": {
		maxItems: 4,
		verbs: map[string]string{
			models.UrgencyHigh:   "Action",
			models.UrgencyMedium: "Schedule",
			models.UrgencyLow:    "Track",
		},
		summary: func(authorities string, count int) string {
			return fmt.Sprintf("%d change(s) from %s may need process updates.", count, authorities)
		},
		fallback: func(pins int) []string {
			if pins > 0 {
				return []string{fmt.Sprintf("Work through your %d pinned item(s) awaiting triage", pins)}
			}
			return []string{"No operational changes today; keep monitoring procedures current"}
		},
	},
	"analyst": {
		maxItems: 5,
		verbs: map[string]string{
			models.UrgencyHigh:   "Investigate",
			models.UrgencyMedium: "Assess",
			models.UrgencyLow:    "Log",
		},
		summary: func(authorities string, count int) string {
			return fmt.Sprintf("%d publication(s) from %s to work through.", count, authorities)
		},
		fallback: func(pins int) []string {
			if pins > 0 {
				return []string{fmt.Sprintf("Deep-dive your %d pinned item(s) while the feed is quiet", pins)}
			}
			return []string{"Quiet day; a good window for horizon scanning"}
		},
	},
}

// defaultPersonaConfig covers personas that arrive via tags without a
// dedicated configuration.
var defaultPersonaConfig = personaConfig{
	maxItems: 4,
	verbs: map[string]string{
		models.UrgencyHigh:   "Prioritise",
		models.UrgencyMedium: "Review",
		models.UrgencyLow:    "Note",
	},
	summary: func(authorities string, count int) string {
		return fmt.Sprintf("%d relevant update(s) from %s.", count, authorities)
	},
	fallback: func(pins int) []string {
		if pins > 0 {
			return []string{fmt.Sprintf("Revisit your %d pinned item(s)", pins)}
		}
		return []string{"Nothing targeted today; monitoring continues"}
	},
}

// AttachBriefings generates a briefing for every persona snapshot, using all
// hydrated entries as a fallback pool when a persona has no surfaced
// updates of its own.
func AttachBriefings(snapshots map[string]models.PersonaSnapshot, allEntries []models.DigestEntry, referenceDate time.Time) map[string]models.PersonaSnapshot {
	out := make(map[string]models.PersonaSnapshot, len(snapshots))
	for name, snap := range snapshots {
		snap.Briefing = buildBriefing(name, snap, allEntries, referenceDate)
		out[name] = snap
	}
	return out
}

func buildBriefing(persona string, snap models.PersonaSnapshot, allEntries []models.DigestEntry, referenceDate time.Time) models.PersonaBriefing {
	cfg, ok := personaConfigs[persona]
	if !ok {
		cfg = defaultPersonaConfig
	}

	items := snap.Updates
	if len(items) == 0 {
		items = topByPriority(allEntries, referenceDate)
	}
	if len(items) > cfg.maxItems {
		items = items[:cfg.maxItems]
	}

	if len(items) == 0 {
		return models.PersonaBriefing{
			Summary:   "No regulatory activity for this view today.",
			NextSteps: cfg.fallback(snap.Pins),
		}
	}

	steps := make([]string, 0, len(items))
	for _, item := range items {
		urgency := updates.NormalizeUrgency(item.Update.Urgency)
		verb := cfg.verbs[urgency]
		steps = append(steps, fmt.Sprintf("%s: %s (%s) — %s",
			verb, item.Update.Headline, item.Update.Authority, item.NextStep))
	}

	return models.PersonaBriefing{
		Summary:   cfg.summary(joinAuthorities(authoritiesOf(items)), len(items)),
		NextSteps: steps,
	}
}

func topByPriority(entries []models.DigestEntry, referenceDate time.Time) []models.DigestEntry {
	ranked := make([]models.DigestEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return RankUpdatePriority(ranked[i].Update, referenceDate) > RankUpdatePriority(ranked[j].Update, referenceDate)
	})
	return ranked
}

func authoritiesOf(items []models.DigestEntry) []string {
	var names []string
	seen := make(map[string]bool)
	for _, item := range items {
		name := strings.TrimSpace(item.Update.Authority)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// joinAuthorities renders names as "A", "A and B", or "A, B and N others".
func joinAuthorities(names []string) string {
	switch len(names) {
	case 0:
		return "your regulators"
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return fmt.Sprintf("%s, %s and %d others", names[0], names[1], len(names)-2)
	}
}
