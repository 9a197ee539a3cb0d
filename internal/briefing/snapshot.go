// Package briefing builds per-persona snapshots and natural-language
// briefings from the tiered update streams.
package briefing

import (
	"sort"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/annotations"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// MaxSurfacedPerPersona bounds how many updates a persona snapshot surfaces.
const MaxSurfacedPerPersona = 5

type candidate struct {
	entry    models.DigestEntry
	priority float64
}

// BuildPersonaSnapshots aggregates the streams into one snapshot per
// persona. An update becomes a surface candidate when it sits in the top
// tier, is pinned, or carries High urgency; on key collision the
// higher-priority version wins.
func BuildPersonaSnapshots(streams models.StreamBuckets, annots []models.Annotation, referenceDate time.Time) map[string]models.PersonaSnapshot {
	type state struct {
		count      int
		pins       int
		candidates map[string]candidate
	}
	personas := make(map[string]*state)

	tiers := []struct {
		entries []models.DigestEntry
		top     bool
	}{
		{streams.High, true},
		{streams.Medium, false},
		{streams.Low, false},
	}

	for _, tier := range tiers {
		for _, entry := range tier.entries {
			names := entry.Personas
			if len(names) == 0 {
				names = []string{"analyst"}
			}
			surfaced := tier.top || entry.Pinned ||
				updates.NormalizeUrgency(entry.Update.Urgency) == models.UrgencyHigh
			priority := RankUpdatePriority(entry.Update, referenceDate)

			for _, name := range names {
				st := personas[name]
				if st == nil {
					st = &state{candidates: make(map[string]candidate)}
					personas[name] = st
				}
				st.count++
				if entry.Pinned {
					st.pins++
				}
				if !surfaced {
					continue
				}
				if existing, ok := st.candidates[entry.Update.ID]; !ok || priority > existing.priority {
					st.candidates[entry.Update.ID] = candidate{entry: entry, priority: priority}
				}
			}
		}
	}

	taskCounts := annotations.CountOutstandingByPersona(annots)

	out := make(map[string]models.PersonaSnapshot, len(personas))
	for name, st := range personas {
		ranked := make([]candidate, 0, len(st.candidates))
		for _, c := range st.candidates {
			ranked = append(ranked, c)
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].priority > ranked[j].priority
		})
		if len(ranked) > MaxSurfacedPerPersona {
			ranked = ranked[:MaxSurfacedPerPersona]
		}
		surfaced := make([]models.DigestEntry, 0, len(ranked))
		for _, c := range ranked {
			surfaced = append(surfaced, c.entry)
		}
		out[name] = models.PersonaSnapshot{
			Count:     st.count,
			Pins:      st.pins,
			OpenTasks: taskCounts[name],
			Updates:   surfaced,
		}
	}
	return out
}
