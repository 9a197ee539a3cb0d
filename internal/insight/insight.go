// Package insight selects the day's authority focus and assembles the
// executive summary, hero insight, and theme roll-up.
package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/briefing"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

const (
	maxRelatedSignals = 3
	maxFocusAreas     = 3
	maxThemes         = 5
	risingSupport     = 3
)

// Focus is the selected "authority + update" pair with the highest
// accumulated priority.
type Focus struct {
	Authority string
	Best      models.DigestEntry
}

// SelectAuthorityFocus picks the authority with the highest total update
// priority, tie-broken by the most recent best-update timestamp.
func SelectAuthorityFocus(entries []models.DigestEntry, referenceDate time.Time) (Focus, bool) {
	type tally struct {
		authority string
		total     float64
		best      models.DigestEntry
		bestScore float64
	}
	tallies := make(map[string]*tally)
	var order []string

	for _, e := range entries {
		name := strings.TrimSpace(e.Update.Authority)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		priority := briefing.RankUpdatePriority(e.Update, referenceDate)
		t := tallies[key]
		if t == nil {
			t = &tally{authority: name}
			tallies[key] = t
			order = append(order, key)
		}
		t.total += priority
		if priority > t.bestScore {
			t.best, t.bestScore = e, priority
		}
	}
	if len(tallies) == 0 {
		return Focus{}, false
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := tallies[order[i]], tallies[order[j]]
		if a.total != b.total {
			return a.total > b.total
		}
		return timeutil.UpdateTimestamp(a.best.Update) > timeutil.UpdateTimestamp(b.best.Update)
	})

	winner := tallies[order[0]]
	return Focus{Authority: winner.authority, Best: winner.best}, true
}

// SummaryInputs are the counts feeding the executive summary text.
type SummaryInputs struct {
	FocusHeadline    string
	HighImpactCount  int
	AuthorityCount   int
	DeadlineCount    int
	FocusAuthorities []string
}

// BuildExecutiveSummary concatenates the day's narrative sentences.
func BuildExecutiveSummary(in SummaryInputs) string {
	var parts []string
	if in.FocusHeadline != "" {
		parts = append(parts, fmt.Sprintf("Today's focus: %s.", strings.TrimSuffix(in.FocusHeadline, ".")))
	}
	parts = append(parts, fmt.Sprintf("%d high-impact development(s) across %d authorities.",
		in.HighImpactCount, in.AuthorityCount))
	if in.DeadlineCount > 0 {
		parts = append(parts, fmt.Sprintf("%d compliance deadline(s) approaching.", in.DeadlineCount))
	} else {
		parts = append(parts, "No imminent compliance deadlines.")
	}
	if in.HighImpactCount > 0 && len(in.FocusAuthorities) > 0 {
		areas := in.FocusAuthorities
		if len(areas) > maxFocusAreas {
			areas = areas[:maxFocusAreas]
		}
		parts = append(parts, fmt.Sprintf("Key focus areas: %s.", strings.Join(areas, ", ")))
	}
	return strings.Join(parts, " ")
}

// BuildHeroInsight turns the focus into the hero card. Without a focus it
// returns a generic monitoring insight.
func BuildHeroInsight(focus Focus, ok bool, entries []models.DigestEntry, executiveSummary string, referenceDate time.Time) models.HeroInsight {
	if !ok {
		return models.HeroInsight{
			Headline:       "Monitoring in progress",
			Summary:        "No standout regulatory development today. Monitoring continues across your authorities.",
			Recommendation: "Check back later or review your saved searches",
		}
	}

	summary := strings.TrimSpace(focus.Best.Update.Summary)
	if summary == "" {
		summary = executiveSummary
	}

	var related []string
	focusKey := updates.AuthorityKey(focus.Authority)
	for _, e := range entries {
		if len(related) == maxRelatedSignals {
			break
		}
		if e.Update.ID == focus.Best.Update.ID {
			continue
		}
		if updates.AuthorityKey(e.Update.Authority) != focusKey {
			continue
		}
		related = append(related, e.Update.Headline)
	}

	return models.HeroInsight{
		Headline:       fmt.Sprintf("%s — %s", focus.Authority, focus.Best.Update.Headline),
		Summary:        summary,
		Recommendation: updates.DeriveNextStep(focus.Best.Update, referenceDate),
		RelatedSignals: related,
	}
}

// ComputeThemes tallies non-persona tags across high-impact updates and
// returns the top themes by frequency.
func ComputeThemes(pool []models.RegulatoryUpdate) []models.Theme {
	counts := make(map[string]int)
	var order []string
	for _, u := range pool {
		if !updates.IsHighImpact(u) {
			continue
		}
		for _, tag := range u.Tags {
			key := models.NormalizeLabel(tag)
			if key == "" || strings.HasPrefix(key, "persona:") {
				continue
			}
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxThemes {
		order = order[:maxThemes]
	}

	themes := make([]models.Theme, 0, len(order))
	for _, tag := range order {
		signal := "steady"
		if counts[tag] >= risingSupport {
			signal = "rising"
		}
		themes = append(themes, models.Theme{Tag: tag, Count: counts[tag], Signal: signal})
	}
	return themes
}
