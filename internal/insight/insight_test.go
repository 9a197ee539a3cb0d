package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

var ref = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func entry(id, authority, urgency, impact string, published time.Time) models.DigestEntry {
	return models.DigestEntry{
		Update: models.RegulatoryUpdate{
			ID:          id,
			Headline:    "Update " + id,
			Authority:   authority,
			Urgency:     urgency,
			ImpactLevel: impact,
			PublishedAt: models.NewFlexTime(published),
		},
	}
}

func TestSelectAuthorityFocus(t *testing.T) {
	entries := []models.DigestEntry{
		entry("a1", "FCA", "high", "critical", ref), // priority 8
		entry("a2", "FCA", "low", "", ref),          // priority 1
		entry("b1", "PRA", "medium", "", ref),       // priority 2.5
	}

	focus, ok := SelectAuthorityFocus(entries, ref)
	require.True(t, ok)
	assert.Equal(t, "FCA", focus.Authority)
	assert.Equal(t, "a1", focus.Best.Update.ID)
}

func TestSelectAuthorityFocusTieBreaksOnRecency(t *testing.T) {
	older := entry("old", "FCA", "high", "", ref.Add(-2*time.Hour))
	newer := entry("new", "PRA", "high", "", ref)

	focus, ok := SelectAuthorityFocus([]models.DigestEntry{older, newer}, ref)
	require.True(t, ok)
	assert.Equal(t, "PRA", focus.Authority)
}

func TestSelectAuthorityFocusEmpty(t *testing.T) {
	_, ok := SelectAuthorityFocus(nil, ref)
	assert.False(t, ok)

	_, ok = SelectAuthorityFocus([]models.DigestEntry{entry("x", "", "low", "", ref)}, ref)
	assert.False(t, ok)
}

func TestBuildExecutiveSummary(t *testing.T) {
	got := BuildExecutiveSummary(SummaryInputs{
		FocusHeadline:    "FCA consults on safeguarding",
		HighImpactCount:  2,
		AuthorityCount:   3,
		DeadlineCount:    1,
		FocusAuthorities: []string{"FCA", "PRA", "ICO", "ESMA"},
	})

	assert.Contains(t, got, "Today's focus: FCA consults on safeguarding.")
	assert.Contains(t, got, "2 high-impact development(s) across 3 authorities.")
	assert.Contains(t, got, "1 compliance deadline(s) approaching.")
	assert.Contains(t, got, "Key focus areas: FCA, PRA, ICO.")
	assert.NotContains(t, got, "ESMA")
}

func TestBuildExecutiveSummaryQuietDay(t *testing.T) {
	got := BuildExecutiveSummary(SummaryInputs{})
	assert.Contains(t, got, "0 high-impact development(s) across 0 authorities.")
	assert.Contains(t, got, "No imminent compliance deadlines.")
	assert.NotContains(t, got, "Key focus areas")
}

func TestBuildHeroInsight(t *testing.T) {
	best := entry("a1", "FCA", "high", "critical", ref)
	best.Update.Summary = "The FCA set out final safeguarding rules."
	siblings := []models.DigestEntry{
		best,
		entry("a2", "fca", "low", "", ref),
		entry("a3", "FCA", "low", "", ref),
		entry("b1", "PRA", "low", "", ref),
	}

	hero := BuildHeroInsight(Focus{Authority: "FCA", Best: best}, true, siblings, "exec summary", ref)

	assert.Equal(t, "FCA — Update a1", hero.Headline)
	assert.Equal(t, "The FCA set out final safeguarding rules.", hero.Summary)
	assert.Equal(t, "Escalate to your compliance lead today", hero.Recommendation)
	assert.Equal(t, []string{"Update a2", "Update a3"}, hero.RelatedSignals)
}

func TestBuildHeroInsightFallbacks(t *testing.T) {
	hero := BuildHeroInsight(Focus{}, false, nil, "", ref)
	assert.Equal(t, "Monitoring in progress", hero.Headline)
	assert.Empty(t, hero.RelatedSignals)

	// Empty update summary falls back to the executive summary
	best := entry("a1", "FCA", "low", "", ref)
	hero = BuildHeroInsight(Focus{Authority: "FCA", Best: best}, true, nil, "exec summary", ref)
	assert.Equal(t, "exec summary", hero.Summary)
}

func TestComputeThemes(t *testing.T) {
	pool := []models.RegulatoryUpdate{
		{ImpactLevel: "significant", Tags: []string{"payments", "persona:executive", "AML"}},
		{ImpactLevel: "critical", Tags: []string{"payments", "aml"}},
		{ImpactLevel: "high", Tags: []string{"Payments"}},
		{ImpactLevel: "low", Tags: []string{"ignored"}},
	}

	themes := ComputeThemes(pool)
	require.NotEmpty(t, themes)
	assert.Equal(t, models.Theme{Tag: "payments", Count: 3, Signal: "rising"}, themes[0])
	assert.Equal(t, models.Theme{Tag: "aml", Count: 2, Signal: "steady"}, themes[1])

	for _, th := range themes {
		assert.NotContains(t, th.Tag, "persona:")
		assert.NotEqual(t, "ignored", th.Tag)
	}
}

func TestComputeThemesTopFive(t *testing.T) {
	u := models.RegulatoryUpdate{
		ImpactLevel: "significant",
		Tags:        []string{"a", "b", "c", "d", "e", "f", "g"},
	}
	themes := ComputeThemes([]models.RegulatoryUpdate{u})
	assert.Len(t, themes, 5)
}
