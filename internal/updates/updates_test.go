package updates

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

func TestNormalizeUrgency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"high", "High"},
		{"HIGH", "High"},
		{"  High  ", "High"},
		{"medium", "Medium"},
		{"MeDiUm", "Medium"},
		{"low", "Low"},
		{"", "Low"},
		{"urgent", "Low"},
		{"unknown", "Low"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeUrgency(tc.in), "input %q", tc.in)
	}
}

func TestIsHighImpact(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"Significant", true},
		{"HIGH", true},
		{"critical", true},
		{"Critical impact expected", true},
		{"moderate", false},
		{"low", false},
		{"", false},
	}
	for _, tc := range tests {
		u := models.RegulatoryUpdate{ImpactLevel: tc.level}
		assert.Equal(t, tc.want, IsHighImpact(u), "impact level %q", tc.level)
	}
}

func TestUpcomingDeadlineWindow(t *testing.T) {
	ref := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	within := models.RegulatoryUpdate{ComplianceDeadline: models.NewFlexTime(ref.AddDate(0, 0, 9))}
	deadline, ok := UpcomingDeadline(within, ref, 10)
	require.True(t, ok)
	assert.Equal(t, ref.AddDate(0, 0, 9), deadline)

	beyond := models.RegulatoryUpdate{ComplianceDeadline: models.NewFlexTime(ref.AddDate(0, 0, 11))}
	_, ok = UpcomingDeadline(beyond, ref, 10)
	assert.False(t, ok)

	past := models.RegulatoryUpdate{ComplianceDeadline: models.NewFlexTime(ref.AddDate(0, 0, -1))}
	_, ok = UpcomingDeadline(past, ref, 10)
	assert.False(t, ok)

	// Non-positive window falls back to the 10-day default
	_, ok = UpcomingDeadline(within, ref, 0)
	assert.True(t, ok)

	none := models.RegulatoryUpdate{}
	_, ok = UpcomingDeadline(none, ref, 10)
	assert.False(t, ok)
}

func TestDerivePersonas(t *testing.T) {
	tagged := models.RegulatoryUpdate{Tags: []string{"persona:Executive", "aml", "persona:legal"}}
	assert.Equal(t, []string{"executive", "legal"}, DerivePersonas(tagged))

	highImpact := models.RegulatoryUpdate{ImpactLevel: "significant"}
	assert.Equal(t, []string{"executive", "operations"}, DerivePersonas(highImpact))

	urgent := models.RegulatoryUpdate{Urgency: "high"}
	assert.Equal(t, []string{"executive", "operations"}, DerivePersonas(urgent))

	plain := models.RegulatoryUpdate{Urgency: "low"}
	assert.Equal(t, []string{"analyst"}, DerivePersonas(plain))
}

func TestDeriveNextStepPriority(t *testing.T) {
	ref := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	withDeadline := models.RegulatoryUpdate{
		Urgency:            "high",
		ComplianceDeadline: models.NewFlexTime(ref.AddDate(0, 0, 7)),
	}
	assert.Equal(t, "Review before 8 Mar 2026", DeriveNextStep(withDeadline, ref))

	urgent := models.RegulatoryUpdate{Urgency: "High", ImpactLevel: "critical"}
	assert.Equal(t, "Escalate to your compliance lead today", DeriveNextStep(urgent, ref))

	impactful := models.RegulatoryUpdate{ImpactLevel: "significant"}
	assert.Equal(t, "Schedule an impact assessment this week", DeriveNextStep(impactful, ref))

	quiet := models.RegulatoryUpdate{}
	assert.Equal(t, "Monitor for follow-up guidance", DeriveNextStep(quiet, ref))
}

func sameDayUpdate(id, authority string, published time.Time) models.RegulatoryUpdate {
	return models.RegulatoryUpdate{
		ID:          id,
		Authority:   authority,
		PublishedAt: models.NewFlexTime(published),
	}
}

func TestEnforceDailyAuthorityCap(t *testing.T) {
	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	var pool []models.RegulatoryUpdate
	for i := 0; i < 5; i++ {
		pool = append(pool, sameDayUpdate(fmt.Sprintf("fca-%d", i), "FCA", day.Add(time.Duration(i)*time.Hour)))
	}
	// Second authority so the cap applies
	pool = append(pool, sameDayUpdate("pra-0", "PRA", day))

	capped := EnforceDailyAuthorityCap(pool, 3)

	var fca []string
	for _, u := range capped {
		if u.Authority == "FCA" {
			fca = append(fca, u.ID)
		}
	}
	// Exactly 3 admitted, the 3 most recent, most-recent-first
	assert.Equal(t, []string{"fca-4", "fca-3", "fca-2"}, fca)
	assert.Len(t, capped, 4)
}

func TestEnforceDailyAuthorityCapWaivers(t *testing.T) {
	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	var pool []models.RegulatoryUpdate
	for i := 0; i < 5; i++ {
		pool = append(pool, sameDayUpdate(fmt.Sprintf("u%d", i), "FCA", day.Add(time.Duration(i)*time.Minute)))
	}

	// Single authority: cap waived
	assert.Len(t, EnforceDailyAuthorityCap(pool, 3), 5)

	// Non-positive limit disables capping
	pool = append(pool, sameDayUpdate("pra", "PRA", day))
	assert.Len(t, EnforceDailyAuthorityCap(pool, 0), 6)
	assert.Len(t, EnforceDailyAuthorityCap(pool, -1), 6)
}

func TestEnforceDailyAuthorityCapSpansDays(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	pool := []models.RegulatoryUpdate{
		sameDayUpdate("a1", "FCA", day1),
		sameDayUpdate("a2", "FCA", day1.Add(time.Hour)),
		sameDayUpdate("a3", "FCA", day1.Add(2 * time.Hour)),
		sameDayUpdate("b1", "FCA", day2),
		sameDayUpdate("b2", "FCA", day2.Add(time.Hour)),
		sameDayUpdate("c1", "PRA", day1),
	}

	capped := EnforceDailyAuthorityCap(pool, 2)
	// 2 per day for FCA plus the PRA item
	assert.Len(t, capped, 5)
}
