// Package updates canonicalizes the free-text enrichment fields on
// regulatory updates and enforces the per-authority daily cap over working
// pools.
package updates

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// DefaultDeadlineWindowDays is the default look-ahead for upcoming
// compliance deadlines.
const DefaultDeadlineWindowDays = 10

// nextStepDeadlineWindowDays is the wider window used when deriving next
// steps.
const nextStepDeadlineWindowDays = 14

var highImpactKeywords = []string{"significant", "high", "critical"}

const personaTagPrefix = "persona:"

// NormalizeUrgency maps any casing or blank input to exactly one of the
// canonical urgency levels, defaulting to Low.
func NormalizeUrgency(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return models.UrgencyHigh
	case "medium":
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// IsHighImpact reports whether the update's impact level matches one of the
// high-impact keywords.
func IsHighImpact(u models.RegulatoryUpdate) bool {
	level := strings.ToLower(strings.TrimSpace(u.ImpactLevel))
	if level == "" {
		return false
	}
	for _, kw := range highImpactKeywords {
		if strings.Contains(level, kw) {
			return true
		}
	}
	return false
}

// UpcomingDeadline returns the update's compliance deadline iff it falls
// within [referenceDate, referenceDate+windowDays]. A non-positive window
// uses the default of 10 days.
func UpcomingDeadline(u models.RegulatoryUpdate, referenceDate time.Time, windowDays int) (time.Time, bool) {
	if !u.ComplianceDeadline.Valid {
		return time.Time{}, false
	}
	if windowDays <= 0 {
		windowDays = DefaultDeadlineWindowDays
	}
	deadline := u.ComplianceDeadline.Time
	windowEnd := referenceDate.AddDate(0, 0, windowDays)
	if deadline.Before(referenceDate) || deadline.After(windowEnd) {
		return time.Time{}, false
	}
	return deadline, true
}

// DerivePersonas extracts persona:<name> tags from the update. Updates with
// no persona tags default to executive/operations when high impact or High
// urgency, analyst otherwise.
func DerivePersonas(u models.RegulatoryUpdate) []string {
	var personas []string
	seen := make(map[string]bool)
	for _, tag := range u.Tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if !strings.HasPrefix(trimmed, personaTagPrefix) {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, personaTagPrefix))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		personas = append(personas, name)
	}
	if len(personas) > 0 {
		return personas
	}
	if IsHighImpact(u) || NormalizeUrgency(u.Urgency) == models.UrgencyHigh {
		return []string{"executive", "operations"}
	}
	return []string{"analyst"}
}

// DeriveNextStep suggests a single concrete action for the update. Priority:
// near deadline, then High urgency, then high impact, then generic
// monitoring.
func DeriveNextStep(u models.RegulatoryUpdate, referenceDate time.Time) string {
	if deadline, ok := UpcomingDeadline(u, referenceDate, nextStepDeadlineWindowDays); ok {
		return fmt.Sprintf("Review before %s", deadline.Format("2 Jan 2006"))
	}
	if NormalizeUrgency(u.Urgency) == models.UrgencyHigh {
		return "Escalate to your compliance lead today"
	}
	if IsHighImpact(u) {
		return "Schedule an impact assessment this week"
	}
	return "Monitor for follow-up guidance"
}

// AuthorityKey returns the lowercased authority bucket key, defaulting to
// "other" for blank authorities.
func AuthorityKey(authority string) string {
	key := strings.ToLower(strings.TrimSpace(authority))
	if key == "" {
		return "other"
	}
	return key
}

// SortByRecency orders updates most-recent-first by their extracted date.
// Undated updates sink to the end. The input slice is not modified.
func SortByRecency(updatesIn []models.RegulatoryUpdate) []models.RegulatoryUpdate {
	sorted := make([]models.RegulatoryUpdate, len(updatesIn))
	copy(sorted, updatesIn)
	sort.SliceStable(sorted, func(i, j int) bool {
		return timeutil.UpdateTimestamp(sorted[i]) > timeutil.UpdateTimestamp(sorted[j])
	})
	return sorted
}

// EnforceDailyAuthorityCap admits at most limit updates per (authority,
// calendar day) pair, preferring the most recent. A non-positive limit
// disables capping, and the cap is waived when the pool contains a single
// authority.
func EnforceDailyAuthorityCap(pool []models.RegulatoryUpdate, limit int) []models.RegulatoryUpdate {
	if limit <= 0 || len(pool) == 0 {
		return pool
	}

	authorities := make(map[string]bool)
	for _, u := range pool {
		authorities[AuthorityKey(u.Authority)] = true
	}
	if len(authorities) <= 1 {
		return pool
	}

	admitted := make([]models.RegulatoryUpdate, 0, len(pool))
	buckets := make(map[string]int)
	for _, u := range SortByRecency(pool) {
		t, ok := timeutil.ExtractUpdateDate(u)
		day := ""
		if ok {
			day = timeutil.DayKey(t)
		}
		key := AuthorityKey(u.Authority) + "|" + day
		if buckets[key] >= limit {
			continue
		}
		buckets[key]++
		admitted = append(admitted, u)
	}
	return admitted
}
