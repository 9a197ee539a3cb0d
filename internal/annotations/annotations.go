// Package annotations aggregates user annotations into task counts and the
// near-term compliance timeline.
package annotations

import (
	"sort"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// TimelineWindowDays is the look-ahead for the compliance timeline.
const TimelineWindowDays = 30

// outstandingStatuses are the statuses that count as open tasks. Flagged
// annotations are tracked separately.
var outstandingStatuses = map[string]bool{
	models.AnnotationActionRequired: true,
	models.AnnotationAssigned:       true,
	models.AnnotationTriage:         true,
}

// IsOutstanding reports whether the annotation status counts as an open
// task.
func IsOutstanding(status string) bool {
	return outstandingStatuses[status]
}

// CountOutstandingTasks counts annotations with an outstanding status.
func CountOutstandingTasks(list []models.Annotation) int {
	count := 0
	for _, a := range list {
		if IsOutstanding(a.Status) {
			count++
		}
	}
	return count
}

// Summary holds headline annotation counts.
type Summary struct {
	Total   int `json:"total"`
	Tasks   int `json:"tasks"`
	Flagged int `json:"flagged"`
}

// Summarize computes total/task/flagged counts over the annotation list.
func Summarize(list []models.Annotation) Summary {
	s := Summary{Total: len(list)}
	for _, a := range list {
		if IsOutstanding(a.Status) {
			s.Tasks++
		}
		if a.Status == models.AnnotationFlagged {
			s.Flagged++
		}
	}
	return s
}

// CountOutstandingByPersona buckets outstanding-task counts by normalized
// persona label.
func CountOutstandingByPersona(list []models.Annotation) map[string]int {
	counts := make(map[string]int)
	for _, a := range list {
		if !IsOutstanding(a.Status) {
			continue
		}
		persona := models.NormalizeLabel(a.Persona)
		if persona == "" {
			continue
		}
		counts[persona]++
	}
	return counts
}

// BuildTimeline emits one deadline entry per update whose compliance
// deadline falls within the next 30 days of referenceDate, sorted ascending
// by date.
func BuildTimeline(pool []models.RegulatoryUpdate, referenceDate time.Time) []models.TimelineEntry {
	var entries []models.TimelineEntry
	for _, u := range pool {
		deadline, ok := updates.UpcomingDeadline(u, referenceDate, TimelineWindowDays)
		if !ok {
			continue
		}
		entries = append(entries, models.TimelineEntry{
			Date:      deadline,
			Type:      "deadline",
			Title:     u.Headline,
			Authority: u.Authority,
			Urgency:   updates.NormalizeUrgency(u.Urgency),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}
