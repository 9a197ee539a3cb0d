package models

import "time"

// Relevance tiers and profile relevance tags
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"

	RelevanceCore    = "core"
	RelevanceRelated = "related"
	RelevanceBroader = "broader"
	RelevanceGeneral = "general"
)

// DigestEntry is the digest projection of a RegulatoryUpdate: the raw update
// plus everything the pipeline derived for it.
type DigestEntry struct {
	Update           RegulatoryUpdate `json:"update"`
	RelevanceScore   float64          `json:"relevance_score"`
	Personas         []string         `json:"personas"`
	NextStep         string           `json:"next_step"`
	Pinned           bool             `json:"pinned"`
	ProfileRelevance string           `json:"profile_relevance"`
}

// StreamBuckets holds the relevance-tiered update streams after fairness
// rebalancing. Entries within a tier are in interleaved recency order.
type StreamBuckets struct {
	High   []DigestEntry `json:"high"`
	Medium []DigestEntry `json:"medium"`
	Low    []DigestEntry `json:"low"`
}

// All returns every entry across tiers, highest tier first.
func (s StreamBuckets) All() []DigestEntry {
	out := make([]DigestEntry, 0, len(s.High)+len(s.Medium)+len(s.Low))
	out = append(out, s.High...)
	out = append(out, s.Medium...)
	out = append(out, s.Low...)
	return out
}

// RiskComponent is one named, weighted signal inside the risk pulse.
type RiskComponent struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Risk pulse labels
const (
	RiskStable   = "Stable"
	RiskElevated = "Elevated"
	RiskCritical = "Critical"
)

// RiskPulse is the composite 0-10 severity score for the snapshot day.
type RiskPulse struct {
	Score      float64         `json:"score"`
	Label      string          `json:"label"`
	Delta      float64         `json:"delta"`
	Components []RiskComponent `json:"components"`
}

// PersonaBriefing is the generated summary and next-step list for one
// persona.
type PersonaBriefing struct {
	Summary   string   `json:"summary"`
	NextSteps []string `json:"next_steps"`
}

// PersonaSnapshot aggregates one persona's view of the day.
type PersonaSnapshot struct {
	Count     int             `json:"count"`
	Pins      int             `json:"pins"`
	OpenTasks int             `json:"open_tasks"`
	Updates   []DigestEntry   `json:"updates"`
	Briefing  PersonaBriefing `json:"briefing"`
}

// TimelineEntry is one upcoming compliance event.
type TimelineEntry struct {
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Authority string    `json:"authority"`
	Urgency   string    `json:"urgency"`
}

// Theme is a recurring tag across high-impact updates.
type Theme struct {
	Tag    string `json:"tag"`
	Count  int    `json:"count"`
	Signal string `json:"signal"` // "rising" | "steady"
}

// HeroInsight is the single best authority + update focus for the day.
type HeroInsight struct {
	Headline       string   `json:"headline"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
	RelatedSignals []string `json:"related_signals,omitempty"`
}

// QuickStats are the headline counters shown at the top of the digest.
type QuickStats struct {
	TotalUpdates      int `json:"total_updates"`
	HighImpact        int `json:"high_impact"`
	ActiveAuthorities int `json:"active_authorities"`
	UpcomingDeadlines int `json:"upcoming_deadlines"`
	OpenTasks         int `json:"open_tasks"`
	Pins              int `json:"pins"`
}

// WorkflowRecommendation is a scored playbook suggestion.
type WorkflowRecommendation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Reasons     []string `json:"reasons"`
	Score       float64  `json:"score"`
}

// WorkspaceMeta summarizes the user's workspace alongside the digest.
type WorkspaceMeta struct {
	Stats          WorkspaceStats `json:"stats"`
	SavedSearches  int            `json:"saved_searches"`
	CustomAlerts   int            `json:"custom_alerts"`
	SavedWorkflows int            `json:"saved_workflows"`
}

// LayoutConfig drives section ordering in consuming frontends. The digest
// core only selects which sections carry data.
type LayoutConfig struct {
	Sections    []string `json:"sections"`
	DefaultView string   `json:"default_view"`
}

// DailySnapshot is the aggregate root: one fused intelligence snapshot,
// computed fresh per invocation from current collaborator state.
type DailySnapshot struct {
	GeneratedAt          time.Time                  `json:"generated_at"`
	SnapshotDate         string                     `json:"snapshot_date"` // resolved reference day, may differ from "now"
	RiskPulse            RiskPulse                  `json:"risk_pulse"`
	FocusHeadline        string                     `json:"focus_headline,omitempty"`
	HeroInsight          HeroInsight                `json:"hero_insight"`
	QuickStats           QuickStats                 `json:"quick_stats"`
	ExecutiveSummary     string                     `json:"executive_summary"`
	Streams              StreamBuckets              `json:"streams"`
	Personas             map[string]PersonaSnapshot `json:"personas"`
	RecommendedWorkflows []WorkflowRecommendation   `json:"recommended_workflows"`
	Workspace            WorkspaceMeta              `json:"workspace"`
	Timeline             []TimelineEntry            `json:"timeline"`
	Themes               []Theme                    `json:"themes"`
	Profile              *Profile                   `json:"profile,omitempty"`
	Layout               LayoutConfig               `json:"layout"`

	// DegradedSources names collaborators whose fetch failed and was
	// replaced with an empty default, so callers can tell "no data" from
	// "fetch failed".
	DegradedSources []string `json:"degraded_sources,omitempty"`
}
