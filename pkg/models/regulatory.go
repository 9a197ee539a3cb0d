package models

// Urgency levels as normalized by the digest pipeline
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// RegulatoryUpdate represents one enriched regulatory update as produced by
// the upstream ingestion and AI annotation steps. All enrichment fields are
// free text until normalized by the digest pipeline.
type RegulatoryUpdate struct {
	ID                  string   `json:"id"`
	Headline            string   `json:"headline"`
	Summary             string   `json:"summary,omitempty"`
	Authority           string   `json:"authority"`
	Sector              string   `json:"sector,omitempty"`
	Area                string   `json:"area,omitempty"`
	Urgency             string   `json:"urgency,omitempty"`
	ImpactLevel         string   `json:"impact_level,omitempty"`
	BusinessImpactScore float64  `json:"business_impact_score,omitempty"`
	Tags                []string `json:"ai_tags,omitempty"`

	// Upstream feeds disagree on which date field is populated; the pipeline
	// probes them in priority order (published_at, published_date,
	// fetched_date, created_at).
	ComplianceDeadline FlexTime `json:"compliance_deadline,omitempty"`
	PublishedAt        FlexTime `json:"published_at,omitempty"`
	PublishedDate      FlexTime `json:"published_date,omitempty"`
	FetchedDate        FlexTime `json:"fetched_date,omitempty"`
	CreatedAt          FlexTime `json:"created_at,omitempty"`
}

// Annotation represents a user note or task attached to an update.
type Annotation struct {
	ID        string   `json:"id"`
	UpdateID  string   `json:"update_id,omitempty"`
	Status    string   `json:"status"`
	Persona   string   `json:"persona,omitempty"`
	Note      string   `json:"note,omitempty"`
	CreatedAt FlexTime `json:"created_at,omitempty"`
}

// Annotation statuses
const (
	AnnotationFlagged        = "flagged"
	AnnotationActionRequired = "action_required"
	AnnotationAssigned       = "assigned"
	AnnotationTriage         = "triage"
	AnnotationNote           = "note"
)

// BehaviorSignal is an accumulated learning weight expressing a user's
// affinity toward an authority or theme. Sign and magnitude are both
// meaningful.
type BehaviorSignal struct {
	EntityType string  `json:"entity_type"` // "authority" | "theme"
	EntityID   string  `json:"entity_id"`
	Weight     float64 `json:"weight"`
}

// PinnedItem marks an update the user pinned to their workspace.
type PinnedItem struct {
	ID        string   `json:"id"`
	UpdateID  string   `json:"update_id"`
	UserID    string   `json:"user_id,omitempty"`
	CreatedAt FlexTime `json:"created_at,omitempty"`
}

// SavedSearch is a stored query the user can re-run.
type SavedSearch struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Query     string   `json:"query"`
	CreatedAt FlexTime `json:"created_at,omitempty"`
}

// CustomAlert is a user-defined alerting rule.
type CustomAlert struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// SavedWorkflow is a playbook instance the user has already started.
type SavedWorkflow struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status,omitempty"`
	CreatedAt FlexTime `json:"created_at,omitempty"`
}

// WorkspaceStats carries opaque workspace counters from the data-access
// layer.
type WorkspaceStats map[string]interface{}
