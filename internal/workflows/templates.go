package workflows

// Template is one predefined playbook scorable against a user's profile and
// behavioral signals. Matching fields are stored normalized.
type Template struct {
	ID           string
	Title        string
	Description  string
	ServiceTypes []string
	Personas     []string
	Authorities  []string
	Themes       []string
	Actions      []string
}

// GeneralMonitoringID is the always-available fallback playbook.
const GeneralMonitoringID = "general-monitoring-digest"

var library = []Template{
	{
		ID:           "payments-incident-response",
		Title:        "Payments incident response",
		Description:  "Stand up an incident response loop for payments-facing regulatory changes.",
		ServiceTypes: []string{"payments", "emoney"},
		Personas:     []string{"operations", "executive"},
		Authorities:  []string{"psr", "fca"},
		Themes:       []string{"payments", "operational-resilience", "safeguarding"},
		Actions: []string{
			"Map affected payment flows and third parties",
			"Brief the incident response team on the change",
			"Update safeguarding and wind-down documentation",
			"Schedule a tabletop exercise within 30 days",
		},
	},
	{
		ID:           "consumer-duty-readiness",
		Title:        "Consumer Duty readiness review",
		Description:  "Assess retail product lines against the latest Consumer Duty expectations.",
		ServiceTypes: []string{"retail-banking", "consumer-credit", "insurance"},
		Personas:     []string{"executive", "operations"},
		Authorities:  []string{"fca"},
		Themes:       []string{"consumer-duty", "conduct", "fair-value"},
		Actions: []string{
			"Refresh fair-value assessments for in-scope products",
			"Review customer-outcome metrics against the new guidance",
			"Log gaps and owners in the remediation tracker",
		},
	},
	{
		ID:           "aml-controls-review",
		Title:        "AML controls review",
		Description:  "Re-test financial crime controls after enforcement or guidance changes.",
		ServiceTypes: []string{"payments", "retail-banking", "crypto"},
		Personas:     []string{"operations", "analyst"},
		Authorities:  []string{"fca", "hmt"},
		Themes:       []string{"aml", "financial-crime", "sanctions"},
		Actions: []string{
			"Re-run the business-wide risk assessment",
			"Sample-test transaction monitoring alerts",
			"Confirm SAR escalation paths are current",
		},
	},
	{
		ID:           "prudential-reporting-sprint",
		Title:        "Prudential reporting sprint",
		Description:  "Close out reporting changes from prudential policy updates.",
		ServiceTypes: []string{"retail-banking", "investment"},
		Personas:     []string{"analyst", "operations"},
		Authorities:  []string{"pra", "boe"},
		Themes:       []string{"prudential", "reporting", "capital"},
		Actions: []string{
			"Diff the reporting template changes",
			"Update data lineage for affected returns",
			"Dry-run the next submission window",
		},
	},
	{
		ID:           "data-protection-impact",
		Title:        "Data protection impact assessment",
		Description:  "Run a DPIA cycle for updates touching personal data processing.",
		ServiceTypes: []string{"general", "retail-banking", "payments"},
		Personas:     []string{"analyst"},
		Authorities:  []string{"ico"},
		Themes:       []string{"data-protection", "privacy"},
		Actions: []string{
			"Identify processing activities in scope",
			"Refresh the DPIA register",
			"Notify the DPO of material changes",
		},
	},
	{
		ID:           GeneralMonitoringID,
		Title:        "General monitoring digest",
		Description:  "Keep a light-touch watch across your authorities with a weekly review cadence.",
		ServiceTypes: []string{"general"},
		Personas:     []string{"analyst"},
		Authorities:  nil,
		Themes:       nil,
		Actions: []string{
			"Review the daily digest for new high-impact items",
			"Pin anything needing follow-up",
			"Summarise the week for stakeholders each Friday",
		},
	},
}

// Library returns the playbook template library.
func Library() []Template {
	return library
}
