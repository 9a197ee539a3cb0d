package models

import "strings"

// Profile is the user's declared firm profile. All fields are free text and
// are normalized (lowercased, trimmed) before matching.
type Profile struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"user_id"`
	ServiceType           string   `json:"service_type"`
	SecondaryServiceTypes []string `json:"secondary_service_types,omitempty"`
	Personas              []string `json:"personas,omitempty"`
	Regions               []string `json:"regions,omitempty"`
	Goals                 []string `json:"goals,omitempty"`
}

// NormalizeLabel canonicalizes a free-text profile label for matching.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HasGoal reports whether the profile declares the given goal.
func (p *Profile) HasGoal(goal string) bool {
	if p == nil {
		return false
	}
	goal = NormalizeLabel(goal)
	for _, g := range p.Goals {
		if NormalizeLabel(g) == goal {
			return true
		}
	}
	return false
}

// IsDefault reports whether the profile carries no usable targeting signal.
func (p *Profile) IsDefault() bool {
	if p == nil {
		return true
	}
	return NormalizeLabel(p.ServiceType) == "" &&
		len(p.SecondaryServiceTypes) == 0 &&
		len(p.Personas) == 0
}
