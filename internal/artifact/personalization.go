package artifact

import "strings"

// RiskTolerance is the user's self-reported appetite for risk.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "LOW"
	RiskMedium RiskTolerance = "MEDIUM"
	RiskHigh   RiskTolerance = "HIGH"
)

// ParseRiskTolerance returns "" for unknown values.
func ParseRiskTolerance(s string) RiskTolerance {
	switch r := RiskTolerance(strings.ToUpper(strings.TrimSpace(s))); r {
	case RiskLow, RiskMedium, RiskHigh:
		return r
	}
	return ""
}

// PersonalizationContext is optional user background merged into prompts.
// It only steers phrasing and never gates a phase.
type PersonalizationContext struct {
	OccupationOrBio string        `json:"occupation_or_bio,omitempty"`
	RiskTolerance   RiskTolerance `json:"risk_tolerance,omitempty"`
}

// Empty reports whether p carries nothing worth sending.
func (p *PersonalizationContext) Empty() bool {
	return p == nil || (strings.TrimSpace(p.OccupationOrBio) == "" && p.RiskTolerance == "")
}
