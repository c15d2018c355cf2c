package analysis

import (
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
)

// profileSection turns the optional personalization context into prompt
// constraints. It never adds facts about the user beyond what the profile
// states, and an empty profile yields an empty (skipped) section.
func profileSection(p *artifact.PersonalizationContext, phase string) llmtool.Section {
	if p.Empty() {
		return llmtool.Section{}
	}
	var lines []string
	if bio := strings.TrimSpace(p.OccupationOrBio); bio != "" {
		lines = append(lines,
			"User background: "+bio,
			"Tailor wording to this background only where it is relevant to the decision.",
		)
	}
	if hint := riskHint(p.RiskTolerance, phase); hint != "" {
		lines = append(lines, hint)
	}
	return llmtool.Section{Title: "USER_CONTEXT", Body: llmtool.Bullets(lines...)}
}

func riskHint(r artifact.RiskTolerance, phase string) string {
	switch phase {
	case llm.PhaseSimulation:
		switch r {
		case artifact.RiskLow:
			return "The user has LOW risk tolerance: weigh downside scenarios more heavily and mention safety nets in the outcome."
		case artifact.RiskHigh:
			return "The user has HIGH risk tolerance: they accept volatility, so weigh upside potential fairly against risk."
		case artifact.RiskMedium:
			return "The user has MEDIUM risk tolerance: balance upside and downside evenly."
		}
	default:
		switch r {
		case artifact.RiskLow:
			return "The user has LOW risk tolerance: make the threat and weakness questions probe safety nets and worst cases."
		case artifact.RiskHigh:
			return "The user has HIGH risk tolerance: make the opportunity question probe the biggest realistic upside."
		case artifact.RiskMedium:
			return "The user has MEDIUM risk tolerance: keep questions balanced between upside and downside."
		}
	}
	return ""
}
