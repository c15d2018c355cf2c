package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a structured prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces a single JSON object with a status discriminator.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return one JSON object only.",
			"Always set status to VALID or INVALID.",
			"Fill only the fields for the chosen status; omit the others.",
			"No markdown, comments, or trailing commas.",
		},
	}
}

// PresetNoInvent forbids adding options or facts the user did not state.
func PresetNoInvent() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Do not invent options, facts, or circumstances the user did not state.",
		},
	}
}

// PresetSafety routes harmful input to an INVALID result.
func PresetSafety() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"If the input asks for help with self-harm, violence, or illegal harm to others, return INVALID with reason HARMFUL and a calm, supportive guidance sentence.",
		},
	}
}

// PresetSupportive keeps user-facing text short and kind.
func PresetSupportive() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Address the user directly in plain, encouraging English.",
			"Keep every user-facing sentence under 30 words.",
		},
	}
}
