package llmtool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredPrompt_RendersSections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "Extract the decision problem.",
		Background:   "Entry phase of the decision flow.",
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "status", Type: "string", Required: true, Description: "VALID or INVALID."},
			{Name: "guidance", Type: "string"},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Be concise."},
		Assumptions: []string{"Input is English."},
		Examples:    []PromptExample{{Input: `{"raw_input":"x"}`, Output: `{"status":"INVALID"}`}},
	}

	out, err := spec.Render(Section{Title: "USER_CONTEXT", Body: Bullets("Nurse", "")})
	require.NoError(t, err)

	want := []string{
		"[PURPOSE]", "[BACKGROUND]", "[OUTPUT]", "[CONSTRAINTS]", "[RULES]",
		"[ASSUMPTIONS]", "[USER_CONTEXT]", "[OUTPUT_FORMAT]", "[LANGUAGE]", "[EXAMPLES]",
	}
	last := -1
	for _, sec := range want {
		idx := strings.Index(out, sec)
		require.GreaterOrEqual(t, idx, 0, "missing %s", sec)
		assert.Greater(t, idx, last, "%s out of order", sec)
		last = idx
	}
	assert.Contains(t, out, "- status (string, required): VALID or INVALID.")
	assert.Contains(t, out, "- guidance (string, optional)")
	assert.Contains(t, out, "- Nurse")
	assert.NotContains(t, out, "[INPUT]")
}

func TestStructuredPrompt_SkipsEmptySections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "p",
		OutputFields: []PromptField{{Name: "status", Type: "string", Required: true}},
	}
	out, err := spec.Render(Section{Title: "USER_CONTEXT", Body: "  "})
	require.NoError(t, err)
	assert.NotContains(t, out, "[USER_CONTEXT]")
	assert.NotContains(t, out, "[RULES]")
}

func TestStructuredPrompt_Errors(t *testing.T) {
	_, err := StructuredPromptSpec{OutputFields: []PromptField{{Name: "a"}}}.Render()
	assert.Error(t, err)
	_, err = StructuredPromptSpec{Purpose: "p"}.Render()
	assert.Error(t, err)
	assert.Panics(t, func() { StructuredPromptSpec{}.MustRender() })
}

func TestRenderInput(t *testing.T) {
	out, err := RenderInput(map[string]any{"answer": "<b>me & you</b>"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[INPUT]\n{"))
	assert.Contains(t, out, "<b>me & you</b>")
}

func TestApplyPresets_PrependsInOrder(t *testing.T) {
	spec := ApplyPresets(StructuredPromptSpec{Constraints: []string{"own"}, Rules: []string{"own rule"}},
		PresetStrictJSON(), PresetSafety())
	require.NotEmpty(t, spec.Constraints)
	assert.Equal(t, "Return one JSON object only.", spec.Constraints[0])
	assert.Equal(t, "own", spec.Constraints[len(spec.Constraints)-1])
	assert.Equal(t, "own rule", spec.Rules[len(spec.Rules)-1])
	assert.Contains(t, spec.Rules[0], "HARMFUL")
}

type fieldFixture struct {
	Status     string   `json:"status" prompt_desc:"VALID or INVALID."`
	Reason     string   `json:"reason,omitempty" prompt:"optional"`
	Labels     []string `json:"labels"`
	Score      *float64 `json:"score" prompt_type:"number 0-100"`
	Hidden     string   `json:"hidden" prompt:"-"`
	Skipped    string   `json:"-"`
	RiskLevel  int
	unexported string
}

func TestFieldsFromStruct(t *testing.T) {
	fields, err := FieldsFromStruct(&fieldFixture{})
	require.NoError(t, err)
	require.Len(t, fields, 5)

	assert.Equal(t, PromptField{Name: "status", Type: "string", Required: true, Description: "VALID or INVALID."}, fields[0])
	assert.Equal(t, "reason", fields[1].Name)
	assert.False(t, fields[1].Required)
	assert.Equal(t, "string[]", fields[2].Type)
	assert.Equal(t, "number 0-100", fields[3].Type)
	assert.Equal(t, "risk_level", fields[4].Name)
	assert.Equal(t, "integer", fields[4].Type)

	_, err = FieldsFromStruct(42)
	assert.Error(t, err)
	_, err = FieldsFromStruct(nil)
	assert.Error(t, err)
}
