package artifact

import (
	"fmt"
	"math"
	"strings"
)

// Quadrant indexes the SWOT matrix in its fixed presentation order.
type Quadrant int

const (
	Strength Quadrant = iota
	Weakness
	Opportunity
	Threat
)

// Quadrants lists every quadrant in order.
var Quadrants = [4]Quadrant{Strength, Weakness, Opportunity, Threat}

func (q Quadrant) Valid() bool { return q >= Strength && q <= Threat }

func (q Quadrant) String() string {
	switch q {
	case Strength:
		return "strength"
	case Weakness:
		return "weakness"
	case Opportunity:
		return "opportunity"
	case Threat:
		return "threat"
	default:
		return fmt.Sprintf("quadrant(%d)", int(q))
	}
}

// Focus describes what a question for q is meant to probe.
func (q Quadrant) Focus() string {
	switch q {
	case Strength:
		return "internal advantage the user already has for this option"
	case Weakness:
		return "internal gap or limitation that makes this option hard"
	case Opportunity:
		return "external gain or favorable condition this option opens up"
	case Threat:
		return "external risk or obstacle that could derail this option"
	default:
		return ""
	}
}

// ParseQuadrant accepts a quadrant name, its single-letter initial or its
// index "0" to "3".
func ParseQuadrant(s string) (Quadrant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength", "s", "0":
		return Strength, true
	case "weakness", "w", "1":
		return Weakness, true
	case "opportunity", "o", "2":
		return Opportunity, true
	case "threat", "t", "3":
		return Threat, true
	}
	return 0, false
}

// SWOT holds one string per quadrant. It is used both for the four
// generated questions of a track and for the user's answers.
type SWOT struct {
	Strength    string `json:"strength"`
	Weakness    string `json:"weakness"`
	Opportunity string `json:"opportunity"`
	Threat      string `json:"threat"`
}

// At returns the entry for q, or "" when q is out of range.
func (s SWOT) At(q Quadrant) string {
	switch q {
	case Strength:
		return s.Strength
	case Weakness:
		return s.Weakness
	case Opportunity:
		return s.Opportunity
	case Threat:
		return s.Threat
	}
	return ""
}

// With returns a copy of s with the entry for q replaced.
func (s SWOT) With(q Quadrant, v string) SWOT {
	switch q {
	case Strength:
		s.Strength = v
	case Weakness:
		s.Weakness = v
	case Opportunity:
		s.Opportunity = v
	case Threat:
		s.Threat = v
	}
	return s
}

// Complete reports whether every quadrant has a non-blank entry.
func (s SWOT) Complete() bool {
	for _, q := range Quadrants {
		if strings.TrimSpace(s.At(q)) == "" {
			return false
		}
	}
	return true
}

// ClampProbability rounds p and clamps it into [0, 100].
func ClampProbability(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	p = math.Round(p)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
