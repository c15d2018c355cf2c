package artifact

import (
	"fmt"
	"strings"
)

// Classification grades a valid answer.
type Classification string

const (
	ClassificationStrong Classification = "STRONG"
	ClassificationWeak   Classification = "WEAK"
)

// AnswerIn is the input for answer validation.
type AnswerIn struct {
	Quadrant Quadrant `json:"quadrant"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
}

// AnswerOut is the flat JSON shape returned by answer validation.
type AnswerOut struct {
	Status         string `json:"status" prompt_desc:"VALID when the answer addresses the question for its quadrant, otherwise INVALID."`
	Reason         string `json:"reason,omitempty" prompt:"optional" prompt_desc:"When INVALID: one of NONSENSE, OFF_TOPIC, WRONG_QUADRANT."`
	Feedback       string `json:"feedback,omitempty" prompt:"optional" prompt_desc:"When INVALID: one sentence telling the user how to answer this question."`
	Classification string `json:"classification,omitempty" prompt:"optional" prompt_desc:"When VALID: STRONG for a specific answer, WEAK for a vague one."`
	RefinedAnswer  string `json:"refined_answer,omitempty" prompt:"optional" prompt_desc:"When VALID: the answer rewritten as one clear sentence."`
}

// AnswerAssessment is the VALID branch of answer validation.
type AnswerAssessment struct {
	Classification Classification `json:"classification,omitempty"`
	RefinedAnswer  string         `json:"refined_answer,omitempty"`
}

type AnswerValidation = Result[AnswerAssessment]

func (o AnswerOut) Result() (AnswerValidation, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return AnswerValidation{}, err
	}
	if status == StatusInvalid {
		rej, err := newRejection(o.Reason, o.Feedback, answerReasons)
		if err != nil {
			return AnswerValidation{}, err
		}
		return Reject[AnswerAssessment](rej.Reason, rej.Guidance), nil
	}
	var class Classification
	switch c := Classification(strings.ToUpper(strings.TrimSpace(o.Classification))); c {
	case "", ClassificationStrong, ClassificationWeak:
		class = c
	default:
		return AnswerValidation{}, fmt.Errorf("%w: unknown classification %q", ErrSchema, o.Classification)
	}
	return Accept(AnswerAssessment{
		Classification: class,
		RefinedAnswer:  strings.TrimSpace(o.RefinedAnswer),
	}), nil
}
