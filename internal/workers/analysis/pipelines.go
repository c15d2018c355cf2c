package analysis

// Pipelines bundles every phase around one generator.
type Pipelines struct {
	Triage        *TriagePipeline
	Questionnaire *QuestionnairePipeline
	Answer        *AnswerPipeline
	Simulation    *SimulationPipeline
	Hesitation    *HesitationPipeline
}

// Options tunes phase behaviour.
type Options struct {
	GroundDecisions bool
}

func New(gen Generator, opts Options) *Pipelines {
	return &Pipelines{
		Triage:        &TriagePipeline{LLM: gen, Grounding: opts.GroundDecisions},
		Questionnaire: &QuestionnairePipeline{LLM: gen},
		Answer:        &AnswerPipeline{LLM: gen},
		Simulation:    &SimulationPipeline{LLM: gen},
		Hesitation:    &HesitationPipeline{LLM: gen},
	}
}
