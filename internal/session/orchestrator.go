package session

import (
	"context"
	"strings"
	"time"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/observability"
	"balanceboard/internal/workers/analysis"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSyntheticLabel names the single track created when triage finds
// a problem but no explicit options.
const DefaultSyntheticLabel = "General Path"

// GuidanceAllTracksFailed is the terminal message when no questionnaire
// could be generated.
const GuidanceAllTracksFailed = "Could not generate analysis."

// ContextProvider supplies optional personalization for a user.
type ContextProvider interface {
	FetchContext(ctx context.Context, userID string) (*artifact.PersonalizationContext, error)
}

// Recorder persists finalized decisions.
type Recorder interface {
	Save(ctx context.Context, rec artifact.DecisionRecord) error
}

// Config tunes orchestration.
type Config struct {
	// TriageAttempts bounds triage calls per StartSession. Retries happen
	// only after a local fallback, never after a semantic INVALID.
	TriageAttempts int
	// ValidateAnswers runs answer validation on every submitted answer.
	ValidateAnswers bool
	// FanOutLimit caps concurrent questionnaire calls; 0 means one per option.
	FanOutLimit    int
	SyntheticLabel string
}

func DefaultConfig() Config {
	return Config{
		TriageAttempts:  1,
		ValidateAnswers: true,
		SyntheticLabel:  DefaultSyntheticLabel,
	}
}

// Orchestrator sequences the phases of a decision session.
type Orchestrator struct {
	phases   *analysis.Pipelines
	profiles ContextProvider
	recorder Recorder
	cfg      Config
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Orchestrator)

func WithContextProvider(p ContextProvider) Option { return func(o *Orchestrator) { o.profiles = p } }
func WithRecorder(r Recorder) Option               { return func(o *Orchestrator) { o.recorder = r } }
func WithConfig(c Config) Option                   { return func(o *Orchestrator) { o.cfg = c } }
func WithTracer(t trace.Tracer) Option             { return func(o *Orchestrator) { o.tracer = t } }
func WithClock(now func() time.Time) Option        { return func(o *Orchestrator) { o.now = now } }

func NewOrchestrator(phases *analysis.Pipelines, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		phases: phases,
		cfg:    DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg.TriageAttempts < 1 {
		o.cfg.TriageAttempts = 1
	}
	if strings.TrimSpace(o.cfg.SyntheticLabel) == "" {
		o.cfg.SyntheticLabel = DefaultSyntheticLabel
	}
	if o.tracer == nil {
		o.tracer = observability.Tracer(nil)
	}
	return o
}

// TrackPlan is a newly created track with its four questions in quadrant
// order.
type TrackPlan struct {
	DecisionLabel string        `json:"decision_label"`
	Synthetic     bool          `json:"synthetic,omitempty"`
	Questions     artifact.SWOT `json:"questions"`
}

// StartResult is the outcome of triage plus track creation.
type StartResult struct {
	Triage  artifact.TriageResult `json:"triage"`
	Phase   Phase                 `json:"phase"`
	Problem string                `json:"problem,omitempty"`
	Tracks  []TrackPlan           `json:"tracks,omitempty"`
	Next    *Prompt               `json:"next,omitempty"`
	// Failure is set when every questionnaire failed and the run is FAILED.
	Failure *artifact.Rejection `json:"failure,omitempty"`
}

// Labels lists the decision labels of the created tracks.
func (r StartResult) Labels() []string {
	out := make([]string, 0, len(r.Tracks))
	for _, t := range r.Tracks {
		out = append(out, t.DecisionLabel)
	}
	return out
}

func plans(tracks []*DecisionTrack) []TrackPlan {
	out := make([]TrackPlan, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, TrackPlan{DecisionLabel: t.Label, Synthetic: t.Synthetic, Questions: t.Questions})
	}
	return out
}

// StartSession triages rawInput and, when valid, builds one track per
// option. The run is returned even when triage is INVALID so the caller
// can Retriage it. The only error is cancellation.
func (o *Orchestrator) StartSession(ctx context.Context, userID, rawInput string) (*Run, StartResult, error) {
	now := o.now()
	run := &Run{
		id:        uuid.NewString(),
		userID:    strings.TrimSpace(userID),
		phase:     PhaseCollectingInput,
		createdAt: now,
		updatedAt: now,
	}
	ctx, span := o.start(ctx, "session.StartSession", run)
	defer span.End()

	run.profile = o.fetchProfile(ctx, run.userID)
	res, err := o.triage(ctx, run, rawInput)
	if err != nil {
		endSpan(span, err)
		return nil, StartResult{}, err
	}
	return run, res, nil
}

// Retriage reruns triage on an existing run that is collecting input,
// e.g. after an INVALID triage or a REFINE_PROBLEM loopback.
func (o *Orchestrator) Retriage(ctx context.Context, run *Run, rawInput string) (StartResult, error) {
	ctx, span := o.start(ctx, "session.Retriage", run)
	defer span.End()

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseCollectingInput, PhaseFailed); err != nil {
		endSpan(span, err)
		return StartResult{}, err
	}
	res, err := o.triage(ctx, run, rawInput)
	endSpan(span, err)
	return res, err
}

func (o *Orchestrator) triage(ctx context.Context, run *Run, rawInput string) (StartResult, error) {
	log := observability.FromContext(ctx)

	var tri artifact.TriageResult
	for attempt := 1; attempt <= o.cfg.TriageAttempts; attempt++ {
		tri = o.phases.Triage.Run(ctx, artifact.TriageIn{RawInput: rawInput})
		if err := ctx.Err(); err != nil {
			return StartResult{}, err
		}
		if !tri.Fallback {
			break
		}
		log.Warn("triage fell back", zap.Int("attempt", attempt))
	}

	if !tri.OK() {
		run.mu.Lock()
		run.tracks = nil
		run.phase = PhaseCollectingInput
		run.updatedAt = o.now()
		run.mu.Unlock()
		return StartResult{Triage: tri, Phase: PhaseCollectingInput}, nil
	}

	labels := tri.Valid.IdentifiedDecisions
	synthetic := len(labels) == 0
	if synthetic {
		labels = []string{o.cfg.SyntheticLabel}
	}
	tracks, err := o.buildTracks(ctx, tri.Valid.ProblemStatement, labels, synthetic, run.profile)
	if err != nil {
		return StartResult{}, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	run.problem = tri.Valid.ProblemStatement
	run.elicitation = tri.Valid.ElicitationQuestion
	run.tracks = tracks
	run.current = 0
	run.quadrant = artifact.Strength
	run.updatedAt = o.now()

	res := StartResult{Triage: tri}
	if len(tracks) == 0 {
		run.phase = PhaseFailed
		res.Failure = &artifact.Rejection{Reason: artifact.ReasonNonsense, Guidance: GuidanceAllTracksFailed}
		log.Warn("every questionnaire failed", zap.Int("options", len(labels)))
	} else {
		run.phase = PhaseSWOTLoop
	}
	res.Phase = run.phase
	res.Problem = run.problem
	res.Tracks = plans(tracks)
	res.Next = run.promptLocked()
	return res, nil
}

// buildTracks generates questionnaires for labels concurrently and keeps
// the valid ones in input order. Nothing is returned if ctx ends first.
func (o *Orchestrator) buildTracks(
	ctx context.Context,
	problem string,
	labels []string,
	synthetic bool,
	profile *artifact.PersonalizationContext,
) ([]*DecisionTrack, error) {
	results := make([]artifact.QuestionnaireResult, len(labels))
	g, gctx := errgroup.WithContext(ctx)
	if o.cfg.FanOutLimit > 0 {
		g.SetLimit(o.cfg.FanOutLimit)
	}
	for i, label := range labels {
		g.Go(func() error {
			results[i] = o.phases.Questionnaire.Run(gctx, artifact.QuestionnaireIn{
				Problem:       problem,
				DecisionLabel: label,
				Profile:       profile,
			})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := observability.FromContext(ctx)
	tracks := make([]*DecisionTrack, 0, len(labels))
	for i, res := range results {
		if !res.OK() {
			log.Warn("dropping option without questionnaire",
				zap.String("option", labels[i]),
				zap.String("reason", string(res.Reason())),
				zap.Bool("fallback", res.Fallback))
			continue
		}
		tracks = append(tracks, &DecisionTrack{
			Label:     labels[i],
			Synthetic: synthetic,
			Questions: res.Valid.Questions,
		})
	}
	return tracks, nil
}

// fetchProfile never fails: any provider error means no personalization.
func (o *Orchestrator) fetchProfile(ctx context.Context, userID string) *artifact.PersonalizationContext {
	if o.profiles == nil || userID == "" {
		return nil
	}
	p, err := o.profiles.FetchContext(ctx, userID)
	if err != nil {
		observability.FromContext(ctx).Warn("personalization unavailable", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if p.Empty() {
		return nil
	}
	return p
}

func (o *Orchestrator) start(ctx context.Context, name string, run *Run) (context.Context, trace.Span) {
	ctx, span := o.tracer.Start(ctx, name)
	if run != nil {
		span.SetAttributes(attribute.String("session.id", run.id))
		ctx = llm.WithSession(ctx, run.id)
		ctx = observability.WithFields(ctx, zap.String("session_id", run.id))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// expect fails unless the run is in one of phases.
func (r *Run) expect(phases ...Phase) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.finalized {
		return ErrAlreadyFinalized
	}
	for _, p := range phases {
		if r.phase == p {
			return nil
		}
	}
	return &PhaseError{Have: r.phase, Want: phases}
}

// PhaseError reports an operation attempted in the wrong phase.
type PhaseError struct {
	Have Phase
	Want []Phase
}

func (e *PhaseError) Error() string {
	want := make([]string, len(e.Want))
	for i, p := range e.Want {
		want[i] = string(p)
	}
	return ErrWrongPhase.Error() + ": in " + string(e.Have) + ", need " + strings.Join(want, " or ")
}

func (e *PhaseError) Unwrap() error { return ErrWrongPhase }
