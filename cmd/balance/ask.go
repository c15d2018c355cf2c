package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"balanceboard/internal/gateway/app"
	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/session"

	"github.com/spf13/cobra"
)

var askUser string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Work through a decision in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		core, err := app.NewCore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer core.Close()
		return runAsk(ctx, core.Service, askUser, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "User id for personalization and history")
}

// asker drives one session from line-oriented input. It ends on EOF or
// once a decision is recorded.
type asker struct {
	svc       *decision.Service
	userID    string
	in        *bufio.Scanner
	out       io.Writer
	sessionID string
}

func runAsk(ctx context.Context, svc *decision.Service, userID string, in io.Reader, out io.Writer) error {
	a := &asker{svc: svc, userID: userID, in: bufio.NewScanner(in), out: out}
	for {
		done, err := a.step(ctx)
		if errors.Is(err, decision.ErrInvalidArgument) || errors.Is(err, session.ErrNoOptions) {
			fmt.Fprintln(a.out, err)
			continue
		}
		if err != nil || done {
			return err
		}
	}
}

func (a *asker) ask(prompt string) (string, bool) {
	fmt.Fprintf(a.out, "%s\n> ", prompt)
	if !a.in.Scan() {
		fmt.Fprintln(a.out)
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *asker) phase(ctx context.Context) (*session.View, error) {
	if a.sessionID == "" {
		return &session.View{Phase: session.PhaseCollectingInput}, nil
	}
	return a.svc.GetSession(ctx, &decision.SessionRequest{SessionID: a.sessionID})
}

func (a *asker) step(ctx context.Context) (bool, error) {
	view, err := a.phase(ctx)
	if err != nil {
		return false, err
	}
	switch view.Phase {
	case session.PhaseCollectingInput, session.PhaseFailed:
		return a.collect(ctx)
	case session.PhaseSWOTLoop:
		return a.answer(ctx)
	case session.PhaseOutcome:
		return a.outcome(ctx)
	case session.PhaseAwaitingOptions:
		return a.options(ctx)
	case session.PhaseDone:
		return a.choose(ctx, view)
	default:
		return false, fmt.Errorf("unexpected phase %s", view.Phase)
	}
}

func (a *asker) collect(ctx context.Context) (bool, error) {
	line, ok := a.ask("What decision are you struggling with?")
	if !ok {
		return true, nil
	}
	res, err := a.svc.StartSession(ctx, &decision.StartSessionRequest{UserID: a.userID, Input: line, SessionID: a.sessionID})
	if err != nil {
		return false, err
	}
	a.sessionID = res.SessionID
	switch {
	case !res.Triage.OK():
		fmt.Fprintln(a.out, res.Triage.Message())
	case res.Failure != nil:
		fmt.Fprintln(a.out, res.Failure.Guidance)
	default:
		fmt.Fprintf(a.out, "Problem: %s\nOptions: %s\n", res.Problem, strings.Join(res.Labels(), ", "))
		if q := res.Triage.Valid.ElicitationQuestion; q != "" && len(res.Triage.Valid.IdentifiedDecisions) == 0 {
			fmt.Fprintln(a.out, q)
		}
	}
	return false, nil
}

func (a *asker) answer(ctx context.Context) (bool, error) {
	view, err := a.svc.GetSession(ctx, &decision.SessionRequest{SessionID: a.sessionID})
	if err != nil {
		return false, err
	}
	track := view.Tracks[view.CurrentTrack]
	prompt := fmt.Sprintf("[%s · %s] %s", track.DecisionLabel, view.CurrentQuadrant, track.Questions.At(view.CurrentQuadrant))
	line, ok := a.ask(prompt)
	if !ok {
		return true, nil
	}
	res, err := a.svc.SubmitAnswer(ctx, &decision.SubmitAnswerRequest{SessionID: a.sessionID, Answer: line})
	if err != nil {
		return false, err
	}
	if res.Feedback != "" {
		fmt.Fprintln(a.out, res.Feedback)
	}
	return false, nil
}

func (a *asker) outcome(ctx context.Context) (bool, error) {
	res, err := a.svc.GetOutcome(ctx, &decision.SessionRequest{SessionID: a.sessionID})
	if err != nil {
		return false, err
	}
	if !res.Simulation.OK() {
		fmt.Fprintln(a.out, res.Simulation.Message())
		if res.Phase == session.PhaseOutcome {
			if _, ok := a.ask("Press enter to try again."); !ok {
				return true, nil
			}
		}
		return false, nil
	}
	sim := res.Simulation.Valid
	fmt.Fprintf(a.out, "%s: %s (%d%%)\n", res.DecisionLabel, sim.PredictedOutcome, sim.Probability)
	for _, r := range sim.KeyRisks {
		fmt.Fprintf(a.out, "  risk: %s\n", r)
	}
	return false, nil
}

func (a *asker) options(ctx context.Context) (bool, error) {
	line, ok := a.ask("Which other options could you take? Separate them with commas.")
	if !ok {
		return true, nil
	}
	res, err := a.svc.AddOptions(ctx, &decision.AddOptionsRequest{SessionID: a.sessionID, Options: strings.Split(line, ",")})
	if err != nil {
		return false, err
	}
	if res.Failure != nil {
		fmt.Fprintln(a.out, res.Failure.Guidance)
	}
	return false, nil
}

func (a *asker) choose(ctx context.Context, view *session.View) (bool, error) {
	labels := make([]string, 0, len(view.Tracks))
	for _, t := range view.Tracks {
		labels = append(labels, t.DecisionLabel)
		if t.Outcome != nil {
			fmt.Fprintf(a.out, "  %s: %d%%\n", t.DecisionLabel, t.Outcome.Probability)
		}
	}
	line, ok := a.ask("Which option do you choose? If you can't decide, tell me why.")
	if !ok {
		return true, nil
	}
	for _, l := range labels {
		if strings.EqualFold(line, l) {
			res, err := a.svc.FinalizeDecision(ctx, &decision.FinalizeDecisionRequest{SessionID: a.sessionID, ChosenDecision: l})
			if err != nil {
				return false, err
			}
			fmt.Fprintf(a.out, "Decision recorded: %s. Score %d.\n", res.Record.ChosenDecision, res.Record.Score)
			return true, nil
		}
	}
	res, err := a.svc.AnalyzeHesitation(ctx, &decision.AnalyzeHesitationRequest{SessionID: a.sessionID, Excuse: line})
	if err != nil {
		return false, err
	}
	if res.Analysis.OK() {
		fmt.Fprintln(a.out, res.Analysis.Valid.GuidanceMessage)
	} else {
		fmt.Fprintln(a.out, res.Analysis.Message())
	}
	for i, o := range res.Ranked {
		fmt.Fprintf(a.out, "  %d. %s (%d%%)\n", i+1, o.DecisionLabel, o.Simulation.Probability)
	}
	return false, nil
}
