// Package planner drives the plan-critique-refine pipeline: several models
// draft a plan for a Markdown brief, every critic reviews every draft, a
// weighted consensus picks the winner, and the refiner folds the feedback
// into a final plan. Every model call and artifact lands in the session
// store.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/toolgauge/toolgauge/internal/store"
	"github.com/toolgauge/toolgauge/internal/transport"
	"golang.org/x/sync/errgroup"
)

// ChatClient is the slice of the transport client the pipeline needs.
// *transport.Client satisfies it.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req transport.ChatRequest) (*transport.ChatResponse, error)
}

var _ ChatClient = (*transport.Client)(nil)

// Pipeline phases, as recorded in execution rows.
const (
	PhasePlan     = "plan"
	PhaseCritique = "critique"
	PhaseRefine   = "refine"
)

const (
	execOK    = "ok"
	execError = "error"
)

// Request tuning per phase. Critics run cooler so verdicts stay consistent
// across drafts.
const (
	planTemperature     = 0.7
	critiqueTemperature = 0.2
	refineTemperature   = 0.4

	planMaxTokens     = 2000
	critiqueMaxTokens = 1000
	refineMaxTokens   = 2000
)

// EventType labels a pipeline progress event.
type EventType string

const (
	EventPhaseStarted EventType = "phase_started"
	EventCallFinished EventType = "call_finished"
	EventWinnerChosen EventType = "winner_chosen"
)

// Event reports pipeline progress to registered listeners.
type Event struct {
	Type      EventType
	Phase     string
	Model     string
	LatencyMs int64
	Score     float64 // consensus, on winner_chosen
	Err       error   // set on failed calls
}

// Listener receives progress events. Listeners are invoked from the
// coordinating goroutine, in order.
type Listener func(Event)

// Options configure a pipeline.
type Options struct {
	// Planners draft one candidate plan each. Required.
	Planners []string

	// Critics review every draft. Required.
	Critics []string

	// Refiner produces the final plan from the winning draft. Defaults to
	// the first planner.
	Refiner string

	// CriticWeights skew the consensus; a critic missing from the map
	// weighs 1.0. Weights must be positive.
	CriticWeights map[string]float64

	// MaxWorkers caps concurrent model calls within a phase. Zero or
	// negative means no cap.
	MaxWorkers int

	// Logger receives call diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Review is one critic's take on one draft. Score is -1 when the verdict
// line could not be parsed; such reviews are kept for audit but carry no
// weight in the consensus.
type Review struct {
	Critic  string
	Score   float64
	Content string
}

// Draft is one planner's proposal together with its reviews.
type Draft struct {
	PlanID    string
	Model     string
	Content   string
	Consensus float64
	Reviews   []Review
}

// Outcome is the result of a full pipeline run.
type Outcome struct {
	SessionID string
	Drafts    []Draft // surviving drafts, in planner order
	Winner    int     // index into Drafts
	FinalPlan string
}

// Pipeline runs briefs through the plan, critique, and refine phases.
type Pipeline struct {
	client ChatClient
	store  *store.Store
	opts   Options
	logger *slog.Logger

	progressMu sync.Mutex
	listeners  []Listener
}

// New validates the options and builds a pipeline.
func New(client ChatClient, st *store.Store, opts Options) (*Pipeline, error) {
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	if st == nil {
		return nil, errors.New("session store is required")
	}
	if len(opts.Planners) == 0 {
		return nil, errors.New("at least one planner model is required")
	}
	if len(opts.Critics) == 0 {
		return nil, errors.New("at least one critic model is required")
	}
	for model, weight := range opts.CriticWeights {
		if weight <= 0 {
			return nil, fmt.Errorf("critic weight for %q must be positive, got %v", model, weight)
		}
	}
	if opts.Refiner == "" {
		opts.Refiner = opts.Planners[0]
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		client:    client,
		store:     st,
		opts:      opts,
		logger:    logger,
		listeners: []Listener{},
	}, nil
}

// OnProgress registers a listener for pipeline events.
func (p *Pipeline) OnProgress(l Listener) {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	p.listeners = append(p.listeners, l)
}

func (p *Pipeline) notify(event Event) {
	p.progressMu.Lock()
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.progressMu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// Run executes the three phases for one brief. A failed planner call drops
// that draft and a failed critic call drops that vote; the run only aborts
// when no draft survives, the refiner fails, or the store does.
func (p *Pipeline) Run(ctx context.Context, brief Brief) (*Outcome, error) {
	session, err := p.store.CreateSession(ctx, brief.Title, brief.Body)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	p.logger.Info("session started", "session_id", session.ID, "title", brief.Title)

	outcome, err := p.run(ctx, session.ID, brief)

	status := store.SessionStatusDone
	if err != nil {
		status = store.SessionStatusFailed
	}
	// The terminal status must land even when ctx was canceled mid-run.
	if finishErr := p.store.FinishSession(context.WithoutCancel(ctx), session.ID, status); finishErr != nil {
		p.logger.Warn("finishing session", "session_id", session.ID, "error", finishErr)
	}

	if err != nil {
		return nil, err
	}
	outcome.SessionID = session.ID
	return outcome, nil
}

func (p *Pipeline) run(ctx context.Context, sessionID string, brief Brief) (*Outcome, error) {
	drafts, err := p.draftPlans(ctx, sessionID, brief)
	if err != nil {
		return nil, err
	}

	if err := p.reviewDrafts(ctx, sessionID, brief, drafts); err != nil {
		return nil, err
	}

	winner := pickWinner(drafts)
	if err := p.store.MarkPlanSelected(ctx, sessionID, drafts[winner].PlanID); err != nil {
		return nil, err
	}
	p.notify(Event{Type: EventWinnerChosen, Model: drafts[winner].Model, Score: drafts[winner].Consensus})

	finalPlan, err := p.refine(ctx, sessionID, brief, drafts[winner])
	if err != nil {
		return nil, err
	}

	return &Outcome{Drafts: drafts, Winner: winner, FinalPlan: finalPlan}, nil
}

type draftCall struct {
	model     string
	content   string
	latencyMs int64
	err       error
}

func (p *Pipeline) draftPlans(ctx context.Context, sessionID string, brief Brief) ([]Draft, error) {
	p.notify(Event{Type: EventPhaseStarted, Phase: PhasePlan})

	calls := make([]draftCall, len(p.opts.Planners))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.limit())
	for i, model := range p.opts.Planners {
		eg.Go(func() error {
			content, latency, err := p.complete(gctx, model, planSystemPrompt, planUserPrompt(brief), planTemperature, planMaxTokens)
			calls[i] = draftCall{model: model, content: content, latencyMs: latency, err: err}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Store writes stay on this goroutine; the store rides a single SQLite
	// connection.
	var drafts []Draft
	for _, call := range calls {
		p.notify(Event{Type: EventCallFinished, Phase: PhasePlan, Model: call.model, LatencyMs: call.latencyMs, Err: call.err})
		if err := p.insertExecution(ctx, sessionID, PhasePlan, call.model, call.latencyMs, call.err); err != nil {
			return nil, err
		}
		if call.err != nil {
			p.logger.Warn("planner call failed", "model", call.model, "error", call.err)
			continue
		}

		plan, err := p.store.InsertPlan(ctx, sessionID, call.model, call.content)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, Draft{PlanID: plan.ID, Model: call.model, Content: call.content})
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("no plan survived: all %d planner call(s) failed", len(p.opts.Planners))
	}
	return drafts, nil
}

type reviewCall struct {
	critic    string
	score     float64
	content   string
	latencyMs int64
	err       error
}

func (p *Pipeline) reviewDrafts(ctx context.Context, sessionID string, brief Brief, drafts []Draft) error {
	p.notify(Event{Type: EventPhaseStarted, Phase: PhaseCritique})

	calls := make([][]reviewCall, len(drafts))
	for i := range calls {
		calls[i] = make([]reviewCall, len(p.opts.Critics))
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.limit())
	for di := range drafts {
		for ci, critic := range p.opts.Critics {
			eg.Go(func() error {
				content, latency, err := p.complete(gctx, critic, criticSystemPrompt, critiqueUserPrompt(brief, drafts[di].Content), critiqueTemperature, critiqueMaxTokens)
				call := reviewCall{critic: critic, content: content, latencyMs: latency, err: err}
				if err == nil {
					call.score = parseVerdictScore(content)
				}
				calls[di][ci] = call
				return nil
			})
		}
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for di := range drafts {
		draft := &drafts[di]

		var weighted, weightSum float64
		for _, call := range calls[di] {
			p.notify(Event{Type: EventCallFinished, Phase: PhaseCritique, Model: call.critic, LatencyMs: call.latencyMs, Err: call.err})
			if err := p.insertExecution(ctx, sessionID, PhaseCritique, call.critic, call.latencyMs, call.err); err != nil {
				return err
			}
			if call.err != nil {
				p.logger.Warn("critic call failed", "model", call.critic, "plan", draft.PlanID, "error", call.err)
				continue
			}

			if _, err := p.store.InsertCritique(ctx, sessionID, draft.PlanID, call.critic, call.score, call.content); err != nil {
				return err
			}
			draft.Reviews = append(draft.Reviews, Review{Critic: call.critic, Score: call.score, Content: call.content})

			if call.score < 0 {
				p.logger.Warn("critique verdict unparseable", "model", call.critic, "plan", draft.PlanID)
				continue
			}
			weight := p.criticWeight(call.critic)
			weighted += weight * call.score
			weightSum += weight
		}

		if weightSum > 0 {
			draft.Consensus = weighted / weightSum
		}
		if err := p.store.SetPlanConsensus(ctx, draft.PlanID, draft.Consensus); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) refine(ctx context.Context, sessionID string, brief Brief, winner Draft) (string, error) {
	p.notify(Event{Type: EventPhaseStarted, Phase: PhaseRefine})

	refiner := p.opts.Refiner
	content, latency, err := p.complete(ctx, refiner, refinerSystemPrompt, refineUserPrompt(brief, winner), refineTemperature, refineMaxTokens)
	p.notify(Event{Type: EventCallFinished, Phase: PhaseRefine, Model: refiner, LatencyMs: latency, Err: err})
	if execErr := p.insertExecution(ctx, sessionID, PhaseRefine, refiner, latency, err); execErr != nil {
		return "", execErr
	}
	if err != nil {
		return "", fmt.Errorf("refining the winning plan with %s: %w", refiner, err)
	}
	return content, nil
}

func (p *Pipeline) complete(ctx context.Context, model, system, user string, temperature float64, maxTokens int) (string, int64, error) {
	start := time.Now()
	resp, err := p.client.ChatCompletion(ctx, transport.ChatRequest{
		Model: model,
		Messages: []transport.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return "", latency, err
	}

	content := strings.TrimSpace(resp.FirstContent())
	if content == "" {
		return "", latency, errors.New("model returned an empty completion")
	}
	return content, latency, nil
}

func (p *Pipeline) insertExecution(ctx context.Context, sessionID, phase, model string, latencyMs int64, callErr error) error {
	status := execOK
	errMsg := ""
	if callErr != nil {
		status = execError
		errMsg = callErr.Error()
	}
	if err := p.store.InsertExecution(ctx, sessionID, phase, model, status, latencyMs, errMsg); err != nil {
		return fmt.Errorf("recording %s execution: %w", phase, err)
	}
	return nil
}

func (p *Pipeline) criticWeight(model string) float64 {
	if w, ok := p.opts.CriticWeights[model]; ok {
		return w
	}
	return 1
}

func (p *Pipeline) limit() int {
	if p.opts.MaxWorkers > 0 {
		return p.opts.MaxWorkers
	}
	return -1
}

// pickWinner returns the index of the draft with the highest consensus.
// Ties keep the earlier planner.
func pickWinner(drafts []Draft) int {
	winner := 0
	for i := range drafts {
		if drafts[i].Consensus > drafts[winner].Consensus {
			winner = i
		}
	}
	return winner
}
