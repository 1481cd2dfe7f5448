package apitest

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/common/random"
	"github.com/songquanpeng/apitest/monitor"
	"github.com/songquanpeng/apitest/relay/adaptor"
)

// FailurePrefix starts the single line RunTask returns when no report could be built.
const FailurePrefix = "API testing failed: "

// Run is everything one task produced.
type Run struct {
	ID      string        `json:"id"`
	Source  PlanSource    `json:"source"`
	Plan    *TestPlan     `json:"plan"`
	Results []*TestResult `json:"results"`
	Summary Summary       `json:"summary"`
}

// Passed reports whether every endpoint of the run passed.
func (r *Run) Passed() bool {
	return r.Summary.Failed == 0
}

// Agent runs API test tasks end to end: plan, execute, validate, report.
// It holds no per-run state and is safe for concurrent use.
type Agent struct {
	planner      *PlanGenerator
	executorOpts []ExecutorOption
	logger       glog.Logger
}

// AgentOption customizes an Agent.
type AgentOption func(*Agent)

// WithPlanTimeout bounds the completion call used to draft plans.
func WithPlanTimeout(d time.Duration) AgentOption {
	return func(a *Agent) { a.planner.timeout = d }
}

// WithExecutorOptions is applied to the Executor built for every run.
func WithExecutorOptions(opts ...ExecutorOption) AgentOption {
	return func(a *Agent) { a.executorOpts = append(a.executorOpts, opts...) }
}

// WithLogger replaces the agent's logger.
func WithLogger(lg glog.Logger) AgentOption {
	return func(a *Agent) { a.logger = lg }
}

// NewAgent returns an agent drafting plans with completer. A nil completer means
// every prompt goes through the fallback parser.
func NewAgent(completer adaptor.Completer, opts ...AgentOption) *Agent {
	a := &Agent{
		planner: NewPlanGenerator(completer, 0),
		logger:  logger.Logger.Named("apitest"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunTask turns prompt into a report. It always returns a string: either the full
// report or one line starting with FailurePrefix.
func (a *Agent) RunTask(ctx context.Context, prompt string) (report string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("api test task panicked",
				zap.Any("panic", rec),
				zap.String("stacktrace", string(debug.Stack())))
			monitor.RecordRun("error")
			report = FailurePrefix + fmt.Sprintf("internal error: %v", rec)
		}
	}()

	run, err := a.Run(ctx, prompt)
	if err != nil {
		return FailurePrefix + err.Error()
	}
	return BuildReport(run.Results)
}

// Run generates a plan for prompt and executes it. The only error is a
// *PlanGenerationError.
func (a *Agent) Run(ctx context.Context, prompt string) (*Run, error) {
	runID := random.GetUUID()
	lg := a.logger.With(zap.String("run_id", runID))

	plan, source, err := a.planner.Generate(ctx, prompt)
	monitor.RecordPlanSource(string(source))
	if err != nil {
		lg.Warn("plan generation failed", zap.Error(err))
		monitor.RecordRun("error")
		return nil, err
	}
	lg.Info("test plan ready",
		zap.String("source", string(source)),
		zap.String("base_url", plan.BaseURL),
		zap.Int("endpoints", len(plan.Endpoints)))

	return a.execute(ctx, lg, runID, source, plan), nil
}

// RunPlan executes a plan that was built elsewhere, such as a plan file.
func (a *Agent) RunPlan(ctx context.Context, plan *TestPlan) (*Run, error) {
	if plan == nil {
		return nil, errors.New("plan is nil")
	}
	if err := normalizePlan(plan); err != nil {
		return nil, err
	}

	runID := random.GetUUID()
	monitor.RecordPlanSource(string(PlanSourceFile))
	return a.execute(ctx, a.logger.With(zap.String("run_id", runID)), runID, PlanSourceFile, plan), nil
}

func (a *Agent) execute(ctx context.Context, lg glog.Logger, runID string, source PlanSource, plan *TestPlan) *Run {
	start := time.Now()
	executor := NewExecutor(a.executorOpts...)
	defer executor.Close()

	results := executor.Run(ctx, plan)
	for i, r := range results {
		Validate(r, plan.Endpoints[i])
		monitor.RecordEndpoint(string(r.Status), r.ResponseTimeMs)
		lg.Debug("endpoint finished",
			zap.String("name", r.Name),
			zap.String("method", r.Method),
			zap.String("url", r.URL),
			zap.String("status", string(r.Status)),
			zap.Float64("response_time_ms", r.ResponseTimeMs))
	}

	run := &Run{
		ID:      runID,
		Source:  source,
		Plan:    plan,
		Results: results,
		Summary: Summarize(results),
	}

	outcome := "passed"
	if !run.Passed() {
		outcome = "failed"
	}
	monitor.RecordRun(outcome)
	lg.Info("api test run finished",
		zap.Int("total", run.Summary.Total),
		zap.Int("passed", run.Summary.Passed),
		zap.Int("failed", run.Summary.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return run
}
