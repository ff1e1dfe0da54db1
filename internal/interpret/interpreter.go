package interpret

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tghensley/audiopilot/internal/observe"
	"github.com/tghensley/audiopilot/internal/resilience"
	"github.com/tghensley/audiopilot/pkg/oracle"
)

// Generation parameter defaults for interpretation calls.
const (
	defaultMaxTokens   = 800
	defaultTemperature = 0.3
)

// Interpreter is the command interpretation entry point. It tries the
// AI-assisted path first when an oracle is configured and degrades to the
// deterministic rule-based interpreter on any failure, so every call returns
// a structurally valid plan — interpretation errors become degraded data,
// never errors surfaced to the caller.
//
// Interpreter is safe for concurrent use: each interpretation is a pure
// function of its inputs plus at most one outbound oracle call, and the
// circuit breaker handles its own locking.
type Interpreter struct {
	oracle      oracle.Oracle // nil means fallback only
	breaker     *resilience.Breaker
	metrics     *observe.Metrics
	maxTokens   int
	temperature float64
}

// Option is a functional option for [New].
type Option func(*Interpreter)

// WithMaxTokens overrides the completion token cap for interpretation calls.
func WithMaxTokens(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature for interpretation calls.
func WithTemperature(t float64) Option {
	return func(i *Interpreter) {
		if t > 0 {
			i.temperature = t
		}
	}
}

// WithMetrics injects a Metrics instance. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(i *Interpreter) {
		if m != nil {
			i.metrics = m
		}
	}
}

// New creates an Interpreter. A nil oracle is valid and means every command
// is served by the rule-based fallback — absence of oracle configuration is a
// routing signal, not an error.
func New(o oracle.Oracle, opts ...Option) *Interpreter {
	i := &Interpreter{
		oracle:      o,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	if o != nil {
		i.breaker = resilience.New(resilience.Config{Name: "oracle"})
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.metrics == nil {
		i.metrics = observe.DefaultMetrics()
	}
	return i
}

// InterpretCommand converts a free-text command plus the current player state
// into an executable plan. It never returns an error: the worst case for any
// input, oracle behaviour, or internal failure is a minimal plan carrying a
// single unknown action.
func (i *Interpreter) InterpretCommand(ctx context.Context, command string, state AppStateSnapshot, history []string) (plan Plan) {
	start := time.Now()
	log := observe.Logger(ctx)

	// Interpretation must never escalate into a caller-visible failure;
	// a panic anywhere below degrades to the minimal error plan.
	defer func() {
		if r := recover(); r != nil {
			log.Error("interpretation panicked, returning error plan", "panic", r)
			plan = unknownPlan("Error processing command")
			plan = i.annotate(ctx, plan, start)
		}
	}()

	ctx, span := observe.StartSpan(ctx, "interpret.command")
	defer span.End()

	if i.oracle != nil {
		raw, err := i.tryOracle(ctx, command, state, history)
		if err == nil {
			log.Debug("oracle interpretation succeeded", "command", command)
			return i.annotate(ctx, AssemblePlan(raw), start)
		}
		i.recordFallback(ctx, err)
		log.Warn("oracle interpretation unusable, using rule-based fallback",
			"command", command,
			"error", err,
		)
	} else {
		i.metrics.FallbackTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", "unconfigured")))
	}

	return i.annotate(ctx, FallbackInterpret(command), start)
}

// tryOracle performs the single outbound completion call (guarded by the
// circuit breaker) and extracts a plan object from the raw text.
func (i *Interpreter) tryOracle(ctx context.Context, command string, state AppStateSnapshot, history []string) (map[string]any, error) {
	req := oracle.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(command, state, history),
		MaxTokens:    i.maxTokens,
		Temperature:  i.temperature,
	}

	var text string
	oracleStart := time.Now()
	err := i.breaker.Execute(func() error {
		var completeErr error
		text, completeErr = i.oracle.Complete(ctx, req)
		return completeErr
	})
	i.metrics.OracleDuration.Record(ctx, time.Since(oracleStart).Seconds())
	i.metrics.RecordOracleRequest(ctx, err == nil)
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}

	raw, err := ExtractPlan(text)
	if err != nil {
		return nil, fmt.Errorf("extract plan: %w", err)
	}
	return raw, nil
}

// annotate stamps the two top-level annotation fields onto the assembled plan
// and records the plan metrics. Everything else in the plan is already final.
func (i *Interpreter) annotate(ctx context.Context, plan Plan, start time.Time) Plan {
	plan.Execute = true
	plan.Message = "Executing plan: " + plan.Intent

	i.metrics.InterpretationDuration.Record(ctx, time.Since(start).Seconds())
	for _, a := range plan.Actions {
		i.metrics.PlanActions.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", string(a.Action))))
	}
	return plan
}

// recordFallback classifies err for the fallback counter's reason attribute.
func (i *Interpreter) recordFallback(ctx context.Context, err error) {
	reason := "oracle_error"
	if errors.Is(err, ErrNoPlan) {
		reason = "unparsable"
	}
	i.metrics.FallbackTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}
