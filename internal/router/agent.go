// Package router decides which tools answer a question, keeps per-session
// memory and exposes single-shot and streaming entry points.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/common/observability"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/models"
	"pv-query-router/internal/session"
	"pv-query-router/internal/tools"
)

const (
	ModeSync   = "sync"
	ModeStream = "stream"

	msgCannotProcess = "抱歉，我无法处理您的问题。"
	errorAnswerLead  = "处理查询时出现错误："

	streamBuffer = 16
)

// Answers containing any of these are reported as unsuccessful.
var failureMarkers = []string{"出现错误", "无法处理", "无法理解"}

type FragmentKind string

const (
	FragmentSession FragmentKind = "session"
	FragmentContent FragmentKind = "content"
	FragmentDone    FragmentKind = "done"
)

// Fragment is one element of a streamed answer. A stream starts with a
// session fragment when the session could be resolved, carries content
// fragments, and always ends with exactly one done fragment.
type Fragment struct {
	Kind      FragmentKind
	SessionID string
	Text      string
}

// Response is the result of RouteQuery.
type Response struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"result"`
	Success   bool   `json:"success"`
}

// Options configures an Agent. A nil LLM selects keyword routing.
type Options struct {
	LLM              llm.Client
	MaxIterations    int
	MaxExecutionTime time.Duration
	ContextTurns     int
	Observability    *observability.Observability
}

type Agent struct {
	registry     *tools.Registry
	strategy     Strategy
	sessions     session.Store
	contextTurns int
	obs          *observability.Observability
	errors       *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewAgent picks the strategy once: the reasoning loop when a model client is
// given, keyword routing otherwise.
func NewAgent(registry *tools.Registry, store session.Store, opts Options, log logger.Logger) *Agent {
	log = logger.ForComponent(log, "router")

	var strategy Strategy
	if opts.LLM != nil {
		strategy = NewReActStrategy(opts.LLM, registry, opts.MaxIterations, opts.MaxExecutionTime, log)
	} else {
		strategy = NewKeywordStrategy(registry, log)
	}

	obs := opts.Observability
	if obs == nil {
		obs = observability.NewNoop()
	}

	log.Info("router ready", map[string]interface{}{
		"strategy": strategy.Name(),
		"tools":    len(registry.List()),
	})

	return &Agent{
		registry:     registry,
		strategy:     strategy,
		sessions:     store,
		contextTurns: opts.ContextTurns,
		obs:          obs,
		errors:       apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

// NewFromConfig builds the model client when an API key is configured and
// wires the agent from cfg.
func NewFromConfig(cfg *config.Config, registry *tools.Registry, store session.Store, obs *observability.Observability, log logger.Logger) (*Agent, error) {
	opts := Options{
		MaxIterations:    cfg.LLM.MaxIterations,
		MaxExecutionTime: config.GetDuration(cfg.LLM.MaxExecutionTime),
		ContextTurns:     cfg.Session.ContextTurns,
		Observability:    obs,
	}
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(cfg.LLM, log)
		if err != nil {
			return nil, err
		}
		opts.LLM = client
	} else {
		log.Warn("no LLM API key configured, using keyword routing", nil)
	}
	return NewAgent(registry, store, opts, log), nil
}

// Strategy returns the name of the active strategy.
func (a *Agent) Strategy() string {
	return a.strategy.Name()
}

// Registry returns the tools the agent dispatches to.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// RouteQuery answers query within sessionID, creating the session when the id
// is empty or unknown. The only error is a session store failure.
func (a *Agent) RouteQuery(ctx context.Context, query, sessionID string) (resp *Response, err error) {
	sess, err := a.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			answer := a.errors.SystemError("router", fmt.Errorf("%v", r))
			resp, err = &Response{SessionID: sess.ID, Answer: answer}, nil
		}
	}()

	answer := a.run(ctx, ModeSync, sess.ID, query, discard)
	return &Response{SessionID: sess.ID, Answer: answer, Success: Successful(answer)}, nil
}

// RouteQueryStream answers query as a stream of fragments. The returned
// channel is closed after the done fragment. Once started the query runs to
// completion or to its reasoning bound even if ctx is cancelled; cancelling
// ctx only stops delivery.
func (a *Agent) RouteQueryStream(ctx context.Context, query, sessionID string) <-chan Fragment {
	out := make(chan Fragment, streamBuffer)
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(out)
		send := func(f Fragment) {
			select {
			case out <- f:
			case <-ctx.Done():
			}
		}
		defer send(Fragment{Kind: FragmentDone})
		defer func() {
			if r := recover(); r != nil {
				send(Fragment{Kind: FragmentContent, Text: a.errors.SystemError("router", fmt.Errorf("%v", r))})
			}
		}()

		sess, err := a.sessions.GetOrCreate(runCtx, sessionID)
		if err != nil {
			send(Fragment{Kind: FragmentContent, Text: a.errors.SystemError("router", err)})
			return
		}
		send(Fragment{Kind: FragmentSession, SessionID: sess.ID})

		translator := NewTranslator()
		a.run(runCtx, ModeStream, sess.ID, query, func(ev Event) {
			for _, text := range translator.Render(ev) {
				send(Fragment{Kind: FragmentContent, Text: text})
			}
		})
	}()

	return out
}

// ClearSession drops the memory of one session and reports whether it existed.
func (a *Agent) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	found, err := a.sessions.Clear(ctx, sessionID)
	if err != nil {
		return false, err
	}
	metrics.SessionsCleared.WithLabelValues(fmt.Sprintf("%t", found)).Inc()
	a.logger.Info("session cleared", map[string]interface{}{
		"sessionId": sessionID,
		"found":     found,
	})
	return found, nil
}

// run executes the strategy and records the turn. It always returns a
// user-facing answer.
func (a *Agent) run(ctx context.Context, mode, sessionID, query string, emit EventSink) string {
	start := time.Now()
	ctx, span := a.obs.StartSpan(ctx, "router.query", map[string]string{
		"strategy": a.strategy.Name(),
		"mode":     mode,
	})

	history, err := a.sessions.History(ctx, sessionID, a.contextTurns)
	if err != nil {
		a.errors.Record("router", err)
		history = nil
	}

	answer, err := a.strategy.Execute(ctx, query, history, emit)
	switch {
	case err != nil:
		stdErr := a.errors.Record("router", err)
		answer = errorAnswerLead + describe(stdErr)
		emit(AgentError{Message: answer})
	case answer == "":
		answer = msgCannotProcess
		emit(FinalAnswer{Text: answer})
	}
	span.End(err)

	if err := a.sessions.Append(ctx, sessionID, models.Turn{
		Query:     query,
		Response:  answer,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		a.errors.Record("router", err)
	}

	outcome := "success"
	if !Successful(answer) {
		outcome = "failure"
	}
	metrics.RouterQueries.WithLabelValues(a.strategy.Name(), mode, outcome).Inc()
	a.obs.RecordQueryProcessed(ctx, a.strategy.Name(), outcome)
	a.obs.RecordQueryDuration(ctx, time.Since(start), a.strategy.Name())

	a.logger.Info("query routed", map[string]interface{}{
		"sessionId": sessionID,
		"mode":      mode,
		"outcome":   outcome,
		"duration":  time.Since(start).String(),
	})
	return answer
}

// Successful reports whether an answer reads as a real answer rather than an
// apology or error.
func Successful(answer string) bool {
	for _, m := range failureMarkers {
		if strings.Contains(answer, m) {
			return false
		}
	}
	return true
}

func describe(stdErr *apperrors.StandardError) string {
	if stdErr.Details != "" {
		return stdErr.Details
	}
	return stdErr.Message
}
