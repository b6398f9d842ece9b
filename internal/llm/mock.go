package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient replays canned completions in order. It is used by tests and
// local demos that exercise the reasoning loop without a model.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	errs      map[int]error
	calls     [][]Message
}

func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses, errs: make(map[int]error)}
}

// FailAt makes the n-th call (0-based) return err.
func (s *ScriptedClient) FailAt(n int, err error) *ScriptedClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[n] = err
	return s
}

func (s *ScriptedClient) Complete(ctx context.Context, messages []Message, stop []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	s.calls = append(s.calls, append([]Message(nil), messages...))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := s.errs[n]; ok {
		return "", err
	}
	if n >= len(s.responses) {
		return "", fmt.Errorf("scripted client exhausted after %d calls", len(s.responses))
	}
	return s.responses[n], nil
}

// Calls returns the messages of every call so far.
func (s *ScriptedClient) Calls() [][]Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]Message(nil), s.calls...)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, messages []Message, stop []string) (string, error)

func (f ClientFunc) Complete(ctx context.Context, messages []Message, stop []string) (string, error) {
	return f(ctx, messages, stop)
}
