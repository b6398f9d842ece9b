package router

import "pv-query-router/internal/models"

// Event is produced by a Strategy while it answers one query. The set of
// event types is closed: only this package can implement it.
type Event interface {
	event()
}

// AgentThought is free reasoning text that precedes an action.
type AgentThought struct {
	Text string
}

// ToolInvocation is emitted right before a tool runs.
type ToolInvocation struct {
	Tool  models.ToolName
	Input string
}

// ToolObservation carries the sentence a tool returned.
type ToolObservation struct {
	Tool   models.ToolName
	Output string
}

// FinalAnswer ends a successful run. Labeled answers come from the reasoning
// loop and are rendered with a "Final Answer:" marker.
type FinalAnswer struct {
	Text    string
	Labeled bool
}

// AgentError is the user-facing description of a failed run.
type AgentError struct {
	Message string
}

func (AgentThought) event()    {}
func (ToolInvocation) event()  {}
func (ToolObservation) event() {}
func (FinalAnswer) event()     {}
func (AgentError) event()      {}

// EventSink receives events in production order.
type EventSink func(Event)

func discard(Event) {}
