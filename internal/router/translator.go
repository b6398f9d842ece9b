package router

import (
	"fmt"
	"strings"
	"unicode"
)

// Translator renders events into stream fragments. It remembers every
// rendering it has produced and drops byte-identical repeats, so one
// Translator must be used for exactly one streamed call.
type Translator struct {
	seen map[string]struct{}
}

func NewTranslator() *Translator {
	return &Translator{seen: make(map[string]struct{})}
}

// Render returns the fragments for ev, or nil when ev renders to nothing or
// repeats an earlier rendering.
func (t *Translator) Render(ev Event) []string {
	var rendered string
	split := false

	switch e := ev.(type) {
	case AgentThought:
		rendered = strings.TrimSpace(e.Text)
	case ToolInvocation:
		rendered = fmt.Sprintf("\nAction: %s\nAction Input: %s", e.Tool, e.Input)
	case ToolObservation:
		rendered = "\nObservation: " + e.Output
	case FinalAnswer:
		if e.Labeled {
			rendered = "\nFinal Answer: " + e.Text
		} else {
			rendered = e.Text
			split = true
		}
	case AgentError:
		rendered = e.Message
	default:
		panic(fmt.Sprintf("router: unhandled event %T", ev))
	}

	if rendered == "" {
		return nil
	}
	if _, dup := t.seen[rendered]; dup {
		return nil
	}
	t.seen[rendered] = struct{}{}

	if inv, ok := ev.(ToolInvocation); ok {
		return []string{"\nAction: " + string(inv.Tool), "\nAction Input: " + inv.Input}
	}
	if split {
		return SplitWords(rendered)
	}
	return []string{rendered}
}

// SplitWords cuts s before every run of whitespace that follows a word, so
// each fragment is a word with the whitespace that preceded it. Joining the
// fragments gives back s.
func SplitWords(s string) []string {
	var (
		out    []string
		start  int
		inWord bool
	)
	for i, r := range s {
		space := unicode.IsSpace(r)
		if space && inWord {
			out = append(out, s[start:i])
			start = i
		}
		inWord = !space
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
