package router

import (
	"regexp"
	"strings"

	"pv-query-router/internal/models"
)

const (
	finalAnswerMarker = "Final Answer:"

	obsMissingAction      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	obsMissingActionInput = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	obsInvalidResponse    = "Invalid or incomplete response"
)

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyPattern  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	thoughtCut         = regexp.MustCompile(`(?s)^(.*?)(?:Action\s*\d*\s*:|Final Answer:)`)
)

// Step is one parsed model completion. Exactly one of Final, an action, or
// ParseError is meaningful.
type Step struct {
	Thought    string
	Final      bool
	Answer     string
	Action     models.ToolName
	Input      string
	ParseError string
}

// ParseStep reads a completion in the Thought/Action/Action Input/Final Answer
// format. A completion with both an action and a final answer is invalid.
func ParseStep(text string) Step {
	step := Step{Thought: thought(text)}
	includesAnswer := strings.Contains(text, finalAnswerMarker)

	if m := actionPattern.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			step.ParseError = obsInvalidResponse
			return step
		}
		step.Action = models.ToolName(strings.TrimSpace(m[1]))
		step.Input = strings.Trim(strings.TrimSpace(m[2]), `"`)
		return step
	}
	if includesAnswer {
		parts := strings.Split(text, finalAnswerMarker)
		step.Final = true
		step.Answer = strings.TrimSpace(parts[len(parts)-1])
		return step
	}

	switch {
	case !actionOnlyPattern.MatchString(text):
		step.ParseError = obsMissingAction
	case !actionInputPattern.MatchString(text):
		step.ParseError = obsMissingActionInput
	default:
		step.ParseError = obsInvalidResponse
	}
	return step
}

func thought(text string) string {
	if m := thoughtCut.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
