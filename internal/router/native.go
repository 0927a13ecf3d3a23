// Package router turns an IntentPayload into a routing Decision.
//
// The Native strategy owns decision construction. Rule-engine backends encode the
// same rules independently and are only probed: did the rule set accept the
// payload, and if not, which required field was missing? Engine compares the probe
// with Native, records the verdict and always returns the Native decision.
package router

import (
	"fmt"

	"intentrouter/internal/types"
)

// Tool names produced by the router.
const (
	ToolSearchNotes  = "search_notes"
	ToolSearchFiles  = "search_files"
	ToolWeather      = "get_weather"
	ToolAppleWeather = "get_apple_weather"
	ToolDraftEmail   = "draft_email"
	ToolCreateTodo   = "create_todo"
)

// Questions and reasons returned by the router.
const (
	QuestionLocation  = "What location should I use?"
	QuestionRecipient = "Who should I email?"
	QuestionTopic     = "What should I remind you about?"
	QuestionDue       = "When is this due? (e.g., tomorrow, next Friday, 2026-02-01)"
	QuestionIntent    = "What are you trying to do (summarize, find, weather, draft, remind)?"
	ReasonNoRoute     = "No matching route or follow-up found."
)

// Native pattern-matches the payload directly. It is the canonical strategy.
type Native struct {
	// PremiumWeather reports whether the premium weather provider is configured.
	PremiumWeather func() bool
}

// NewNative creates the native strategy. premiumWeather reports whether the premium
// weather provider is configured; nil means never.
func NewNative(premiumWeather func() bool) *Native {
	return &Native{PremiumWeather: premiumWeather}
}

// Decide maps a payload to a decision. It is deterministic and has no side effects.
func (n *Native) Decide(p types.IntentPayload) types.Decision {
	e := p.Entities.Normalize()

	switch p.Intent {
	case types.IntentSummarize, types.IntentFind:
		query := types.Deref(e.Topic)
		if query == "" {
			query = types.Deref(e.Query)
		}
		if query == "" {
			return types.AskFor(fmt.Sprintf("What should I %s?", p.Intent))
		}
		tool := ToolSearchFiles
		if p.Constraints.SourcePreference == types.SourceNotes {
			tool = ToolSearchNotes
		}
		return types.RouteTo(tool, map[string]string{"query": query, "scope": "user"})

	case types.IntentWeather:
		if e.Location == nil {
			return types.AskFor(QuestionLocation)
		}
		tool := ToolWeather
		if n.premium() {
			tool = ToolAppleWeather
		}
		args := map[string]string{"location": *e.Location}
		if e.Date != nil {
			args["date"] = *e.Date
		}
		if e.DateEnd != nil {
			args["date_end"] = *e.DateEnd
		}
		if e.WeatherQuery != nil {
			args["weather_query"] = string(*e.WeatherQuery)
		}
		return types.RouteTo(tool, args)

	case types.IntentDraft:
		if e.Recipient == nil {
			return types.AskFor(QuestionRecipient)
		}
		subject := "(no subject)"
		if e.Topic != nil {
			subject = *e.Topic
		}
		return types.RouteTo(ToolDraftEmail, map[string]string{
			"to":      *e.Recipient,
			"subject": subject,
			"body":    "",
		})

	case types.IntentRemind:
		if e.Topic == nil {
			return types.AskFor(QuestionTopic)
		}
		if e.Date == nil {
			return types.AskFor(QuestionDue)
		}
		priority := "normal"
		if e.Priority != nil {
			priority = *e.Priority
		}
		return types.RouteTo(ToolCreateTodo, map[string]string{
			"title":    *e.Topic,
			"due":      *e.Date,
			"priority": priority,
		})
	}

	return types.RejectWith(ReasonNoRoute)
}

func (n *Native) premium() bool {
	return n.PremiumWeather != nil && n.PremiumWeather()
}

// Expect returns the probe outcome a faithful rule engine must report for the
// decision Native produced.
func Expect(p types.IntentPayload, d types.Decision) ProbeResult {
	switch d.Kind {
	case types.DecisionRoute:
		return Accepted()
	case types.DecisionNeedInfo:
		return Missing(missingField(p))
	default:
		return Rejected()
	}
}

// missingField names the first required slot Native found absent.
func missingField(p types.IntentPayload) string {
	e := p.Entities.Normalize()
	switch p.Intent {
	case types.IntentSummarize, types.IntentFind:
		return "topic"
	case types.IntentWeather:
		return "location"
	case types.IntentDraft:
		return "recipient"
	case types.IntentRemind:
		if e.Topic == nil {
			return "topic"
		}
		return "date"
	}
	return ""
}
