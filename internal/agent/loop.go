package agent

import (
	"context"
	"fmt"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
	"intentrouter/internal/perception"
	"intentrouter/internal/tools"
)

// DefaultMaxTurns bounds a Run when no budget is configured.
const DefaultMaxTurns = 10

// Run outcomes, for metrics.
const (
	OutcomeAnswer   = "final_answer"
	OutcomeAskUser  = "ask_user"
	OutcomeMaxTurns = "max_turns"
	OutcomeError    = "error"
)

// Memory gives the loop access to earlier conversations.
type Memory interface {
	// Recall returns past exchanges relevant to query, formatted for the prompt.
	Recall(ctx context.Context, query string) (string, error)
	// Remember stores a finished exchange.
	Remember(ctx context.Context, query, answer string) error
}

// Agent runs the loop. An Agent holds no per-run state and may be reused.
type Agent struct {
	llm        perception.LLMClient
	executor   tools.Executor
	toolDefs   []tools.ToolDef
	memory     Memory
	maxTurns   int
	promptPath string
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxTurns sets the turn budget. Values below 1 keep the default.
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithPromptFile overrides the system prompt path. "" uses the built-in prompt.
func WithPromptFile(path string) Option {
	return func(a *Agent) { a.promptPath = path }
}

// WithToolDefs lists the tools shown to the model.
func WithToolDefs(defs []tools.ToolDef) Option {
	return func(a *Agent) { a.toolDefs = defs }
}

// WithMemory attaches conversation memory.
func WithMemory(m Memory) Option {
	return func(a *Agent) { a.memory = m }
}

// New creates an agent.
func New(llm perception.LLMClient, executor tools.Executor, opts ...Option) *Agent {
	a := &Agent{
		llm:        llm,
		executor:   executor,
		maxTurns:   DefaultMaxTurns,
		promptPath: SystemPromptFile,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run drives the loop for one query. It returns the model's answer, a
// "Need more information" line when the model asks the user something, or a
// max-turns message. Errors are returned only when the model cannot be reached
// or its response holds no valid action.
func (a *Agent) Run(ctx context.Context, query string) (string, error) {
	timer := logging.StartTimer(logging.CategoryAgent, "run")
	defer timer.Stop()

	state := NewConversationState(a.maxTurns)
	state.AddUser(query)

	system := LoadSystemPrompt(a.promptPath, a.toolDefs)
	if a.memory != nil {
		recalled, err := a.memory.Recall(ctx, query)
		if err != nil {
			logging.Get(logging.CategoryAgent).Warn("memory recall failed: %v", err)
		}
		system = withMemory(system, recalled)
	}

	logging.AgentDebug("starting agent loop with max_turns=%d", a.maxTurns)

	for {
		if state.Exhausted() {
			metrics.RecordAgentOutcome(OutcomeMaxTurns)
			return fmt.Sprintf("Max turns (%d) reached. Last context: %s", state.MaxTurns, state.LastContent()), nil
		}

		action, err := a.nextAction(ctx, system, state)
		if err != nil {
			metrics.RecordAgentOutcome(OutcomeError)
			return "", err
		}
		state.TurnCount++
		metrics.RecordAgentTurn(string(action.Kind))
		logging.AgentDebug("turn %d: %s", state.TurnCount, action)

		switch action.Kind {
		case ActionFinalAnswer:
			metrics.RecordAgentOutcome(OutcomeAnswer)
			logging.Agent("answered after %d turn(s)", state.TurnCount)
			a.remember(ctx, query, action.Answer)
			return action.Answer, nil

		case ActionAskUser:
			metrics.RecordAgentOutcome(OutcomeAskUser)
			return "Need more information: " + action.Question, nil

		case ActionCallTool:
			res := a.executor.Execute(ctx, action.Tool, action.Args)
			logging.AgentDebug("tool %s success=%v: %s", action.Tool, res.Success, preview(res.Output, 200))

			state.AddToolResult(action.Tool, res.Success, res.Output)
			state.AddAssistant(fmt.Sprintf("Called tool %s with args: %s", action.Tool, tools.CompactJSON(action.Args)))
		}
	}
}

// nextAction sends the full transcript; the loop never relies on provider-side
// conversation state.
func (a *Agent) nextAction(ctx context.Context, system string, state *ConversationState) (Action, error) {
	prompt := system + "\n\n" + state.Transcript()

	resp, err := a.llm.Complete(ctx, prompt, "")
	if err != nil {
		return Action{}, fmt.Errorf("failed to get agent action: %w", err)
	}
	logging.AgentDebug("LLM response: %s", resp.Text)

	return ParseAction(resp.Text)
}

func (a *Agent) remember(ctx context.Context, query, answer string) {
	if a.memory == nil {
		return
	}
	if err := a.memory.Remember(ctx, query, answer); err != nil {
		logging.Get(logging.CategoryAgent).Warn("failed to store exchange: %v", err)
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
