package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"wayfinder-backend/internal/render"
)

const instructionsSystemPrompt = "You are a helpful indoor navigation assistant. " +
	"Provide simple, clear directions in 2-3 sentences as a paragraph."

// InstructionWriter turns rendered steps into a short paragraph of
// directions.
type InstructionWriter struct {
	client *Client
	model  string
}

// NewInstructionWriter creates a writer using the configured text model.
func NewInstructionWriter(client *Client) *InstructionWriter {
	return &InstructionWriter{client: client, model: client.cfg.TextModel}
}

// WriteInstructions returns directions for steps. Routes of fewer than two
// steps need none.
func (w *InstructionWriter) WriteInstructions(ctx context.Context, steps []render.Step) (string, error) {
	if len(steps) < 2 {
		return "", nil
	}

	if w.client.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.client.cfg.Timeout)
		defer cancel()
	}

	return w.client.complete(ctx, "write_instructions", openai.ChatCompletionRequest{
		Model: w.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructionsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: instructionsPrompt(steps)},
		},
		MaxTokens:   200,
		Temperature: 0.5,
	})
}

func instructionsPrompt(steps []render.Step) string {
	first, last := steps[0], steps[len(steps)-1]

	var b strings.Builder
	b.WriteString("You are a navigation assistant. Describe what the user will SEE along the way rather than generic commands.\n\n")
	fmt.Fprintf(&b, "Path: %s (Floor %d) to %s (Floor %d)\n\n", first.Name, first.Floor, last.Name, last.Floor)
	b.WriteString("Step descriptions with floor information:\n")
	for i := 0; i < len(steps)-1; i++ {
		cur, next := steps[i], steps[i+1]
		fmt.Fprintf(&b, "%s (Floor %d) -> %s (Floor %d)%s: %s\n",
			cur.Name, cur.Floor, next.Name, next.Floor, floorHint(cur.Floor, next.Floor), next.Description)
	}
	b.WriteString(`
Rules:
- Never use technical node names like "Hallway 1"; describe landmarks and visible cues instead.
- Mention going upstairs or downstairs only when the floor changes.
- Keep it to 2-3 sentences written as a paragraph, not a list.`)
	return b.String()
}

func floorHint(from, to int) string {
	switch {
	case to > from:
		return fmt.Sprintf(" [GOING UP from floor %d to floor %d]", from, to)
	case to < from:
		return fmt.Sprintf(" [GOING DOWN from floor %d to floor %d]", from, to)
	default:
		return fmt.Sprintf(" [Same floor %d]", from)
	}
}
