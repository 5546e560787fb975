package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const notFoundReply = "NOT_FOUND"

const resolverSystemPrompt = "You are a helpful navigation assistant that matches user input to location names. " +
	"Always respond with the exact location name or NOT_FOUND."

// TextResolver matches loose queries ("st larry pub", "where the food is")
// to one of the building's location names.
type TextResolver struct {
	client *Client
	model  string
}

// NewTextResolver creates a resolver using the configured text model.
func NewTextResolver(client *Client) *TextResolver {
	return &TextResolver{client: client, model: client.cfg.TextModel}
}

// ResolveText asks the model to pick one of candidates. A NOT_FOUND or empty
// reply yields ok=false.
func (r *TextResolver) ResolveText(ctx context.Context, query string, candidates []string) (string, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}

	reply, err := r.client.complete(ctx, "resolve_text", openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: resolverSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: resolverPrompt(query, candidates)},
		},
		MaxTokens:   50,
		Temperature: 0.2,
	})
	if err != nil {
		return "", false, err
	}

	name := cleanReply(reply)
	if name == "" || strings.EqualFold(name, notFoundReply) {
		return "", false, nil
	}
	return name, true, nil
}

func resolverPrompt(query string, candidates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a navigation assistant. The user said: %q\n\n", query)
	b.WriteString("Available locations in the building:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString(`
Match the user's input to one location from the list above. Consider typos and
variations, abbreviations, partial matches, room numbers and common synonyms.

Respond with ONLY the exact location name from the list, or "NOT_FOUND" if none match.`)
	return b.String()
}
