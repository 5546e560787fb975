package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"wayfinder-backend/internal/infrastructure/photos"
)

const unknownReply = "UNKNOWN"

// ReferenceSource yields the reference photos a user photo is compared
// against.
type ReferenceSource interface {
	References(ctx context.Context) ([]photos.Reference, error)
}

// PhotoIdentifier asks a vision model which reference location a user
// photo shows.
type PhotoIdentifier struct {
	client *Client
	refs   ReferenceSource
	model  string
}

// NewPhotoIdentifier creates an identifier using the configured vision model.
func NewPhotoIdentifier(client *Client, refs ReferenceSource) *PhotoIdentifier {
	return &PhotoIdentifier{client: client, refs: refs, model: client.cfg.VisionModel}
}

// IdentifyLocation returns the node id of the reference the model names.
// ok is false when the model answers UNKNOWN or names no reference.
func (p *PhotoIdentifier) IdentifyLocation(ctx context.Context, image []byte, mimeType string) (string, bool, error) {
	refs, err := p.refs.References(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load reference photos: %w", err)
	}
	if len(refs) == 0 {
		return "", false, nil
	}

	if p.client.cfg.VisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.client.cfg.VisionTimeout)
		defer cancel()
	}

	reply, err := p.client.complete(ctx, "identify_photo", openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  visionMessages(image, mimeType, refs),
		MaxTokens: 100,
	})
	if err != nil {
		return "", false, err
	}

	id, ok := matchReference(reply, refs)
	p.client.logger.Debug("Photo identification reply",
		zap.String("reply", reply),
		zap.Int("references", len(refs)),
		zap.Bool("matched", ok),
	)
	return id, ok, nil
}

// matchReference finds the reference whose name appears in reply. The
// longest name wins so "Hallway B2" is not read as "Hallway B".
func matchReference(reply string, refs []photos.Reference) (string, bool) {
	text := strings.ToLower(cleanReply(reply))
	if text == "" || text == strings.ToLower(unknownReply) {
		return "", false
	}

	best, bestLen := "", 0
	for _, r := range refs {
		name := strings.ToLower(r.Name)
		if name != "" && strings.Contains(text, name) && len(name) > bestLen {
			best, bestLen = r.NodeID, len(name)
		}
	}
	return best, best != ""
}

func visionMessages(image []byte, mimeType string, refs []photos.Reference) []openai.ChatCompletionMessage {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}

	prompt := fmt.Sprintf(`You are a navigation assistant. Compare this user's photo with the following locations:
%s

Identify which location the user is currently at. Consider architectural features,
visible signage, the overall layout and the furniture and fixtures.

Respond with ONLY the exact location name that best matches, or "UNKNOWN" if none match well.`,
		strings.Join(names, ", "))

	messages := []openai.ChatCompletionMessage{{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL(mimeType, image)}},
		},
	}}
	for _, r := range refs {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: "Reference photo for: " + r.Name},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL(r.MimeType, r.Data)}},
			},
		})
	}
	return messages
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
