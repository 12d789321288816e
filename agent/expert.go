// Package agent provides an interactive AI assistant seeded with the
// rendered portfolio analysis.
package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Expert represents a chat with a configured system instruction.
type Expert struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	chat      *genai.Chat
}

func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// Ask is a simple wrapper on top of Chat.Send.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from expert %s", e.Name)
	}
	return resp.Candidates[0].Content, nil
}

// NewCoach creates the behavioral coach expert. The rendered analysis report
// goes straight into the system instruction so every answer is grounded in
// the user's own history; Google Search covers anything more recent.
func NewCoach(report string) *Expert {
	return &Expert{
		Name:      "Coach",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a patient investing coach. You have the user's full portfolio
			analysis below: timing scores, behavioral patterns, round trips, risk
			metrics and recommendations. Answer questions about it plainly, cite
			the concrete numbers and dates from the analysis, and never invent
			figures that are not in it. Use Google Search only for market context
			the analysis does not contain.

			` + report}}},
		},
	}
}
