package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/restwise/insomnia-coach/internal/engine"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured or unavailable.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an error parsing the OpenAI response.
	ErrOpenAIResponse = errors.New("failed to parse OpenAI response")
)

const systemPrompt = `You are a non-medical sleep coaching assistant inside a structured insomnia program.

You receive one decision made by the program's intervention engine: which micro-intervention was chosen for the user right now, the tailoring context it was based on (time to bedtime, adherence, trend), and the engine's own reason text.

Your job is to turn that decision into a short message to the user.

Rules:
- Do NOT provide medical advice or diagnoses.
- Do NOT mention diseases, disorders, doctors, medication, or treatment.
- Do NOT mention the engine, algorithms, sampling, or probabilities.
- Speak directly to the user in second person.
- Match the intensity of the chosen intervention: a firm reminder is direct, a gentle reminder is light, encouragement is warm.
- Stay under 50 words.

You must respond as strict JSON with exactly this shape:

{
  "message": "the message to show the user"
}

No extra fields. No comments. No backticks.`

const userPromptTemplate = `Here is JSON describing the decision to deliver:

- "chosen" is the intervention to phrase as a message.
- "tailoring" holds the live context the choice was based on.
- "reason" is the engine's internal selection reason (do not quote it verbatim).

JSON:

%s

Based on this decision, respond in the required JSON format.`

// messageOutput is the strict JSON shape requested from the model.
type messageOutput struct {
	Message string `json:"message"`
}

// CoachLLM renders engine decisions into user-facing coaching messages.
type CoachLLM interface {
	// ComposeMessage returns a short message for the chosen intervention.
	ComposeMessage(ctx context.Context, decision engine.Decision) (string, error)
}

// OpenAIClient implements CoachLLM using the OpenAI API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client for composing coaching
// messages. Returns nil if apiKey is empty.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

// ComposeMessage calls OpenAI to phrase the decision for the user.
func (c *OpenAIClient) ComposeMessage(ctx context.Context, decision engine.Decision) (string, error) {
	if c == nil {
		return "", ErrOpenAIUnavailable
	}

	decisionJSON, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to serialize decision: %v", ErrOpenAIRequest, err)
	}

	userPrompt := fmt.Sprintf(userPromptTemplate, string(decisionJSON))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}

	content := resp.Choices[0].Message.Content

	var output messageOutput
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenAIResponse, err)
	}

	return output.Message, nil
}
