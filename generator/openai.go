package generator

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o"

// OpenAI talks to the chat completions endpoint. Pointed at another base url
// it serves any compatible server, like a local llama.cpp instance. TopK is not
// part of that API and is ignored.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: client,
		model:  model,
	}
}

func (o *OpenAI) Name() string {
	return "openai " + o.model
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, opts Options) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxOutputTokens,
	}
	if opts.ResponseFormat == "application/json" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}

	return fromChatCompletion(resp), nil
}

func fromChatCompletion(resp openai.ChatCompletionResponse) Response {
	if len(resp.Choices) == 0 {
		return Response{Kind: KindEmpty}
	}
	if len(resp.Choices) == 1 {
		return TextResponse(resp.Choices[0].Message.Content)
	}

	parts := make([]Part, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		parts = append(parts, Part{Text: c.Message.Content})
	}

	return PartsResponse(parts...)
}
