package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(client *genai.Client, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		client: client,
		model:  model,
	}
}

func (g *Gemini) Name() string {
	return "gemini " + g.model
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (Response, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(opts.Temperature),
		TopP:             genai.Ptr(opts.TopP),
		TopK:             genai.Ptr(float32(opts.TopK)),
		MaxOutputTokens:  int32(opts.MaxOutputTokens),
		ResponseMIMEType: opts.ResponseFormat,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}

	return fromGenAI(resp), nil
}

func fromGenAI(resp *genai.GenerateContentResponse) Response {
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{Kind: KindEmpty}
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return Response{Kind: KindEmpty}
	}

	parts := make([]Part, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			parts = append(parts, Part{})
			continue
		}
		parts = append(parts, Part{Text: p.Text})
	}

	return PartsResponse(parts...)
}
