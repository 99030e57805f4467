package generator

import (
	"context"
	"errors"
)

const FailedResponse = "Failed to generate a response."

var (
	ErrResponseMalformed = errors.New("response malformed")
	ErrCallFailed        = errors.New("generator call failed")
)

type Options struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
	ResponseFormat  string
}

func DefaultOptions() Options {
	return Options{
		Temperature:     1,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 8192,
		ResponseFormat:  "text/plain",
	}
}

type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (Response, error)
}

type Kind int

const (
	KindEmpty Kind = iota
	KindParts
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindParts:
		return "parts"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Part is one element of a multi-part reply. Parts without text, like
// function calls or inline data, have an empty Text.
type Part struct {
	Text string
}

// Response is what a backend returned, before it is reduced to a single
// answer string.
type Response struct {
	Kind  Kind
	Parts []Part
	Text  string
}

func PartsResponse(parts ...Part) Response {
	if len(parts) == 0 {
		return Response{Kind: KindEmpty}
	}
	return Response{Kind: KindParts, Parts: parts}
}

func TextResponse(text string) Response {
	if text == "" {
		return Response{Kind: KindEmpty}
	}
	return Response{Kind: KindText, Text: text}
}

// Resolve returns the text of the first part that has any, then the direct
// text. A response with neither resolves to FailedResponse and
// ErrResponseMalformed.
func Resolve(resp Response) (string, error) {
	for _, p := range resp.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	if resp.Text != "" {
		return resp.Text, nil
	}

	return FailedResponse, ErrResponseMalformed
}
