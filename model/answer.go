package model

import (
	"time"

	"github.com/google/uuid"
)

const NotAvailable = "not available"

type Prompt struct {
	Title      string
	Transcript string
	Question   string
	text       string
}

func NewPrompt(title, transcript, question, text string) Prompt {
	return Prompt{
		Title:      title,
		Transcript: transcript,
		Question:   question,
		text:       text,
	}
}

func (p Prompt) String() string {
	return p.text
}

type Answer struct {
	Raw       string
	Sanitized string
}

// Exchange is one question and its answer in a conversation.
type Exchange struct {
	ID       uuid.UUID
	VideoID  YoutubeVideoID
	Title    string
	Question string
	Answer   string
	AskedAt  time.Time
}
