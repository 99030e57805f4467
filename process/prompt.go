package process

import (
	"fmt"

	"ewintr.nl/vidqa/model"
)

const questionPrompt = `The video title is "%s". Below is the transcript of the YouTube video.

Transcript:
%s

Understand the transcript and, based on it, answer the question in depth: the answer should be long enough to be useful.
If the user asks a generalized question about the topic of the transcript, answer that general question as well.
If the question is out of the context of the transcript, just write "%s".

Question: %s`

// ComposePrompt builds the instruction for the generator. Empty inputs still
// give a complete prompt.
func ComposePrompt(title, transcript, question string) model.Prompt {
	text := fmt.Sprintf(questionPrompt, title, transcript, model.NotAvailable, question)

	return model.NewPrompt(title, transcript, question, text)
}
