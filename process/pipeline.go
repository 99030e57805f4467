package process

import (
	"context"
	"fmt"
	"time"

	"ewintr.nl/vidqa/fetcher"
	"ewintr.nl/vidqa/generator"
	"ewintr.nl/vidqa/model"
	"golang.org/x/exp/slog"
)

const (
	noticeNoIdentifier = "No YouTube video could be found in this URL, so the question was not sent."
	noticeNoTranscript = "No transcript is available for this video, the answer is not grounded in its content."
	noticeNoLanguage   = "No transcript in the requested language %q, the answer is not grounded in the video's content."
)

type TranscriptSource interface {
	FetchTranscripts(ctx context.Context, id model.YoutubeVideoID) model.TranscriptSet
}

type Result struct {
	View     model.VideoView
	Language string
	Prompt   model.Prompt
	Answer   model.Answer
	Notice   string
	States   []State
}

func (r *Result) advance(states ...State) {
	r.States = append(r.States, states...)
}

type Pipeline struct {
	titles      fetcher.TitleFetcher
	transcripts TranscriptSource
	gen         generator.Generator
	opts        generator.Options
	language    string
	timeout     time.Duration
	logger      *slog.Logger
}

func NewPipeline(titles fetcher.TitleFetcher, transcripts TranscriptSource, gen generator.Generator, opts generator.Options, language string, timeout time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		titles:      titles,
		transcripts: transcripts,
		gen:         gen,
		opts:        opts,
		language:    language,
		timeout:     timeout,
		logger:      logger,
	}
}

// Load fetches everything that is shown after a url was submitted.
func (p *Pipeline) Load(ctx context.Context, rawURL string) model.VideoView {
	res := &Result{}
	p.load(ctx, model.NewVideoReference(rawURL), res)

	return res.View
}

func (p *Pipeline) load(ctx context.Context, ref model.VideoReference, res *Result) {
	res.advance(Idle)
	res.View = model.VideoView{
		ID:          ref.ID,
		Title:       model.UnknownTitle,
		Thumbnail:   model.ThumbnailURL(ref.ID),
		Transcripts: model.TranscriptSet{},
	}
	if !ref.Found {
		p.logger.Info("skipping fetch", slog.String("url", ref.URL), slog.String("error", model.ErrIdentifierNotFound.Error()))
		res.advance(IdentifierMissing, MetadataFailed, TranscriptEmpty)
		return
	}
	res.advance(IdentifierExtracted)

	res.View.Title = p.titles.FetchTitle(ctx, ref.ID)
	if res.View.Title == model.UnknownTitle {
		res.advance(MetadataFailed)
	} else {
		res.advance(MetadataFetched)
	}

	if ts := p.transcripts.FetchTranscripts(ctx, ref.ID); ts != nil {
		res.View.Transcripts = ts
	}
	if len(res.View.Transcripts) == 0 {
		res.advance(TranscriptEmpty)
	} else {
		res.advance(TranscriptFetched)
	}
}

// Ask runs the whole question pipeline. It always returns a displayable
// result, failures end up in the answer and the notice.
func (p *Pipeline) Ask(ctx context.Context, rawURL, question, language string) *Result {
	ref := model.NewVideoReference(rawURL)
	res := &Result{}
	p.load(ctx, ref, res)

	lang, transcript := res.View.Transcripts.Pick(language, p.language)
	res.Language = lang
	if transcript == "" && res.States[len(res.States)-1] == TranscriptFetched {
		res.States[len(res.States)-1] = TranscriptEmpty
	}
	res.Prompt = ComposePrompt(res.View.Title, transcript, question)
	res.advance(PromptComposed)

	switch {
	case !ref.Found:
		res.Answer.Raw = model.NotAvailable
		res.Notice = noticeNoIdentifier
		res.advance(AnswerFailed)
	default:
		switch {
		case transcript == "" && len(res.View.Transcripts) > 0:
			res.Notice = fmt.Sprintf(noticeNoLanguage, lang)
		case transcript == "":
			res.Notice = noticeNoTranscript
		}
		raw, err := p.generate(ctx, res.Prompt)
		res.Answer.Raw = raw
		if err != nil {
			p.logger.Error("failed to generate answer", slog.String("video", string(ref.ID)), slog.String("generator", p.gen.Name()), slog.String("error", err.Error()))
			res.advance(AnswerFailed)
		} else {
			res.advance(AnswerReceived)
		}
	}

	res.Answer.Sanitized = Sanitize(res.Answer.Raw)
	res.advance(Sanitized, Displayed)
	p.logger.Info("answered question", slog.String("video", string(ref.ID)), slog.String("language", lang), slog.String("state", res.States[len(res.States)-3].String()))

	return res
}

func (p *Pipeline) generate(ctx context.Context, prompt model.Prompt) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.gen.Generate(ctx, prompt.String(), p.opts)
	if err != nil {
		return fmt.Sprintf("Could not generate an answer: %v", err), err
	}

	return generator.Resolve(resp)
}
