package process

type State int

const (
	Idle State = iota
	IdentifierExtracted
	IdentifierMissing
	MetadataFetched
	MetadataFailed
	TranscriptFetched
	TranscriptEmpty
	PromptComposed
	AnswerReceived
	AnswerFailed
	Sanitized
	Displayed
)

var stateNames = map[State]string{
	Idle:                "idle",
	IdentifierExtracted: "identifier_extracted",
	IdentifierMissing:   "identifier_missing",
	MetadataFetched:     "metadata_fetched",
	MetadataFailed:      "metadata_failed",
	TranscriptFetched:   "transcript_fetched",
	TranscriptEmpty:     "transcript_empty",
	PromptComposed:      "prompt_composed",
	AnswerReceived:      "answer_received",
	AnswerFailed:        "answer_failed",
	Sanitized:           "sanitized",
	Displayed:           "displayed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
