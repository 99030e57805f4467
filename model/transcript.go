package model

import (
	"sort"
)

// TranscriptSet maps a language code to the normalized transcript text in that
// language. An empty set means no transcript could be fetched.
type TranscriptSet map[string]string

func (ts TranscriptSet) Languages() []string {
	langs := make([]string, 0, len(ts))
	for lang := range ts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	return langs
}

// Pick returns the language and text to ground an answer on. An explicitly
// requested language that is missing gives an empty text. Without a request,
// fallback is tried first and then the first available language.
func (ts TranscriptSet) Pick(requested, fallback string) (string, string) {
	if requested != "" {
		return requested, ts[requested]
	}
	if text, ok := ts[fallback]; ok {
		return fallback, text
	}
	langs := ts.Languages()
	if len(langs) == 0 {
		return "", ""
	}

	return langs[0], ts[langs[0]]
}
