package model

import (
	"errors"
	"fmt"
	"regexp"
)

const UnknownTitle = "Unknown"

var ErrIdentifierNotFound = errors.New("no video identifier found")

type YoutubeVideoID string

// videoIDRe matches the first 11 character token after any accepted url shape:
// watch?v=, any v= query parameter, /v/, /e/, /embed/, /shorts/, /live/,
// /<segment>/<segment>/ and youtu.be/.
var videoIDRe = regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:(?:v|e(?:mbed)?|shorts|live)/|[^/\n\s]+/\S+/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the video identifier in raw, or false when there is
// none. It does not check whether the video exists.
func ExtractVideoID(raw string) (YoutubeVideoID, bool) {
	m := videoIDRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return YoutubeVideoID(m[1]), true
}

func ThumbnailURL(id YoutubeVideoID) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
}

type VideoReference struct {
	URL   string
	ID    YoutubeVideoID
	Found bool
}

func NewVideoReference(raw string) VideoReference {
	id, ok := ExtractVideoID(raw)
	return VideoReference{
		URL:   raw,
		ID:    id,
		Found: ok,
	}
}

// VideoView is what gets displayed after a url was submitted.
type VideoView struct {
	ID          YoutubeVideoID
	Title       string
	Thumbnail   string
	Transcripts TranscriptSet
}
