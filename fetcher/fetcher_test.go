package fetcher_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ewintr.nl/vidqa/fetcher"
	"ewintr.nl/vidqa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const videoID = model.YoutubeVideoID("dQw4w9WgXcQ")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const enManualVTT = `WEBVTT

00:00:00.000 --> 00:00:02.000
[0:00:01] hello <b>world</b>

00:00:02.000 --> 00:00:04.000
second line
`

const enAutoVTT = `WEBVTT

00:00:00.000 --> 00:00:02.000
automatic english
`

const nlAutoVTT = `WEBVTT

00:00:00.000 --> 00:00:02.000
hallo wereld
`

type fakeYoutube struct {
	*httptest.Server
	playerCalls atomic.Int32
	playerBody  string
	watchStatus int
	watchBody   string
}

func newFakeYoutube(t *testing.T) *fakeYoutube {
	fy := &fakeYoutube{watchStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != string(videoID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(fy.watchStatus)
		fmt.Fprint(w, fy.watchBody)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		fy.playerCalls.Add(1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), string(videoID)) {
			fmt.Fprint(w, `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`)
			return
		}
		fmt.Fprint(w, fy.playerBody)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("fmt") != "vtt" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch q.Get("lang") + "/" + q.Get("kind") {
		case "en/":
			fmt.Fprint(w, enManualVTT)
		case "en/asr":
			fmt.Fprint(w, enAutoVTT)
		case "nl/asr":
			fmt.Fprint(w, nlAutoVTT)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	fy.Server = httptest.NewServer(mux)
	t.Cleanup(fy.Close)

	fy.watchBody = `<html><head><title>Example Title - YouTube</title></head><body></body></html>`
	fy.playerBody = fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"%[1]s/api/timedtext?v=x&lang=en&kind=asr","languageCode":"en","kind":"asr"},
{"baseUrl":"%[1]s/api/timedtext?v=x&lang=en","languageCode":"en"},
{"baseUrl":"%[1]s/api/timedtext?v=x&lang=nl&kind=asr","languageCode":"nl","kind":"asr"},
{"baseUrl":"%[1]s/api/timedtext?v=x&lang=de&exp=xpe","languageCode":"de"}
]}}}`, fy.URL)

	return fy
}

func TestWatchPage(t *testing.T) {
	fy := newFakeYoutube(t)
	wp := fetcher.NewWatchPage(fy.Client(), fy.URL, testLogger())

	t.Run("title", func(t *testing.T) {
		assert.Equal(t, "Example Title", wp.FetchTitle(context.Background(), videoID))
	})

	t.Run("unknown video", func(t *testing.T) {
		assert.Equal(t, model.UnknownTitle, wp.FetchTitle(context.Background(), "aaaaaaaaaaa"))
	})

	t.Run("no identifier", func(t *testing.T) {
		assert.Equal(t, model.UnknownTitle, wp.FetchTitle(context.Background(), ""))
	})

	t.Run("server error", func(t *testing.T) {
		fy.watchStatus = http.StatusInternalServerError
		defer func() { fy.watchStatus = http.StatusOK }()
		assert.Equal(t, model.UnknownTitle, wp.FetchTitle(context.Background(), videoID))
	})

	t.Run("unreachable", func(t *testing.T) {
		down := fetcher.NewWatchPage(http.DefaultClient, "http://127.0.0.1:1", testLogger())
		assert.Equal(t, model.UnknownTitle, down.FetchTitle(context.Background(), videoID))
	})
}

func TestPageTitle(t *testing.T) {
	for _, tc := range []struct {
		name  string
		page  string
		exp   string
		expOk bool
	}{
		{name: "suffix", page: `<title>My Video - YouTube</title>`, exp: "My Video", expOk: true},
		{name: "no suffix", page: `<html><title>Plain</title></html>`, exp: "Plain", expOk: true},
		{name: "first wins", page: `<title>One</title><title>Two</title>`, exp: "One", expOk: true},
		{name: "entities", page: `<title>Tom &amp; Jerry - YouTube</title>`, exp: "Tom & Jerry", expOk: true},
		{name: "suffix only at end", page: `<title>A - YouTube story</title>`, exp: "A - YouTube story", expOk: true},
		{name: "empty", page: `<title></title>`},
		{name: "only suffix", page: `<title> - YouTube</title>`},
		{name: "padded suffix", page: "<title>\n  - YouTube \n</title>"},
		{name: "padded title", page: "<title>\n  Padded - YouTube\n</title>", exp: "Padded", expOk: true},
		{name: "glued suffix kept", page: `<title>Ends-with- YouTube</title>`, exp: "Ends-with- YouTube", expOk: true},
		{name: "missing", page: `<html><body>nothing</body></html>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			act, ok := fetcher.PageTitle(strings.NewReader(tc.page))
			assert.Equal(t, tc.expOk, ok)
			assert.Equal(t, tc.exp, act)
		})
	}
}

func TestYoutube(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/youtube/v3/videos") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.URL.Query().Get("id") == string(videoID) {
			fmt.Fprint(w, `{"items":[{"id":"dQw4w9WgXcQ","snippet":{"title":"Data API Title"}}]}`)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	svc, err := youtube.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	yt := fetcher.NewYoutube(svc, testLogger())

	assert.Equal(t, "Data API Title", yt.FetchTitle(context.Background(), videoID))
	assert.Equal(t, model.UnknownTitle, yt.FetchTitle(context.Background(), "aaaaaaaaaaa"))

	status = http.StatusForbidden
	assert.Equal(t, model.UnknownTitle, yt.FetchTitle(context.Background(), videoID))
}

type staticTitle string

func (st staticTitle) FetchTitle(_ context.Context, _ model.YoutubeVideoID) string {
	return string(st)
}

func TestTitleChain(t *testing.T) {
	for _, tc := range []struct {
		name     string
		fetchers []fetcher.TitleFetcher
		exp      string
	}{
		{name: "empty chain", exp: model.UnknownTitle},
		{name: "first known", fetchers: []fetcher.TitleFetcher{staticTitle("a"), staticTitle("b")}, exp: "a"},
		{name: "skip unknown", fetchers: []fetcher.TitleFetcher{staticTitle(model.UnknownTitle), staticTitle("b")}, exp: "b"},
		{name: "all unknown", fetchers: []fetcher.TitleFetcher{staticTitle(model.UnknownTitle)}, exp: model.UnknownTitle},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chain := fetcher.NewTitleChain(testLogger(), tc.fetchers...)
			assert.Equal(t, tc.exp, chain.FetchTitle(context.Background(), videoID))
		})
	}

	chain := fetcher.NewTitleChain(testLogger(), staticTitle("a"))
	assert.Equal(t, model.UnknownTitle, chain.FetchTitle(context.Background(), ""))
}

func TestTranscriptFetcher(t *testing.T) {
	fy := newFakeYoutube(t)
	tf := fetcher.NewTranscriptFetcher(fy.Client(), fy.URL, testLogger())

	t.Run("all languages", func(t *testing.T) {
		act := tf.FetchTranscripts(context.Background(), videoID)
		assert.Equal(t, model.TranscriptSet{
			"en": "hello world\nsecond line",
			"nl": "hallo wereld",
		}, act)
	})

	t.Run("list skips po token tracks", func(t *testing.T) {
		tracks, err := tf.ListTracks(context.Background(), videoID)
		require.NoError(t, err)
		assert.Len(t, tracks, 3)
		for _, track := range tracks {
			assert.NotEqual(t, "de", track.LanguageCode)
		}
	})

	t.Run("unavailable video", func(t *testing.T) {
		_, err := tf.ListTracks(context.Background(), "aaaaaaaaaaa")
		assert.ErrorIs(t, err, fetcher.ErrTranscriptUnavailable)
		assert.Empty(t, tf.FetchTranscripts(context.Background(), "aaaaaaaaaaa"))
	})

	t.Run("no identifier", func(t *testing.T) {
		calls := fy.playerCalls.Load()
		assert.Empty(t, tf.FetchTranscripts(context.Background(), ""))
		assert.Equal(t, calls, fy.playerCalls.Load())
	})

	t.Run("captions disabled", func(t *testing.T) {
		body := fy.playerBody
		fy.playerBody = `{"playabilityStatus":{"status":"OK"}}`
		defer func() { fy.playerBody = body }()
		assert.Empty(t, tf.FetchTranscripts(context.Background(), videoID))
	})

	t.Run("unreachable", func(t *testing.T) {
		down := fetcher.NewTranscriptFetcher(http.DefaultClient, "http://127.0.0.1:1", testLogger())
		assert.Empty(t, down.FetchTranscripts(context.Background(), videoID))
	})
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		exp   string
	}{
		{name: "plain", input: "hello world", exp: "hello world"},
		{name: "timecodes", input: "[0:00:01] hello [12:34:56]world", exp: "hello world"},
		{name: "tags", input: "<c>hello</c> <i>world</i>", exp: "hello world"},
		{name: "speaker tags", input: "<v Roger>hi there", exp: "hi there"},
		{name: "inline timestamps", input: "one<00:00:01.500><c> two</c>", exp: "one two"},
		{name: "comparison kept", input: "a < b and c > d", exp: "a < b and c > d"},
		{name: "empty lines dropped", input: "one\n<c></c>\n\n two ", exp: "one\ntwo"},
		{name: "empty", input: "", exp: ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, fetcher.Normalize(tc.input))
		})
	}
}
