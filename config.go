package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"ewintr.nl/vidqa/fetcher"
	"ewintr.nl/vidqa/generator"
	"ewintr.nl/vidqa/process"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"google.golang.org/genai"
)

const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
	BackendLocal  = "local"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Backend             string
	GoogleAPIKey        string
	GeminiModel         string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	LocalModelURL       string
	LocalModel          string
	YoutubeAPIKey       string
	YoutubeBaseURL      string
	Port                int
	Language            string
	FetchTimeout        time.Duration
	GenerateTimeout     time.Duration
	GenOptions          generator.Options
	SessionMaxExchanges int
	SessionMax          int
}

func loadConfig() (Config, error) {
	cfg := Config{
		Backend:        getParam("GENERATOR", BackendGemini),
		GoogleAPIKey:   getParam("GOOGLE_API_KEY", ""),
		GeminiModel:    getParam("GEMINI_MODEL", generator.DefaultGeminiModel),
		OpenAIAPIKey:   getParam("OPENAI_API_KEY", ""),
		OpenAIModel:    getParam("OPENAI_MODEL", generator.DefaultOpenAIModel),
		OpenAIBaseURL:  getParam("OPENAI_BASE_URL", ""),
		LocalModelURL:  getParam("LOCAL_MODEL_URL", "http://localhost:8081/v1"),
		LocalModel:     getParam("LOCAL_MODEL", "local"),
		YoutubeAPIKey:  getParam("YOUTUBE_API_KEY", ""),
		YoutubeBaseURL: getParam("YOUTUBE_BASE_URL", fetcher.DefaultBaseURL),
		Language:       getParam("DEFAULT_LANGUAGE", "en"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getParam("API_PORT", "8080")); err != nil {
		return Config{}, fmt.Errorf("%w: API_PORT: %v", ErrInvalidConfig, err)
	}
	if cfg.FetchTimeout, err = time.ParseDuration(getParam("FETCH_TIMEOUT", "15s")); err != nil {
		return Config{}, fmt.Errorf("%w: FETCH_TIMEOUT: %v", ErrInvalidConfig, err)
	}
	if cfg.GenerateTimeout, err = time.ParseDuration(getParam("GENERATE_TIMEOUT", "60s")); err != nil {
		return Config{}, fmt.Errorf("%w: GENERATE_TIMEOUT: %v", ErrInvalidConfig, err)
	}
	if cfg.SessionMaxExchanges, err = strconv.Atoi(getParam("SESSION_MAX_EXCHANGES", "100")); err != nil {
		return Config{}, fmt.Errorf("%w: SESSION_MAX_EXCHANGES: %v", ErrInvalidConfig, err)
	}
	if cfg.SessionMax, err = strconv.Atoi(getParam("SESSION_MAX", "1000")); err != nil {
		return Config{}, fmt.Errorf("%w: SESSION_MAX: %v", ErrInvalidConfig, err)
	}
	if cfg.GenOptions, err = loadGenOptions(); err != nil {
		return Config{}, err
	}

	switch cfg.Backend {
	case BackendGemini:
		if cfg.GoogleAPIKey == "" {
			return Config{}, fmt.Errorf("%w: GOOGLE_API_KEY is required for the %s generator", ErrInvalidConfig, cfg.Backend)
		}
	case BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("%w: OPENAI_API_KEY is required for the %s generator", ErrInvalidConfig, cfg.Backend)
		}
	case BackendLocal:
	default:
		return Config{}, fmt.Errorf("%w: unknown generator %q", ErrInvalidConfig, cfg.Backend)
	}

	return cfg, nil
}

func loadGenOptions() (generator.Options, error) {
	opts := generator.DefaultOptions()
	opts.ResponseFormat = getParam("GEN_RESPONSE_FORMAT", opts.ResponseFormat)

	for _, f := range []struct {
		name string
		set  func(string) error
	}{
		{"GEN_TEMPERATURE", func(s string) error {
			v, err := strconv.ParseFloat(s, 32)
			opts.Temperature = float32(v)
			return err
		}},
		{"GEN_TOP_P", func(s string) error {
			v, err := strconv.ParseFloat(s, 32)
			opts.TopP = float32(v)
			return err
		}},
		{"GEN_TOP_K", func(s string) (err error) {
			opts.TopK, err = strconv.Atoi(s)
			return err
		}},
		{"GEN_MAX_OUTPUT_TOKENS", func(s string) (err error) {
			opts.MaxOutputTokens, err = strconv.Atoi(s)
			return err
		}},
	} {
		val := getParam(f.name, "")
		if val == "" {
			continue
		}
		if err := f.set(val); err != nil {
			return generator.Options{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.name, err)
		}
	}

	return opts, nil
}

func newGenerator(ctx context.Context, cfg Config) (generator.Generator, error) {
	switch cfg.Backend {
	case BackendGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GoogleAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		return generator.NewGemini(client, cfg.GeminiModel), nil
	case BackendOpenAI:
		oaiConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			oaiConfig.BaseURL = cfg.OpenAIBaseURL
		}
		return generator.NewOpenAI(openai.NewClientWithConfig(oaiConfig), cfg.OpenAIModel), nil
	case BackendLocal:
		oaiConfig := openai.DefaultConfig("")
		oaiConfig.BaseURL = cfg.LocalModelURL
		return generator.NewOpenAI(openai.NewClientWithConfig(oaiConfig), cfg.LocalModel), nil
	default:
		return nil, fmt.Errorf("%w: unknown generator %q", ErrInvalidConfig, cfg.Backend)
	}
}

func newPipeline(ctx context.Context, cfg Config, logger *slog.Logger) (*process.Pipeline, error) {
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create generator: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	var titles []fetcher.TitleFetcher
	if cfg.YoutubeAPIKey != "" {
		ytClient, err := youtube.NewService(ctx, option.WithAPIKey(cfg.YoutubeAPIKey))
		if err != nil {
			return nil, fmt.Errorf("unable to create youtube service: %w", err)
		}
		titles = append(titles, fetcher.NewYoutube(ytClient, logger))
	}
	titles = append(titles, fetcher.NewWatchPage(httpClient, cfg.YoutubeBaseURL, logger))

	return process.NewPipeline(
		fetcher.NewTitleChain(logger, titles...),
		fetcher.NewTranscriptFetcher(httpClient, cfg.YoutubeBaseURL, logger),
		gen,
		cfg.GenOptions,
		cfg.Language,
		cfg.GenerateTimeout,
		logger,
	), nil
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok && val != "" {
		return val
	}
	return def
}
