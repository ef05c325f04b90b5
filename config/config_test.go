package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKERS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Pipeline.WindowTokens != 20 {
		t.Errorf("expected default window of 20 tokens, got %d", cfg.Pipeline.WindowTokens)
	}
	if cfg.Bias.Sentiment != 1 || cfg.Bias.Coverage != 1 || cfg.Bias.Language != 1 {
		t.Errorf("expected equal default weights, got %+v", cfg.Bias)
	}
	if cfg.Pipeline.IncludeUnmentioned {
		t.Errorf("expected unmentioned players excluded by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKERS", "12")
	t.Setenv("MODEL_TIMEOUT", "750ms")
	t.Setenv("FUZZY_THRESHOLD", "0.9")
	t.Setenv("SENTIMENT_BACKEND", "openai")
	t.Setenv("INCLUDE_UNMENTIONED", "true")

	cfg := Load()
	if cfg.Pipeline.Workers != 12 {
		t.Errorf("expected 12 workers, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.ModelTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms timeout, got %v", cfg.Pipeline.ModelTimeout)
	}
	if cfg.Pipeline.FuzzyThreshold != 0.9 {
		t.Errorf("expected fuzzy threshold 0.9, got %v", cfg.Pipeline.FuzzyThreshold)
	}
	if cfg.SentimentBackend != "openai" {
		t.Errorf("expected openai backend, got %s", cfg.SentimentBackend)
	}
	if !cfg.Pipeline.IncludeUnmentioned {
		t.Errorf("expected unmentioned players to be included")
	}
}

func TestGetEnvMalformedFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "twelve")
	t.Setenv("SOME_BOOL", "yes")
	t.Setenv("SOME_DURATION", "soon")

	if got := GetEnvInt("SOME_INT", 3); got != 3 {
		t.Errorf("expected fallback 3, got %d", got)
	}
	if got := GetEnvBool("SOME_BOOL", true); !got {
		t.Errorf("expected fallback true")
	}
	if got := GetEnvDuration("SOME_DURATION", time.Second); got != time.Second {
		t.Errorf("expected fallback 1s, got %v", got)
	}
}
