package config

import (
	"go-commentary/logger"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// base64 encoded service account JSON, same format the language client uses
	FirebaseCredentials string
	LanguageCredentials string

	OpenAIKey   string
	OpenAIModel string

	// google | openai | mlmodel
	SentimentBackend string
	MLModelURL       string

	RedisURL   string
	RosterFile string
	CronSpec   string
	// CronBatch caps transcripts analyzed per cron run.
	CronBatch int

	Pipeline PipelineConfig
	Bias     BiasWeights
}

type PipelineConfig struct {
	Workers           int
	WindowConcurrency int

	ModelTimeout time.Duration
	ModelRetries int
	ModelBackoff time.Duration
	ModelQPS     float64

	WindowTokens      int
	MaxSentenceTokens int
	SurnameRadius     int
	FuzzyThreshold    float64
	ExcerptCap        int
	SummaryTopN       int

	// IncludeUnmentioned emits empty results for roster players never mentioned.
	IncludeUnmentioned bool
}

type BiasWeights struct {
	Sentiment float64
	Coverage  float64
	Language  float64
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	return Config{
		Port:                GetEnvString("PORT", "8080"),
		LogLevel:            GetEnvString("LOG_LEVEL", "info"),
		FirebaseCredentials: GetEnvString("FIREBASE_CREDENTIALS", ""),
		LanguageCredentials: GetEnvString("NATURAL_LANGUAGE_CREDENTIALS", ""),
		OpenAIKey:           GetEnvString("OPENAI_API_KEY", ""),
		OpenAIModel:         GetEnvString("OPENAI_MODEL", "gpt-4o-mini"),
		SentimentBackend:    GetEnvString("SENTIMENT_BACKEND", "google"),
		MLModelURL:          GetEnvString("ML_MODEL_URL", ""),
		RedisURL:            GetEnvString("REDIS_URL", ""),
		RosterFile:          GetEnvString("ROSTER_FILE", ""),
		CronSpec:            GetEnvString("CRON_SPEC", "*/10 * * * *"),
		CronBatch:           GetEnvInt("CRON_BATCH", 20),
		Pipeline: PipelineConfig{
			Workers:            GetEnvInt("WORKERS", 4),
			WindowConcurrency:  GetEnvInt("WINDOW_CONCURRENCY", 8),
			ModelTimeout:       GetEnvDuration("MODEL_TIMEOUT", 10*time.Second),
			ModelRetries:       GetEnvInt("MODEL_RETRIES", 3),
			ModelBackoff:       GetEnvDuration("MODEL_BACKOFF", 500*time.Millisecond),
			ModelQPS:           GetEnvFloat("MODEL_QPS", 10),
			WindowTokens:       GetEnvInt("WINDOW_TOKENS", 20),
			MaxSentenceTokens:  GetEnvInt("MAX_SENTENCE_TOKENS", 50),
			SurnameRadius:      GetEnvInt("SURNAME_RADIUS", 15),
			FuzzyThreshold:     GetEnvFloat("FUZZY_THRESHOLD", 0.85),
			ExcerptCap:         GetEnvInt("EXCERPT_CAP", 10),
			SummaryTopN:        GetEnvInt("SUMMARY_TOP_N", 10),
			IncludeUnmentioned: GetEnvBool("INCLUDE_UNMENTIONED", false),
		},
		Bias: BiasWeights{
			Sentiment: GetEnvFloat("BIAS_WEIGHT_SENTIMENT", 1),
			Coverage:  GetEnvFloat("BIAS_WEIGHT_COVERAGE", 1),
			Language:  GetEnvFloat("BIAS_WEIGHT_LANGUAGE", 1),
		},
	}
}
