package main

import (
	"context"
	"fmt"
	"go-commentary/aggregate"
	"go-commentary/bias"
	"go-commentary/cache"
	"go-commentary/config"
	"go-commentary/cronjobs"
	"go-commentary/db"
	"go-commentary/handlers"
	"go-commentary/logger"
	"go-commentary/mlmodel"
	"go-commentary/nlp"
	"go-commentary/processor"
	"go-commentary/resolver"
	"go-commentary/roster"
	"go-commentary/routes"
	"go-commentary/window"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// versioned is a sentiment backend that names itself in cache keys.
type versioned interface {
	nlp.SentimentService
	Version() string
}

func sentimentBackend(cfg config.Config, clients *nlp.LanguageClients, chat *openai.Client) (nlp.SentimentService, string, error) {
	switch cfg.SentimentBackend {
	case "google":
		if clients == nil {
			return nil, "", fmt.Errorf("google sentiment needs NATURAL_LANGUAGE_CREDENTIALS")
		}
		return nlp.GoogleSentiment{Client: clients.V2}, "", nil
	case "openai":
		if chat == nil {
			return nil, "", fmt.Errorf("openai sentiment needs OPENAI_API_KEY")
		}
		var svc versioned = nlp.OpenAISentiment{Client: chat, Model: cfg.OpenAIModel}
		return svc, svc.Version(), nil
	case "mlmodel":
		if cfg.MLModelURL == "" {
			return nil, "", fmt.Errorf("mlmodel sentiment needs ML_MODEL_URL")
		}
		var svc versioned = mlmodel.NewClassifier(cfg.MLModelURL)
		return svc, svc.Version(), nil
	}
	return nil, "", fmt.Errorf("unknown SENTIMENT_BACKEND %q", cfg.SentimentBackend)
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	ctx := context.Background()

	var clients *nlp.LanguageClients
	if cfg.LanguageCredentials != "" {
		var err error
		clients, err = nlp.NewLanguageClients(ctx, cfg.LanguageCredentials)
		if err != nil {
			logger.Fatal("Failed to create Natural Language clients", "err", err)
		}
		defer clients.Close()
	} else {
		logger.Warn("NATURAL_LANGUAGE_CREDENTIALS not set: names come from the roster only and no language patterns are extracted")
	}

	var chat *openai.Client
	if cfg.OpenAIKey != "" {
		logger.Info("OPENAI_API_KEY loaded")
		chat = openai.NewClient(cfg.OpenAIKey)
	}

	sentiment, sentimentVersion, err := sentimentBackend(cfg, clients, chat)
	if err != nil {
		logger.Fatal("Failed to set up sentiment backend", "err", err)
	}

	services := processor.Services{Sentiment: sentiment}
	var versions []string
	if clients != nil {
		services.Entities = nlp.GoogleEntities{Client: clients.V2}
		services.Syntax = nlp.GoogleSyntax{Client: clients.V1}
		versions = append(versions, nlp.GoogleVersion)
	}
	if sentimentVersion != "" {
		versions = append(versions, sentimentVersion)
	}
	services.Version = strings.Join(versions, "+")

	p := cfg.Pipeline
	aggOpts := aggregate.Options{ExcerptCap: p.ExcerptCap, TopN: p.SummaryTopN}
	analyzer := processor.NewAnalyzer(services, processor.Options{
		Resolver:  resolver.Options{SurnameRadius: p.SurnameRadius, FuzzyThreshold: p.FuzzyThreshold},
		Window:    window.Options{WindowTokens: p.WindowTokens, MaxSentenceTokens: p.MaxSentenceTokens},
		Aggregate: aggOpts,
		Resilient: nlp.ResilientOptions{
			Timeout: p.ModelTimeout,
			Retries: p.ModelRetries,
			Backoff: p.ModelBackoff,
			QPS:     p.ModelQPS,
		},
		Workers:            p.Workers,
		WindowConcurrency:  p.WindowConcurrency,
		IncludeUnmentioned: p.IncludeUnmentioned,
	})

	store := cache.Store(cache.NewMemoryStore())
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "err", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	}
	analyzer.WithCache(cache.New(store))
	logger.Info("Analyzer ready", "model_version", analyzer.ModelVersion())

	var repo db.Repository
	if cfg.FirebaseCredentials != "" {
		firestoreClient, err := db.InitFirestore(ctx, cfg.FirebaseCredentials)
		if err != nil {
			logger.Fatal("Failed to initialize Firestore", "err", err)
		}
		defer db.CloseFirestore()
		repo = db.NewStore(firestoreClient)
	} else {
		logger.Warn("FIREBASE_CREDENTIALS not set: results are kept in memory")
		repo = db.NewMemory()
	}

	if cfg.RosterFile != "" {
		r, err := roster.LoadFile(cfg.RosterFile)
		if err != nil {
			logger.Fatal("Failed to load roster", "err", err)
		}
		if err := repo.SavePlayers(ctx, r.Players()); err != nil {
			logger.Fatal("Failed to register roster players", "err", err)
		}
	}

	c, err := cronjobs.InitCronJobs(cfg.CronSpec, repo, analyzer, cfg.CronBatch)
	if err != nil {
		logger.Fatal("Failed to start cron jobs", "err", err)
	}
	defer c.Stop()

	d := handlers.Deps{
		Repo:      repo,
		Analyzer:  analyzer,
		Scorer:    bias.NewScorer(bias.Weights(cfg.Bias)),
		Aggregate: aggOpts,
		ChatModel: cfg.OpenAIModel,
	}
	if chat != nil {
		d.Chat = chat
	}

	r := routes.SetupRouter(d)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", "err", err)
	}
}
