package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	playersCollection     = "players"
	transcriptsCollection = "transcripts"
	resultsCollection     = "analysisResults"

	// Firestore caps "in" filters at 30 values.
	maxInValues = 30
)

var ErrNotFound = errors.New("not found")

// Repository is everything the API and cron jobs persist. Store is the
// Firestore implementation, Memory the local one.
type Repository interface {
	Roster(ctx context.Context) (*types.Roster, error)
	SavePlayers(ctx context.Context, players []types.Player) error
	AppendAliases(ctx context.Context, playerID string, aliases []string) (types.Player, error)
	GetTranscript(ctx context.Context, id string) (types.Transcript, error)
	SaveTranscript(ctx context.Context, t types.Transcript) (string, error)
	PendingTranscripts(ctx context.Context, limit int) ([]types.Transcript, error)
	MarkProcessed(ctx context.Context, analysis types.TranscriptAnalysis) error
	SaveResults(ctx context.Context, transcriptID string, results []types.AnalysisResult) error
	ResultsForTranscript(ctx context.Context, transcriptID string) ([]types.AnalysisResult, error)
	ResultsForPlayers(ctx context.Context, playerIDs []string) ([]types.AnalysisResult, error)
	AllResults(ctx context.Context) ([]types.AnalysisResult, error)
}

var (
	client     *firestore.Client
	clientOnce sync.Once
	clientErr  error
)

// InitFirestore initializes the shared Firestore client from base64 encoded
// service account JSON.
func InitFirestore(ctx context.Context, encodedCreds string) (*firestore.Client, error) {
	clientOnce.Do(func() {
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			clientErr = fmt.Errorf("failed to decode firestore credentials: %w", err)
			return
		}

		opt := option.WithCredentialsJSON(creds)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			clientErr = fmt.Errorf("error initializing firebase app: %w", err)
			return
		}

		client, err = app.Firestore(ctx)
		if err != nil {
			clientErr = fmt.Errorf("error getting firestore client: %w", err)
		}
	})

	return client, clientErr
}

// CloseFirestore closes the Firestore client.
func CloseFirestore() {
	if client != nil {
		client.Close()
	}
}

type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// resultDocID keeps one document per (transcript, player) so re-analysis
// overwrites instead of duplicating.
func resultDocID(transcriptID, playerID string) string {
	return types.HashString(transcriptID + ":" + playerID)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// SaveAnalysis persists a run's results. Partial runs stay pending so the
// next cron run retries them.
func SaveAnalysis(ctx context.Context, repo Repository, analysis types.TranscriptAnalysis) error {
	if err := repo.SaveResults(ctx, analysis.TranscriptID, analysis.Results); err != nil {
		return err
	}
	if analysis.Status == types.StatusPartial {
		logger.Warn("partial analysis saved, transcript stays pending",
			"transcript", analysis.TranscriptID,
			"unavailable_windows", analysis.UnavailableWindows,
			"ner_unavailable", analysis.NERUnavailable,
		)
		return nil
	}
	return repo.MarkProcessed(ctx, analysis)
}
