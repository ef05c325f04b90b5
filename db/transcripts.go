package db

import (
	"context"
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

func (s *Store) GetTranscript(ctx context.Context, id string) (types.Transcript, error) {
	var t types.Transcript
	doc, err := s.client.Collection(transcriptsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return t, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
		}
		return t, fmt.Errorf("error getting transcript %s: %w", id, err)
	}
	if err := doc.DataTo(&t); err != nil {
		return t, fmt.Errorf("error decoding transcript %s: %w", id, err)
	}
	t.ID = doc.Ref.ID
	return t, nil
}

// SaveTranscript stores t as unprocessed and returns its ID, generating one
// when t has none.
func (s *Store) SaveTranscript(ctx context.Context, t types.Transcript) (string, error) {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	t.Processed = false

	if _, err := s.client.Collection(transcriptsCollection).Doc(t.ID).Set(ctx, t); err != nil {
		return "", fmt.Errorf("error saving transcript %s: %w", t.ID, err)
	}
	return t.ID, nil
}

// PendingTranscripts returns up to limit transcripts not yet analyzed,
// oldest first.
func (s *Store) PendingTranscripts(ctx context.Context, limit int) ([]types.Transcript, error) {
	q := s.client.Collection(transcriptsCollection).
		Where("processed", "==", false).
		OrderBy("createdAt", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []types.Transcript
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating pending transcripts: %w", err)
		}
		var t types.Transcript
		if err := doc.DataTo(&t); err != nil {
			logger.Warn("skipping malformed transcript", "doc", doc.Ref.ID, "err", err)
			continue
		}
		t.ID = doc.Ref.ID
		out = append(out, t)
	}
	return out, nil
}

// MarkProcessed flags the transcript and records the run that analyzed it.
func (s *Store) MarkProcessed(ctx context.Context, analysis types.TranscriptAnalysis) error {
	ref := s.client.Collection(transcriptsCollection).Doc(analysis.TranscriptID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "processed", Value: true},
		{Path: "lastRunId", Value: analysis.RunID},
		{Path: "lastStatus", Value: string(analysis.Status)},
		{Path: "mentionCount", Value: analysis.MentionCount},
		{Path: "analyzedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("transcript %s: %w", analysis.TranscriptID, ErrNotFound)
		}
		return fmt.Errorf("error marking transcript %s processed: %w", analysis.TranscriptID, err)
	}
	return nil
}
