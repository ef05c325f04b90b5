package db

import (
	"context"
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// SaveResults replaces the stored results of one transcript. Players that
// are no longer mentioned lose their document.
func (s *Store) SaveResults(ctx context.Context, transcriptID string, results []types.AnalysisResult) error {
	existing, err := s.client.Collection(resultsCollection).
		Where("transcriptId", "==", transcriptID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return fmt.Errorf("error listing results for %s: %w", transcriptID, err)
	}

	bw := s.client.BulkWriter(ctx)
	keep := make(map[string]bool, len(results))
	var jobs []*firestore.BulkWriterJob
	for _, r := range results {
		r.TranscriptID = transcriptID
		id := resultDocID(transcriptID, r.PlayerID)
		keep[id] = true
		job, err := bw.Set(s.client.Collection(resultsCollection).Doc(id), r)
		if err != nil {
			logger.Warn("error enqueueing result", "transcript", transcriptID, "player", r.PlayerID, "err", err)
			continue
		}
		jobs = append(jobs, job)
	}
	for _, doc := range existing {
		if keep[doc.Ref.ID] {
			continue
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			logger.Warn("error enqueueing stale result delete", "doc", doc.Ref.ID, "err", err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to save results for %s: %w", transcriptID, err)
		}
	}
	logger.Debug("saved results", "transcript", transcriptID, "results", len(results), "previous", len(existing))
	return nil
}

func (s *Store) ResultsForTranscript(ctx context.Context, transcriptID string) ([]types.AnalysisResult, error) {
	return s.queryResults(ctx, s.client.Collection(resultsCollection).Where("transcriptId", "==", transcriptID))
}

func (s *Store) ResultsForPlayers(ctx context.Context, playerIDs []string) ([]types.AnalysisResult, error) {
	var out []types.AnalysisResult
	for _, ids := range chunks(playerIDs, maxInValues) {
		rs, err := s.queryResults(ctx, s.client.Collection(resultsCollection).Where("playerId", "in", ids))
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

func (s *Store) AllResults(ctx context.Context) ([]types.AnalysisResult, error) {
	return s.queryResults(ctx, s.client.Collection(resultsCollection).Query)
}

func (s *Store) queryResults(ctx context.Context, q firestore.Query) ([]types.AnalysisResult, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []types.AnalysisResult
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating results: %w", err)
		}
		var r types.AnalysisResult
		if err := doc.DataTo(&r); err != nil {
			logger.Warn("skipping malformed result", "doc", doc.Ref.ID, "err", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
