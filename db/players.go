package db

import (
	"context"
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type playerDoc struct {
	types.Player
	// RegisteredAt orders the roster; earlier registration wins ties.
	RegisteredAt int64 `firestore:"registeredAt"`
}

// Roster loads every player in registration order.
func (s *Store) Roster(ctx context.Context) (*types.Roster, error) {
	iter := s.client.Collection(playersCollection).
		OrderBy("registeredAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var players []types.Player
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating players: %w", err)
		}

		var p playerDoc
		if err := doc.DataTo(&p); err != nil {
			logger.Warn("skipping malformed player", "doc", doc.Ref.ID, "err", err)
			continue
		}
		if p.ID == "" {
			p.ID = doc.Ref.ID
		}
		players = append(players, p.Player)
	}

	return types.NewRoster(players), nil
}

// SavePlayers registers new players. Players that already exist are left
// untouched so their identity and registration order never change.
func (s *Store) SavePlayers(ctx context.Context, players []types.Player) error {
	if len(players) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	base := time.Now().UnixNano()
	jobs := make([]*firestore.BulkWriterJob, 0, len(players))
	ids := make([]string, 0, len(players))
	for i, p := range players {
		if p.ID == "" {
			continue
		}
		ref := s.client.Collection(playersCollection).Doc(p.ID)
		job, err := bw.Create(ref, playerDoc{Player: p, RegisteredAt: base + int64(i)})
		if err != nil {
			logger.Warn("error enqueueing player", "player", p.ID, "err", err)
			continue
		}
		jobs = append(jobs, job)
		ids = append(ids, p.ID)
	}
	bw.End()

	created := 0
	for i, job := range jobs {
		_, err := job.Results()
		switch {
		case err == nil:
			created++
		case status.Code(err) == codes.AlreadyExists:
			logger.Debug("player already registered", "player", ids[i])
		default:
			return fmt.Errorf("failed to save player %s: %w", ids[i], err)
		}
	}
	logger.Info("registered players", "created", created, "submitted", len(players))
	return nil
}

// AppendAliases merges aliases into a registered player. Only the aliases
// field is written, so registration order is kept.
func (s *Store) AppendAliases(ctx context.Context, playerID string, aliases []string) (types.Player, error) {
	ref := s.client.Collection(playersCollection).Doc(playerID)

	var updated types.Player
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
			}
			return fmt.Errorf("error getting player %s: %w", playerID, err)
		}

		var p playerDoc
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("error decoding player %s: %w", playerID, err)
		}
		if p.ID == "" {
			p.ID = doc.Ref.ID
		}

		added := 0
		for _, a := range aliases {
			if p.AddAlias(a) {
				added++
			}
		}
		updated = p.Player
		if added == 0 {
			return nil
		}
		return tx.Update(ref, []firestore.Update{{Path: "aliases", Value: p.Aliases}})
	})
	if err != nil {
		return types.Player{}, err
	}
	return updated, nil
}
