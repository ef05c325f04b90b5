package db

import (
	"context"
	"fmt"
	"go-commentary/types"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a process-local Repository for running without Firestore.
type Memory struct {
	mu          sync.RWMutex
	players     []types.Player
	transcripts map[string]types.Transcript
	order       []string
	results     map[string]types.AnalysisResult
}

func NewMemory() *Memory {
	return &Memory{
		transcripts: make(map[string]types.Transcript),
		results:     make(map[string]types.AnalysisResult),
	}
}

func (m *Memory) Roster(ctx context.Context) (*types.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return types.NewRoster(m.players), nil
}

func (m *Memory) SavePlayers(ctx context.Context, players []types.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	known := make(map[string]bool, len(m.players))
	for _, p := range m.players {
		known[p.ID] = true
	}
	for _, p := range players {
		if p.ID == "" || known[p.ID] {
			continue
		}
		known[p.ID] = true
		p.Aliases = append([]string(nil), p.Aliases...)
		m.players = append(m.players, p)
	}
	return nil
}

func (m *Memory) AppendAliases(ctx context.Context, playerID string, aliases []string) (types.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.players {
		if m.players[i].ID != playerID {
			continue
		}
		for _, a := range aliases {
			m.players[i].AddAlias(a)
		}
		p := m.players[i]
		p.Aliases = append([]string(nil), p.Aliases...)
		return p, nil
	}
	return types.Player{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
}

func (m *Memory) GetTranscript(ctx context.Context, id string) (types.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transcripts[id]
	if !ok {
		return types.Transcript{}, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) SaveTranscript(ctx context.Context, t types.Transcript) (string, error) {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	t.Processed = false

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transcripts[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.transcripts[t.ID] = t
	return t.ID, nil
}

func (m *Memory) PendingTranscripts(ctx context.Context, limit int) ([]types.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Transcript
	for _, id := range m.order {
		if limit > 0 && len(out) == limit {
			break
		}
		if t := m.transcripts[id]; !t.Processed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) MarkProcessed(ctx context.Context, analysis types.TranscriptAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transcripts[analysis.TranscriptID]
	if !ok {
		return fmt.Errorf("transcript %s: %w", analysis.TranscriptID, ErrNotFound)
	}
	t.Processed = true
	m.transcripts[t.ID] = t
	return nil
}

func (m *Memory) SaveResults(ctx context.Context, transcriptID string, results []types.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.results {
		if r.TranscriptID == transcriptID {
			delete(m.results, id)
		}
	}
	for _, r := range results {
		r.TranscriptID = transcriptID
		m.results[resultDocID(transcriptID, r.PlayerID)] = r
	}
	return nil
}

func (m *Memory) ResultsForTranscript(ctx context.Context, transcriptID string) ([]types.AnalysisResult, error) {
	return m.filter(func(r types.AnalysisResult) bool { return r.TranscriptID == transcriptID }), nil
}

func (m *Memory) ResultsForPlayers(ctx context.Context, playerIDs []string) ([]types.AnalysisResult, error) {
	wanted := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		wanted[id] = true
	}
	return m.filter(func(r types.AnalysisResult) bool { return wanted[r.PlayerID] }), nil
}

func (m *Memory) AllResults(ctx context.Context) ([]types.AnalysisResult, error) {
	return m.filter(func(types.AnalysisResult) bool { return true }), nil
}

// filter returns matches sorted by document ID so reads are stable.
func (m *Memory) filter(match func(types.AnalysisResult) bool) []types.AnalysisResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.results))
	for id, r := range m.results {
		if match(r) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]types.AnalysisResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.results[id])
	}
	return out
}
