package handlers

import (
	"errors"
	"go-commentary/aggregate"
	"go-commentary/db"
	"go-commentary/logger"
	"go-commentary/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createTranscriptRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
	Sport string `json:"sport"`
}

// CreateTranscriptHandler stores a transcript for later analysis.
func CreateTranscriptHandler(c *gin.Context, d Deps) {
	var req createTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := d.Repo.SaveTranscript(c.Request.Context(), types.Transcript{
		ID:    req.ID,
		Title: req.Title,
		Text:  req.Text,
		Sport: req.Sport,
	})
	if err != nil {
		logger.Error("failed to save transcript", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transcript"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// AnalyzeTranscriptHandler runs the pipeline on a stored transcript and
// persists the results.
func AnalyzeTranscriptHandler(c *gin.Context, d Deps) {
	ctx := c.Request.Context()
	t, ok := loadTranscript(c, d)
	if !ok {
		return
	}
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}

	analysis := d.Analyzer.Analyze(ctx, t, roster)
	if err := db.SaveAnalysis(ctx, d.Repo, analysis); err != nil {
		logger.Error("failed to save analysis", "transcript", t.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save analysis"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func TranscriptResultsHandler(c *gin.Context, d Deps) {
	t, ok := loadTranscript(c, d)
	if !ok {
		return
	}
	results, err := d.Repo.ResultsForTranscript(c.Request.Context(), t.ID)
	if err != nil {
		logger.Error("failed to load results", "transcript", t.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	if results == nil {
		results = []types.AnalysisResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"transcript_id": t.ID,
		"processed":     t.Processed,
		"results":       results,
	})
}

// TranscriptBiasHandler compares the players mentioned in one transcript.
func TranscriptBiasHandler(c *gin.Context, d Deps) {
	ctx := c.Request.Context()
	t, ok := loadTranscript(c, d)
	if !ok {
		return
	}
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}
	results, err := d.Repo.ResultsForTranscript(ctx, t.ID)
	if err != nil {
		logger.Error("failed to load results", "transcript", t.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	var summaries []types.PlayerAnalysisSummary
	for _, s := range aggregate.SummarizeAll(roster, results, d.Aggregate) {
		if s.TotalMentions > 0 {
			summaries = append(summaries, s)
		}
	}
	analysis := d.Scorer.Compare(types.Scope{Kind: types.ScopeTranscript, TranscriptID: t.ID}, summaries)
	respondWithComparison(c, d, analysis)
}

func loadTranscript(c *gin.Context, d Deps) (types.Transcript, bool) {
	id := c.Param("id")
	t, err := d.Repo.GetTranscript(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transcript not found"})
		return t, false
	}
	if err != nil {
		logger.Error("failed to load transcript", "transcript", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transcript"})
		return t, false
	}
	return t, true
}

func loadRoster(c *gin.Context, d Deps) (*types.Roster, bool) {
	roster, err := d.Repo.Roster(c.Request.Context())
	if err != nil {
		logger.Error("failed to load roster", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roster"})
		return nil, false
	}
	return roster, true
}
