package handlers

import (
	"errors"
	"go-commentary/aggregate"
	"go-commentary/db"
	"go-commentary/logger"
	"go-commentary/summarization"
	"go-commentary/types"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// RegisterPlayersHandler adds players to the roster. Existing IDs are kept as is.
func RegisterPlayersHandler(c *gin.Context, d Deps) {
	var players []types.Player
	if err := c.ShouldBindJSON(&players); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i, p := range players {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every player needs an id and a name", "index": i})
			return
		}
	}

	if err := d.Repo.SavePlayers(c.Request.Context(), players); err != nil {
		logger.Error("failed to save players", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save players"})
		return
	}
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": roster.Len(), "roster_version": roster.Version()})
}

type aliasesRequest struct {
	Aliases []string `json:"aliases"`
}

// AppendAliasesHandler adds aliases to a registered player. Aliases the
// player already has (ignoring case) are skipped.
func AppendAliasesHandler(c *gin.Context, d Deps) {
	var req aliasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var aliases []string
	for _, a := range req.Aliases {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	if len(aliases) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aliases must not be empty"})
		return
	}

	id := c.Param("id")
	player, err := d.Repo.AppendAliases(c.Request.Context(), id, aliases)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}
	if err != nil {
		logger.Error("failed to append aliases", "player", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save aliases"})
		return
	}
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player, "roster_version": roster.Version()})
}

// PlayerSummaryHandler aggregates one player across every analyzed transcript.
func PlayerSummaryHandler(c *gin.Context, d Deps) {
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}
	player, found := roster.Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	results, err := d.Repo.ResultsForPlayers(c.Request.Context(), []string{player.ID})
	if err != nil {
		logger.Error("failed to load results", "player", player.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	c.JSON(http.StatusOK, aggregate.Summarize(player, results, d.Aggregate))
}

// ComparePlayersHandler compares players over the whole corpus. Without
// player_ids every roster player mentioned at least once takes part.
func ComparePlayersHandler(c *gin.Context, d Deps) {
	ctx := c.Request.Context()
	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}

	var ids []string
	for _, id := range strings.Split(c.Query("player_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	var players []types.Player
	if len(ids) == 0 {
		players = roster.Players()
	} else {
		for _, id := range ids {
			p, found := roster.Get(id)
			if !found {
				c.JSON(http.StatusNotFound, gin.H{"error": "Player not found", "player_id": id})
				return
			}
			players = append(players, p)
		}
	}
	playerIDs := make([]string, len(players))
	for i, p := range players {
		playerIDs[i] = p.ID
	}

	results, err := d.Repo.ResultsForPlayers(ctx, playerIDs)
	if err != nil {
		logger.Error("failed to load results", "players", len(playerIDs), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	summaries := aggregate.SummarizeAll(types.NewRoster(players), results, d.Aggregate)
	if len(ids) == 0 {
		mentioned := summaries[:0]
		for _, s := range summaries {
			if s.TotalMentions > 0 {
				mentioned = append(mentioned, s)
			}
		}
		summaries = mentioned
	}
	analysis := d.Scorer.Compare(types.Scope{Kind: types.ScopeCorpus}, summaries)
	respondWithComparison(c, d, analysis)
}

// TopPlayersHandler lists the most mentioned players.
func TopPlayersHandler(c *gin.Context, d Deps) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxTopLimit)
	}

	roster, ok := loadRoster(c, d)
	if !ok {
		return
	}
	results, err := d.Repo.AllResults(c.Request.Context())
	if err != nil {
		logger.Error("failed to load results", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	top := aggregate.TopPlayers(aggregate.SummarizeAll(roster, results, d.Aggregate), limit)
	if top == nil {
		top = []types.PlayerAnalysisSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"players": top})
}

// respondWithComparison adds an LLM narrative when asked for and available.
// A failed narrative never fails the request.
func respondWithComparison(c *gin.Context, d Deps, analysis types.ComparativeAnalysis) {
	if c.Query("narrative") == "true" && d.Chat != nil && len(analysis.Players) > 0 {
		narrative, err := summarization.GenerateBiasNarrative(c.Request.Context(), d.Chat, d.ChatModel, analysis)
		if err != nil {
			logger.Warn("failed to generate bias narrative", "err", err)
		} else {
			analysis.Narrative = narrative
		}
	}
	c.JSON(http.StatusOK, analysis)
}
