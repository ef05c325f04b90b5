package routes

import (
	"go-commentary/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRouter(d handlers.Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message":       "Hello, welcome to Go Commentary!",
			"model_version": d.Analyzer.ModelVersion(),
		})
	})

	api := r.Group("/api/commentary")
	{
		api.POST("/transcripts", func(c *gin.Context) {
			handlers.CreateTranscriptHandler(c, d)
		})
		api.POST("/transcripts/:id/analyze", func(c *gin.Context) {
			handlers.AnalyzeTranscriptHandler(c, d)
		})
		api.GET("/transcripts/:id/results", func(c *gin.Context) {
			handlers.TranscriptResultsHandler(c, d)
		})
		api.GET("/transcripts/:id/bias", func(c *gin.Context) {
			handlers.TranscriptBiasHandler(c, d)
		})

		api.POST("/players", func(c *gin.Context) {
			handlers.RegisterPlayersHandler(c, d)
		})
		// static segments take precedence over :id
		api.GET("/players/compare", func(c *gin.Context) {
			handlers.ComparePlayersHandler(c, d)
		})
		api.GET("/players/top", func(c *gin.Context) {
			handlers.TopPlayersHandler(c, d)
		})
		api.GET("/players/:id/summary", func(c *gin.Context) {
			handlers.PlayerSummaryHandler(c, d)
		})
		api.PUT("/players/:id/aliases", func(c *gin.Context) {
			handlers.AppendAliasesHandler(c, d)
		})
	}

	return r
}
