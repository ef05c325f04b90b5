package cronjobs

import (
	"context"
	"fmt"
	"go-commentary/db"
	"go-commentary/logger"
	"go-commentary/processor"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

// AnalyzePending analyzes up to limit unprocessed transcripts against the
// current roster and saves the results. It returns how many were saved.
func AnalyzePending(ctx context.Context, repo db.Repository, analyzer *processor.Analyzer, limit int) (int, error) {
	pending, err := repo.PendingTranscripts(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending transcripts: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	roster, err := repo.Roster(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load roster: %w", err)
	}

	saved := 0
	for _, analysis := range analyzer.AnalyzeBatch(ctx, pending, roster) {
		if err := db.SaveAnalysis(ctx, repo, analysis); err != nil {
			logger.Error("failed to save analysis", "transcript", analysis.TranscriptID, "err", err)
			continue
		}
		saved++
	}
	return saved, nil
}

// InitCronJobs schedules pending transcript analysis. A run that is still
// going when the next one is due makes the next one skip.
func InitCronJobs(spec string, repo db.Repository, analyzer *processor.Analyzer, batch int) (*cron.Cron, error) {
	logger.Info("Starting cron jobs", "spec", spec, "batch", batch)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{})))

	_, err := c.AddFunc(spec, func() {
		logger.Info("CronJob: pending transcript analysis running")
		n, err := AnalyzePending(context.Background(), repo, analyzer, batch)
		if err != nil {
			logger.Error("CronJob: pending transcript analysis failed", "err", err)
			return
		}
		logger.Info("CronJob: pending transcript analysis finished", "saved", n)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling transcript analysis: %w", err)
	}

	c.Start()
	return c, nil
}
