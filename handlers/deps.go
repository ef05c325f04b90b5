package handlers

import (
	"go-commentary/aggregate"
	"go-commentary/bias"
	"go-commentary/db"
	"go-commentary/nlp"
	"go-commentary/processor"
)

// Deps are shared by every commentary handler.
type Deps struct {
	Repo      db.Repository
	Analyzer  *processor.Analyzer
	Scorer    *bias.Scorer
	Aggregate aggregate.Options

	// Chat is optional; without it narrative requests are ignored.
	Chat      nlp.ChatCompleter
	ChatModel string
}
