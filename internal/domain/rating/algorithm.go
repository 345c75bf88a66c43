// Package rating defines the pluggable rating algorithm contract and the
// USAU implementation. An algorithm is three stages applied in sequence:
// per-game rank difference, game weighting, and the iterative rank fit.
// Variants differ only in the stages; the orchestration is fixed.
package rating

import (
	"context"

	"github.com/openultimate/ratings/internal/domain/model"
)

// Algorithm is the capability set a rating variant must provide. Stages
// receive and return game slices; implementations must not mutate their
// input beyond the slice they were handed (GetRatings passes a copy).
type Algorithm interface {
	// RankDiffs annotates each game with the rating gap its score implies.
	RankDiffs(games []model.Game) []model.Game

	// GameWeights annotates each game with its weight in the fit.
	GameWeights(games []model.Game) []model.Game

	// RankFit converges per-team ratings from the annotated games.
	RankFit(ctx context.Context, teams []string, games []model.Game, summaries []model.TeamSummary, ignoreBlowouts bool) []model.TeamRating
}

// GetRatings runs the three stages over a prepared dataset. The dataset is
// borrowed read-only: games are copied before the stages run.
func GetRatings(ctx context.Context, algo Algorithm, data *model.PreparedData, cfg model.Settings) []model.TeamRating {
	games := make([]model.Game, len(data.Games))
	copy(games, data.Games)

	games = algo.RankDiffs(games)
	games = algo.GameWeights(games)

	return algo.RankFit(ctx, data.Teams, games, data.TeamSummaries, cfg.BlowoutsIgnored())
}
