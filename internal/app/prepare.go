package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openultimate/ratings/internal/domain/alias"
	"github.com/openultimate/ratings/internal/domain/analysis"
	"github.com/openultimate/ratings/internal/domain/model"
	"github.com/openultimate/ratings/internal/domain/normalize"
	"github.com/openultimate/ratings/internal/domain/summary"
	"github.com/openultimate/ratings/pkg/logger"
	"github.com/openultimate/ratings/pkg/metrics"
)

// dateFormat is the wire format for game dates in the games table.
const dateFormat = "2006-01-02"

// prepare loads the division's tables and runs the full data-prep pipeline:
// alias resolution, normalization, tournament and connectivity analysis, and
// per-team summaries. A missing input table fails the run whole; malformed
// rows inside a table are dropped silently.
func (s *Service) prepare(ctx context.Context, division string, settings model.Settings) (*model.PreparedData, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPrepareDuration(time.Since(start).Seconds())
	}()

	gameRows, err := s.store.LoadTable(ctx, "games")
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	teamRows, err := s.store.LoadTable(ctx, "teams-"+division)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	rosterRows, err := s.store.LoadTable(ctx, "teams_at_tournaments-"+division)
	if err != nil {
		return nil, fmt.Errorf("load teams_at_tournaments: %w", err)
	}

	raw := parseGames(gameRows, division)
	metrics.RecordGamesLoaded(len(raw))

	table := alias.NewTable(dropHeader(teamRows))
	rosters := parseRosters(rosterRows)

	opts := []normalize.Option{}
	if s.dropDraws {
		opts = append(opts, normalize.WithDropDraws())
	}
	games, stats := normalize.New(opts...).Normalize(raw, table, rosters)

	metrics.RecordGamesNormalized(stats.Output)
	metrics.RecordGamesDropped("missing_score", stats.DroppedMissingScore)
	metrics.RecordGamesDropped("draw", stats.DroppedDraws)
	metrics.RecordGamesDropped("forfeit", stats.DroppedForfeits)
	metrics.RecordGuestsTagged(stats.GuestsTagged)

	teams := table.Canonicals()
	// Summaries and connectivity cover every participant in the game list,
	// guests included; the rating solver works from the roster list alone.
	teamsInGames := normalize.TeamsInGames(games)
	adj := analysis.BuildAdjacency(games, teamsInGames)
	summaries := summary.Summarize(games, teamsInGames, adj,
		settings.MinTournaments, settings.MinGames, settings.MinInterconnectivity)

	eligible := 0
	for _, ts := range summaries {
		if ts.Eligible == 1 {
			eligible++
		}
	}
	metrics.UpdateTeamsSummarized(len(summaries))
	metrics.UpdateTeamsEligible(eligible)

	s.logger.Info(ctx, "dataset prepared",
		logger.String("division", division),
		logger.Int("games_in", stats.Input),
		logger.Int("games_out", stats.Output),
		logger.Int("teams", len(teams)),
		logger.Int("eligible", eligible),
	)

	return &model.PreparedData{
		Games:               games,
		Teams:               teams,
		TeamsAtTournaments:  rosters,
		TeamsInGames:        teamsInGames,
		TournamentSummaries: analysis.SummarizeTournaments(games),
		Adjacency:           adj,
		TeamSummaries:       summaries,
	}, nil
}

// parseGames converts games table rows into raw games for the division.
// The header row and rows for other divisions are skipped; unparsable scores
// become nil and are dropped later by the normalizer.
func parseGames(rows [][]string, division string) []normalize.RawGame {
	raw := make([]normalize.RawGame, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 7 {
			continue
		}
		if row[6] != division {
			continue
		}
		date, _ := time.Parse(dateFormat, row[1])
		raw = append(raw, normalize.RawGame{
			Tournament: row[0],
			Date:       date,
			Team1:      row[2],
			Team2:      row[3],
			Score1:     parseScore(row[4]),
			Score2:     parseScore(row[5]),
		})
	}
	return raw
}

// parseRosters converts teams_at_tournaments rows into membership facts.
func parseRosters(rows [][]string) []model.TeamAtTournament {
	rosters := make([]model.TeamAtTournament, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		rosters = append(rosters, model.TeamAtTournament{
			Team:       row[0],
			Tournament: row[1],
		})
	}
	return rosters
}

func parseScore(cell string) *int {
	v, err := strconv.Atoi(cell)
	if err != nil {
		return nil
	}
	return &v
}

func dropHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	return rows[1:]
}
