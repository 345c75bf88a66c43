// Package normalize turns raw game rows into the canonical game list: alias
// resolution, guest tagging, score validation, winner-first ordering and a
// deterministic sort.
package normalize

import (
	"sort"
	"time"

	"github.com/openultimate/ratings/internal/domain/alias"
	"github.com/openultimate/ratings/internal/domain/model"
)

// GuestSeparator joins a guest team name to the tournament it crashed.
const GuestSeparator = " @ "

// RawGame is a game row as loaded from the games table, before validation.
// Scores are nil when the source cell was empty or unparsable.
type RawGame struct {
	Tournament string
	Date       time.Time
	Team1      string
	Team2      string
	Score1     *int
	Score2     *int
}

// Stats counts what normalization did, for diagnostics and metrics. Dropped
// rows are a data-quality tolerance, not an error.
type Stats struct {
	Input               int
	Output              int
	DroppedMissingScore int
	DroppedDraws        int
	DroppedForfeits     int
	GuestsTagged        int
}

// Normalizer applies the normalization pipeline. The zero value keeps draws;
// use options to change policy.
type Normalizer struct {
	dropDraws bool
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves aliases, tags unrostered participants, filters invalid
// rows and orders the result. Every step is total over the list: malformed
// rows are silently dropped, never errored.
func (n *Normalizer) Normalize(raw []RawGame, table *alias.Table, rosters []model.TeamAtTournament) ([]model.Game, Stats) {
	stats := Stats{Input: len(raw)}

	// Roster membership per tournament, with roster names alias-resolved so
	// they compare against resolved game names.
	rostered := make(map[string]map[string]bool)
	for _, r := range rosters {
		m, ok := rostered[r.Tournament]
		if !ok {
			m = make(map[string]bool)
			rostered[r.Tournament] = m
		}
		m[table.Resolve(r.Team)] = true
	}

	games := make([]model.Game, 0, len(raw))
	for _, g := range raw {
		team1 := table.Resolve(g.Team1)
		team2 := table.Resolve(g.Team2)

		// Guest tagging keeps the game in the graph but lets the tournament
		// analyzer exclude the team from qualified counts.
		if m := rostered[g.Tournament]; !m[team1] {
			team1 += GuestSeparator + g.Tournament
			stats.GuestsTagged++
		}
		if m := rostered[g.Tournament]; !m[team2] {
			team2 += GuestSeparator + g.Tournament
			stats.GuestsTagged++
		}

		if g.Score1 == nil || g.Score2 == nil {
			stats.DroppedMissingScore++
			continue
		}
		s1, s2 := *g.Score1, *g.Score2

		if n.dropDraws && s1 == s2 {
			stats.DroppedDraws++
			continue
		}

		// Winner first.
		if s2 > s1 {
			team1, team2 = team2, team1
			s1, s2 = s2, s1
		}

		// 1-0 results are forfeits, not real games.
		if s1 == 1 && s2 == 0 {
			stats.DroppedForfeits++
			continue
		}

		games = append(games, model.Game{
			Tournament: g.Tournament,
			Date:       g.Date,
			Team1:      team1,
			Team2:      team2,
			Score1:     s1,
			Score2:     s2,
		})
	}

	// Deterministic ordering for reproducible diagnostics downstream.
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Tournament != b.Tournament {
			return a.Tournament < b.Tournament
		}
		if a.Team1 != b.Team1 {
			return a.Team1 < b.Team1
		}
		return a.Team2 < b.Team2
	})

	stats.Output = len(games)
	return games, stats
}

// TeamsInGames returns the distinct team names over the normalized list, in
// first-appearance order.
func TeamsInGames(games []model.Game) []string {
	seen := make(map[string]bool, len(games)*2)
	teams := make([]string, 0, len(games)*2)
	for _, g := range games {
		if !seen[g.Team1] {
			seen[g.Team1] = true
			teams = append(teams, g.Team1)
		}
		if !seen[g.Team2] {
			seen[g.Team2] = true
			teams = append(teams, g.Team2)
		}
	}
	return teams
}
