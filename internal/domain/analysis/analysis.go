// Package analysis derives per-tournament summaries and the team-pair
// connectivity scores from the normalized game list.
package analysis

import (
	"strings"

	"github.com/openultimate/ratings/internal/domain/model"
	"github.com/openultimate/ratings/internal/domain/normalize"
)

// Connectivity distance values. The approximation caps at distance 3: teams
// only reachable through longer chains do not contribute to the score.
const (
	DistanceDirect         = 1
	DistanceSharedOpponent = 2
	DistanceCapped         = 3
)

// SummarizeTournaments groups games by tournament. Qualified teams are those
// without the tournament's guest suffix; total counts include guests.
func SummarizeTournaments(games []model.Game) []model.TournamentSummary {
	var order []string
	byTournament := make(map[string][]model.Game)
	for _, g := range games {
		if _, ok := byTournament[g.Tournament]; !ok {
			order = append(order, g.Tournament)
		}
		byTournament[g.Tournament] = append(byTournament[g.Tournament], g)
	}

	summaries := make([]model.TournamentSummary, 0, len(order))
	for _, name := range order {
		group := byTournament[name]
		teams := normalize.TeamsInGames(group)

		qualified := 0
		for _, t := range teams {
			if !strings.HasSuffix(t, normalize.GuestSeparator+name) {
				qualified++
			}
		}

		s := model.TournamentSummary{
			Tournament:         name,
			FirstDate:          group[0].Date,
			LastDate:           group[0].Date,
			QualifiedTeamCount: qualified,
			TotalTeamCount:     len(teams),
			GameCount:          len(group),
		}
		for _, g := range group[1:] {
			if g.Date.Before(s.FirstDate) {
				s.FirstDate = g.Date
			}
			if g.Date.After(s.LastDate) {
				s.LastDate = g.Date
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// BuildAdjacency counts head-to-head games per unordered team pair.
func BuildAdjacency(games []model.Game, teams []string) model.Adjacency {
	adj := model.NewAdjacency(teams)
	for _, g := range games {
		adj.Add(g.Team1, g.Team2)
	}
	return adj
}

// Distance approximates the graph distance between two teams: 1 for a direct
// game, 2 for a shared opponent, else 3. Longer chains are never explored.
func Distance(team, other string, teams []string, adj model.Adjacency) int {
	if adj.Count(team, other) > 0 {
		return DistanceDirect
	}
	for _, u := range teams {
		if u == team || u == other {
			continue
		}
		if adj.Count(team, u) > 0 && adj.Count(other, u) > 0 {
			return DistanceSharedOpponent
		}
	}
	return DistanceCapped
}

// Connectivity sums, over all other teams, the distances that are exactly 1
// or 2. Distance-3 teams do not contribute: the score rewards direct
// opponents and shared-opponent relationships only.
func Connectivity(team string, teams []string, adj model.Adjacency) int {
	total := 0
	for _, other := range teams {
		if other == team {
			continue
		}
		if d := Distance(team, other, teams, adj); d <= DistanceSharedOpponent {
			total += d
		}
	}
	return total
}
