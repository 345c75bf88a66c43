// Package summary combines game counts, tournament counts and connectivity
// into per-team descriptive statistics and a binary eligibility verdict.
package summary

import (
	"github.com/openultimate/ratings/internal/domain/analysis"
	"github.com/openultimate/ratings/internal/domain/model"
)

// Summarize builds one TeamSummary per team. Eligibility is a hard gate:
// a team is eligible iff it meets all three minimums.
func Summarize(games []model.Game, teams []string, adj model.Adjacency, minTournaments, minGames, minInterconnectivity int) []model.TeamSummary {
	summaries := make([]model.TeamSummary, 0, len(teams))
	for _, team := range teams {
		s := model.TeamSummary{Team: team}

		tournaments := make(map[string]bool)
		for _, g := range games {
			if g.Team1 != team && g.Team2 != team {
				continue
			}
			tournaments[g.Tournament] = true
			s.Games++
			if g.Team1 == team {
				s.GoalsFor += g.Score1
				s.GoalsAgainst += g.Score2
				if g.Score1 > g.Score2 {
					s.Wins++
				}
			} else {
				s.GoalsFor += g.Score2
				s.GoalsAgainst += g.Score1
				if g.Score2 < g.Score1 {
					s.Losses++
				}
			}
		}
		s.Tournaments = len(tournaments)

		if s.Games > 0 {
			s.AvgPointDiff = float64(s.GoalsFor-s.GoalsAgainst) / float64(s.Games)
			s.WinRatio = float64(s.Wins) / float64(s.Games)
			// Named-but-inverted quantity: the loss share, not opponent
			// strength. Kept as recorded.
			s.OpponentWinRatio = float64(s.Losses) / float64(s.Games)
		}

		s.Interconnectivity = analysis.Connectivity(team, teams, adj)

		if s.Tournaments >= minTournaments && s.Games >= minGames && s.Interconnectivity >= minInterconnectivity {
			s.Eligible = 1
		}

		summaries = append(summaries, s)
	}
	return summaries
}
