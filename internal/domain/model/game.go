// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Game is one pairwise result after normalization. Team1 is always the
// non-losing side and Score1 >= Score2. RankDiff and Weight are filled in by
// the rating algorithm stages and are nil until then.
type Game struct {
	Tournament string
	Date       time.Time
	Team1      string
	Team2      string
	Score1     int
	Score2     int
	RankDiff   *float64
	Weight     *float64
}

// TeamAtTournament is a membership fact: team was rostered at tournament.
// Games by teams without a membership row are kept but the team is tagged as
// a guest for that tournament.
type TeamAtTournament struct {
	Team       string
	Tournament string
}

// TournamentSummary is derived per tournament on every data-prep run.
type TournamentSummary struct {
	Tournament         string
	FirstDate          time.Time
	LastDate           time.Time
	QualifiedTeamCount int
	TotalTeamCount     int
	GameCount          int
}

// TeamSummary is derived per team appearing in any normalized game.
// Eligible is policy output and is never hand-edited.
type TeamSummary struct {
	Team              string
	Tournaments       int
	Games             int
	Wins              int
	Losses            int
	WinRatio          float64
	OpponentWinRatio  float64
	GoalsFor          int
	GoalsAgainst      int
	AvgPointDiff      float64
	Interconnectivity int
	Eligible          int
}

// TeamRating is the only externally visible output entity.
type TeamRating struct {
	Team   string  `json:"team"`
	Rating float64 `json:"rating"`
}

type teamRatingJSON struct {
	Team   string `json:"team"`
	Rating string `json:"rating"`
}

// MarshalJSON writes the rating in the same fixed-point form as the
// persisted ratings table. The solver's update rule can overflow a series
// to ±Inf, which has no JSON number representation, so the rating travels
// as a string.
func (r TeamRating) MarshalJSON() ([]byte, error) {
	return json.Marshal(teamRatingJSON{
		Team:   r.Team,
		Rating: strconv.FormatFloat(r.Rating, 'f', 2, 64),
	})
}

// UnmarshalJSON parses the string form produced by MarshalJSON.
func (r *TeamRating) UnmarshalJSON(data []byte) error {
	var raw teamRatingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rating, err := strconv.ParseFloat(raw.Rating, 64)
	if err != nil {
		return fmt.Errorf("parse rating for %s: %w", raw.Team, err)
	}
	r.Team = raw.Team
	r.Rating = rating
	return nil
}

// PreparedData is the validated, annotated dataset handed to the rating
// algorithm. Produced once per division per run; read-only thereafter.
type PreparedData struct {
	Games               []Game
	Teams               []string
	TeamsAtTournaments  []TeamAtTournament
	TeamsInGames        []string
	TournamentSummaries []TournamentSummary
	Adjacency           Adjacency
	TeamSummaries       []TeamSummary
}

// Settings is the algorithm configuration supplied whole by the caller and
// treated as immutable for a single run.
type Settings struct {
	// IgnoreBlowouts is the raw setting value; blowout handling is enabled
	// only when it equals the literal string "TRUE".
	IgnoreBlowouts       string
	MinTournaments       int
	MinGames             int
	MinInterconnectivity int
	// TournamentWeights is loaded from the tournaments table but not yet
	// consumed by the rating math.
	TournamentWeights map[string]float64
}

// Setting value and defaults for the algorithm settings table.
const (
	SettingIgnoreBlowouts       = "ignore_blowouts"
	SettingMinTournaments       = "min_tournaments"
	SettingMinGames             = "min_games"
	SettingMinInterconnectivity = "min_interconnectivity"

	DefaultMinTournaments       = 1
	DefaultMinGames             = 5
	DefaultMinInterconnectivity = 10
)

// DefaultSettings returns Settings with the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		MinTournaments:       DefaultMinTournaments,
		MinGames:             DefaultMinGames,
		MinInterconnectivity: DefaultMinInterconnectivity,
		TournamentWeights:    map[string]float64{},
	}
}

// BlowoutsIgnored reports whether blowout handling is enabled.
func (s Settings) BlowoutsIgnored() bool {
	return s.IgnoreBlowouts == "TRUE"
}
