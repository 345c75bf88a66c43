package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/openultimate/ratings/internal/adapters/tablestore"
	"github.com/openultimate/ratings/internal/domain/model"
	"github.com/openultimate/ratings/pkg/logger"
)

// loadSettings reads the settings and tournaments tables. Both are optional:
// a missing table, an unknown name or an unparsable value falls back to the
// documented defaults.
func (s *Service) loadSettings(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()

	rows, err := s.store.LoadTable(ctx, "settings")
	switch {
	case err == nil:
		for i, row := range rows {
			if i == 0 || len(row) < 2 {
				continue
			}
			applySetting(&settings, row[0], row[1])
		}
	case !errors.Is(err, tablestore.ErrTableNotFound):
		s.logger.Warn(ctx, "settings table unreadable, using defaults", logger.Error(err))
	}

	rows, err = s.store.LoadTable(ctx, "tournaments")
	switch {
	case err == nil:
		weights := make(map[string]float64)
		for i, row := range rows {
			if i == 0 || len(row) < 2 {
				continue
			}
			w, err := strconv.ParseFloat(row[1], 64)
			if err != nil {
				continue
			}
			weights[row[0]] = w
		}
		settings.TournamentWeights = weights
	case !errors.Is(err, tablestore.ErrTableNotFound):
		s.logger.Warn(ctx, "tournaments table unreadable, using defaults", logger.Error(err))
	}

	return settings
}

func applySetting(settings *model.Settings, name, value string) {
	switch name {
	case model.SettingIgnoreBlowouts:
		settings.IgnoreBlowouts = value
	case model.SettingMinTournaments:
		if v, err := strconv.Atoi(value); err == nil {
			settings.MinTournaments = v
		}
	case model.SettingMinGames:
		if v, err := strconv.Atoi(value); err == nil {
			settings.MinGames = v
		}
	case model.SettingMinInterconnectivity:
		if v, err := strconv.Atoi(value); err == nil {
			settings.MinInterconnectivity = v
		}
	}
}
