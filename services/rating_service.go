package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/rating"
	"github.com/mafspace/mafia-backend/repositories"
	"golang.org/x/sync/errgroup"
)

type RatingService interface {
	// GetSeasonRating сворачивает все игры сезона в лидерборд.
	GetSeasonRating(ctx context.Context, seasonID int) (*models.SeasonRating, error)
	// GetTournamentRating сворачивает все игры турнира в лидерборд.
	// Доступен в любом статусе турнира: до завершения отражает текущий ход.
	GetTournamentRating(ctx context.Context, tournamentID int) (*models.TournamentRating, error)
}

type ratingService struct {
	seasonRepo     repositories.SeasonRepository
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
}

func NewRatingService(
	seasonRepo repositories.SeasonRepository,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
) RatingService {
	return &ratingService{
		seasonRepo:     seasonRepo,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
	}
}

func (s *ratingService) GetSeasonRating(ctx context.Context, seasonID int) (*models.SeasonRating, error) {
	var (
		season *models.Season
		games  []*models.Game
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		season, err = s.seasonRepo.GetByID(gCtx, seasonID)
		if err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return ErrSeasonNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.ListBySeason(gCtx, seasonID)
		if err != nil {
			return fmt.Errorf("failed to load season games: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.SeasonRating{
		SeasonID:   season.ID,
		SeasonName: season.Name,
		Players:    rating.BuildStandings(games),
	}, nil
}

func (s *ratingService) GetTournamentRating(ctx context.Context, tournamentID int) (*models.TournamentRating, error) {
	var (
		tournament *models.Tournament
		games      []*models.Game
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load tournament games: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.TournamentRating{
		TournamentID:   tournament.ID,
		TournamentName: tournament.Name,
		Players:        rating.BuildStandings(games),
	}, nil
}
