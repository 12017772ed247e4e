package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
)

type SeasonService interface {
	CreateSeason(ctx context.Context, currentUser *models.User, season *models.Season) error
	GetSeasonByID(ctx context.Context, id int) (*models.Season, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Season, error)
	// CloseSeason фиксирует окончание сезона. Закрытый сезон больше
	// не принимает игры.
	CloseSeason(ctx context.Context, currentUser *models.User, id int) error
}

type seasonService struct {
	seasonRepo repositories.SeasonRepository
	clubRepo   repositories.ClubRepository
}

func NewSeasonService(seasonRepo repositories.SeasonRepository, clubRepo repositories.ClubRepository) SeasonService {
	return &seasonService{seasonRepo: seasonRepo, clubRepo: clubRepo}
}

func (s *seasonService) CreateSeason(ctx context.Context, currentUser *models.User, season *models.Season) error {
	club, err := s.clubRepo.GetByID(ctx, season.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return err
	}
	if !canManageClubGames(currentUser, club) {
		return ErrForbiddenOperation
	}

	if season.Name == "" {
		return fmt.Errorf("%w: season name is required", ErrValidationFailed)
	}
	if season.StartedAt.IsZero() {
		season.StartedAt = time.Now()
	}

	if err := s.seasonRepo.Create(ctx, season); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSeasonClubInvalid):
			return ErrClubNotFound
		case errors.Is(err, repositories.ErrSeasonRefereeInvalid):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

func (s *seasonService) GetSeasonByID(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (s *seasonService) ListByClub(ctx context.Context, clubID int) ([]models.Season, error) {
	return s.seasonRepo.ListByClub(ctx, clubID)
}

func (s *seasonService) CloseSeason(ctx context.Context, currentUser *models.User, id int) error {
	season, err := s.GetSeasonByID(ctx, id)
	if err != nil {
		return err
	}
	if season.EndedAt != nil {
		return ErrSeasonAlreadyClosed
	}

	club, err := s.clubRepo.GetByID(ctx, season.ClubID)
	if err != nil {
		return err
	}
	if !canManageClubGames(currentUser, club) {
		return ErrForbiddenOperation
	}

	if err := s.seasonRepo.Close(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return ErrSeasonAlreadyClosed
		}
		return err
	}
	return nil
}
