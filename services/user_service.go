package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
	"github.com/mafspace/mafia-backend/storage"
	"golang.org/x/sync/errgroup"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UserService interface {
	// GetProfile возвращает пользователя со статистикой по ролям и ссылкой
	// на аватар.
	GetProfile(ctx context.Context, id int) (*models.User, error)
	GetByNickname(ctx context.Context, nickname string) (*models.User, error)
	// UploadAvatar загружает новый аватар и удаляет предыдущий объект.
	UploadAvatar(ctx context.Context, currentUser *models.User, userID int, contentType string, reader io.Reader) (*models.User, error)
}

type userService struct {
	userRepo      repositories.UserRepository
	roleStatsRepo repositories.RoleStatsRepository
	uploader      storage.FileUploader
}

func NewUserService(
	userRepo repositories.UserRepository,
	roleStatsRepo repositories.RoleStatsRepository,
	uploader storage.FileUploader,
) UserService {
	return &userService{
		userRepo:      userRepo,
		roleStatsRepo: roleStatsRepo,
		uploader:      uploader,
	}
}

func (s *userService) GetProfile(ctx context.Context, id int) (*models.User, error) {
	var (
		user  *models.User
		stats []models.RoleStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = s.roleStatsRepo.ListByUser(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load role stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	user.RoleStats = stats
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	user, err := s.userRepo.GetByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, currentUser *models.User, userID int, contentType string, reader io.Reader) (*models.User, error) {
	if currentUser == nil || (currentUser.ID != userID && currentUser.Role != models.RoleAdmin) {
		return nil, ErrForbiddenOperation
	}

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidationFailed, contentType)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := storage.AvatarKey(userID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		// Откатываем загрузку, чтобы не копить осиротевшие объекты.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			log.Printf("avatar upload: failed to clean up object %s: %v", key, delErr)
		}
		return nil, err
	}

	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			log.Printf("avatar upload: failed to delete previous avatar %s: %v", *oldKey, delErr)
		}
	}

	user.AvatarKey = &key
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user.AvatarKey == nil || *user.AvatarKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	user.AvatarURL = &url
}
