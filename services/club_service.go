package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
	"github.com/mafspace/mafia-backend/storage"
)

type ClubService interface {
	CreateClub(ctx context.Context, currentUser *models.User, club *models.Club) error
	GetClubByID(ctx context.Context, id int) (*models.Club, error)
	// RequestToJoin создаёт заявку PENDING от текущего пользователя.
	RequestToJoin(ctx context.Context, currentUser *models.User, clubID int) (*models.ClubRequest, error)
	// ApproveRequest одобряет заявку и привязывает пользователя к клубу
	// одной транзакцией.
	ApproveRequest(ctx context.Context, currentUser *models.User, requestID int) error
	RejectRequest(ctx context.Context, currentUser *models.User, requestID int) error
	ListRequests(ctx context.Context, currentUser *models.User, clubID int, status *models.ClubRequestStatus) ([]models.ClubRequest, error)
	UploadLogo(ctx context.Context, currentUser *models.User, clubID int, contentType string, reader io.Reader) (*models.Club, error)
}

type clubService struct {
	db       *sql.DB
	clubRepo repositories.ClubRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewClubService(
	db *sql.DB,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) ClubService {
	return &clubService{
		db:       db,
		clubRepo: clubRepo,
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *clubService) CreateClub(ctx context.Context, currentUser *models.User, club *models.Club) error {
	if currentUser == nil {
		return ErrAuthenticationFailed
	}
	if club.Name == "" {
		return fmt.Errorf("%w: club name is required", ErrValidationFailed)
	}

	club.OwnerID = currentUser.ID
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return ErrClubNameConflict
		}
		return fmt.Errorf("failed to create club: %w", err)
	}

	// Владелец сразу состоит в собственном клубе.
	if err := s.userRepo.UpdateClubID(ctx, s.db, currentUser.ID, &club.ID); err != nil {
		return fmt.Errorf("failed to attach owner to club %d: %w", club.ID, err)
	}
	currentUser.ClubID = &club.ID
	return nil
}

func (s *clubService) GetClubByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	members, err := s.userRepo.ListByClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load club members: %w", err)
	}
	club.Members = members

	if club.LogoKey != nil && *club.LogoKey != "" {
		url := s.uploader.GetPublicURL(*club.LogoKey)
		club.LogoURL = &url
	}
	return club, nil
}

func (s *clubService) RequestToJoin(ctx context.Context, currentUser *models.User, clubID int) (*models.ClubRequest, error) {
	if currentUser == nil {
		return nil, ErrAuthenticationFailed
	}
	if currentUser.ClubID != nil {
		return nil, ErrUserAlreadyInClub
	}

	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	request := &models.ClubRequest{
		ClubID: clubID,
		UserID: currentUser.ID,
		Status: models.ClubRequestPending,
	}
	if err := s.clubRepo.CreateRequest(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrClubRequestConflict) {
			return nil, ErrRequestConflict
		}
		return nil, fmt.Errorf("failed to create club request: %w", err)
	}
	return request, nil
}

func (s *clubService) ApproveRequest(ctx context.Context, currentUser *models.User, requestID int) error {
	request, club, err := s.loadRequestForReview(ctx, currentUser, requestID)
	if err != nil {
		return err
	}

	applicant, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if applicant.ClubID != nil {
		return ErrUserAlreadyInClub
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("approve request %d: rollback failed: %v", requestID, rbErr)
			}
		}
	}()

	if txErr = s.clubRepo.UpdateRequestStatus(ctx, tx, requestID, models.ClubRequestApproved); txErr != nil {
		return txErr
	}
	if txErr = s.userRepo.UpdateClubID(ctx, tx, request.UserID, &club.ID); txErr != nil {
		return txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit request approval: %w", txErr)
	}
	return nil
}

func (s *clubService) RejectRequest(ctx context.Context, currentUser *models.User, requestID int) error {
	if _, _, err := s.loadRequestForReview(ctx, currentUser, requestID); err != nil {
		return err
	}
	if err := s.clubRepo.UpdateRequestStatus(ctx, s.db, requestID, models.ClubRequestRejected); err != nil {
		if errors.Is(err, repositories.ErrClubRequestNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	return nil
}

func (s *clubService) ListRequests(ctx context.Context, currentUser *models.User, clubID int, status *models.ClubRequestStatus) ([]models.ClubRequest, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if !canReviewClubRequests(currentUser, club) {
		return nil, ErrForbiddenOperation
	}
	return s.clubRepo.ListRequestsByClub(ctx, clubID, status)
}

func (s *clubService) UploadLogo(ctx context.Context, currentUser *models.User, clubID int, contentType string, reader io.Reader) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if !canReviewClubRequests(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidationFailed, contentType)
	}

	key := storage.LogoKey(clubID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}

	oldKey := club.LogoKey
	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			log.Printf("logo upload: failed to clean up object %s: %v", key, delErr)
		}
		return nil, err
	}

	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			log.Printf("logo upload: failed to delete previous logo %s: %v", *oldKey, delErr)
		}
	}

	club.LogoKey = &key
	url := s.uploader.GetPublicURL(key)
	club.LogoURL = &url
	return club, nil
}

// loadRequestForReview грузит заявку и её клуб, проверяя право текущего
// пользователя распоряжаться заявками этого клуба.
func (s *clubService) loadRequestForReview(ctx context.Context, currentUser *models.User, requestID int) (*models.ClubRequest, *models.Club, error) {
	request, err := s.clubRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubRequestNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}
	if request.Status != models.ClubRequestPending {
		return nil, nil, ErrRequestConflict
	}

	club, err := s.clubRepo.GetByID(ctx, request.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, nil, ErrClubNotFound
		}
		return nil, nil, err
	}
	if !canReviewClubRequests(currentUser, club) {
		return nil, nil, ErrForbiddenOperation
	}
	return request, club, nil
}

func canReviewClubRequests(user *models.User, club *models.Club) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || club.OwnerID == user.ID
}
