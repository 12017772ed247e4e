package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
)

const testSecret = "test-secret"

type stubUserRepository struct {
	users map[int]*models.User
}

func (s *stubUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepository) Create(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (s *stubUserRepository) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (s *stubUserRepository) UpsertByNickname(ctx context.Context, user *models.User) error {
	return nil
}
func (s *stubUserRepository) Update(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepository) UpdateClubID(ctx context.Context, exec repositories.SQLExecutor, userID int, clubID *int) error {
	return nil
}
func (s *stubUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	return nil
}
func (s *stubUserRepository) UpdateEloRating(ctx context.Context, exec repositories.SQLExecutor, userID, eloRating int) error {
	return nil
}
func (s *stubUserRepository) AddTotals(ctx context.Context, exec repositories.SQLExecutor, userID, games, wins, points, bonus int) error {
	return nil
}
func (s *stubUserRepository) ListByClub(ctx context.Context, clubID int) ([]models.User, error) {
	return nil, nil
}

func signToken(t *testing.T, userID int, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	repo := &stubUserRepository{users: map[int]*models.User{
		7: {ID: 7, Nickname: "judge", Role: models.RoleJudge},
	}}

	var capturedUser *models.User
	handler := Authenticate(testSecret, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUser = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, 7, time.Now().Add(time.Hour)), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, 7, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signToken(t, 999, time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturedUser = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if capturedUser == nil || capturedUser.ID != 7 {
					t.Errorf("expected user 7 in context, got %+v", capturedUser)
				}
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Authorize(models.RoleAdmin, models.RoleJudge)(next)

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"admin allowed", &models.User{Role: models.RoleAdmin}, http.StatusOK},
		{"judge allowed", &models.User{Role: models.RoleJudge}, http.StatusOK},
		{"player forbidden", &models.User{Role: models.RolePlayer}, http.StatusForbidden},
		{"no user", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				ctx := context.WithValue(req.Context(), userContextKey, tt.user)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
