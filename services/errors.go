package services

import "errors"

// Общие ошибки сервисного слоя, маппятся на HTTP в handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация и бизнес-правила
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInsufficientPlayers  = errors.New("not enough players for requested tables")
	ErrSeatingInfeasible    = errors.New("no conflict-free seating exists for requested configuration")
	ErrGameScopeRequired    = errors.New("game must reference either a season or a tournament")
	ErrGameScopeAmbiguous   = errors.New("game cannot reference both a season and a tournament")
	ErrStarsRequired        = errors.New("elo tournament requires stars in range 1..6")
	ErrStarsOutOfRange      = errors.New("tournament stars must be between 1 and 6")

	// Конфликты
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrClubNameConflict     = errors.New("club name is already in use")
	ErrRequestConflict      = errors.New("membership request already submitted")
	ErrUserAlreadyInClub    = errors.New("user already belongs to a club")
	// Турнир уже завершён/отменён — повторное завершение запрещено.
	ErrTournamentStatusConflict = errors.New("tournament status does not allow this transition")
	ErrSeasonAlreadyClosed      = errors.New("season is already closed")

	// Аутентификация и авторизация
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Специфичные not-found (уточняют контекст поверх ErrNotFound)
	ErrUserNotFound       = errors.New("user not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrSeasonNotFound     = errors.New("season not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrRequestNotFound    = errors.New("membership request not found")
)
