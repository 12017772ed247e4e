package scheduling

import (
	"context"

	"github.com/mafspace/mafia-backend/models"
)

// GenerateScheduleParams описывает одну генерацию рассадки турнира.
type GenerateScheduleParams struct {
	TablesCount    int
	RoundsCount    int
	PlayersPerGame int
	// TotalGames передаётся вызывающим как подсказка и не влияет на генерацию.
	TotalGames int
	Players    []*models.User
}

// TableAssignment — один стол одного тура. Порядок в Seats кодирует номер места.
type TableAssignment struct {
	Round int
	Table int
	Seats []*models.User
}

// Schedule — полная рассадка турнира, построенная в памяти до какой-либо записи в БД.
type Schedule struct {
	Assignments []*TableAssignment
}

type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, params GenerateScheduleParams) (*Schedule, error)

	GetName() string
}
