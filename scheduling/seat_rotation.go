package scheduling

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/mafspace/mafia-backend/models"
)

const (
	MinTablesCount    = 1
	MaxTablesCount    = 10
	MinRoundsCount    = 1
	MaxRoundsCount    = 10
	MinPlayersPerGame = 6
	MaxPlayersPerGame = 12

	// DefaultMaxGamesPerPlayer — потолок игр на одного игрока за турнир.
	DefaultMaxGamesPerPlayer = 6
	// DefaultMaxTableAttempts ограничивает число перезапусков поиска рассадки
	// одного стола, чтобы генерация гарантированно завершалась.
	DefaultMaxTableAttempts = 100
)

// Config задаёт пределы генерации. Нулевые поля заменяются значениями по умолчанию.
type Config struct {
	MaxGamesPerPlayer int
	MaxTableAttempts  int
	// Seed для воспроизводимых тестов; 0 — случайный.
	Seed int64
}

// playerState — состояние одного игрока в пределах одной генерации.
// Живёт только внутри вызова GenerateSchedule, никуда не сохраняется.
type playerState struct {
	games     int
	usedSeats map[int]bool
	rounds    map[int]bool
}

// SeatRotationGenerator строит рассадку так, чтобы игрок не попадал дважды
// на одно и то же место за весь турнир, не играл дважды в одном туре и не
// превышал потолок игр. Внутри одного стола поиск ведётся перебором с
// возвратом по местам; кандидаты упорядочены по числу уже назначенных игр,
// равные — в случайном порядке.
type SeatRotationGenerator struct {
	cfg Config
	rng *rand.Rand
}

func NewSeatRotationGenerator(cfg Config) ScheduleGenerator {
	if cfg.MaxGamesPerPlayer <= 0 {
		cfg.MaxGamesPerPlayer = DefaultMaxGamesPerPlayer
	}
	if cfg.MaxTableAttempts <= 0 {
		cfg.MaxTableAttempts = DefaultMaxTableAttempts
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SeatRotationGenerator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (g *SeatRotationGenerator) GetName() string {
	return "SeatRotation"
}

func (g *SeatRotationGenerator) GenerateSchedule(ctx context.Context, params GenerateScheduleParams) (*Schedule, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	state := make(map[int]*playerState, len(params.Players))
	for _, p := range params.Players {
		state[p.ID] = &playerState{
			usedSeats: make(map[int]bool, params.PlayersPerGame),
			rounds:    make(map[int]bool, params.RoundsCount),
		}
	}

	schedule := &Schedule{
		Assignments: make([]*TableAssignment, 0, params.RoundsCount*params.TablesCount),
	}

	for round := 1; round <= params.RoundsCount; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Пул тура: игроки с запасом по потолку игр, ещё не игравшие в этом туре.
		pool := make([]*models.User, 0, len(params.Players))
		for _, p := range params.Players {
			st := state[p.ID]
			if st.games < g.cfg.MaxGamesPerPlayer && !st.rounds[round] {
				pool = append(pool, p)
			}
		}

		for table := 1; table <= params.TablesCount; table++ {
			seats, err := g.assignTable(pool, state, params.PlayersPerGame, round, table)
			if err != nil {
				return nil, err
			}

			for position, p := range seats {
				st := state[p.ID]
				st.games++
				st.usedSeats[position] = true
				st.rounds[round] = true
				pool = removePlayer(pool, p.ID)
			}

			schedule.Assignments = append(schedule.Assignments, &TableAssignment{
				Round: round,
				Table: table,
				Seats: seats,
			})
		}
	}

	return schedule, nil
}

// assignTable подбирает полный стол. Каждая попытка — полный перебор с
// возвратом по местам 0..playersPerGame-1 при свежем случайном порядке
// равнозначных кандидатов; неудача всех попыток означает инфизибельность.
func (g *SeatRotationGenerator) assignTable(
	pool []*models.User,
	state map[int]*playerState,
	playersPerGame int,
	round, table int,
) ([]*models.User, error) {
	deepestSeat := 0

	for attempt := 0; attempt < g.cfg.MaxTableAttempts; attempt++ {
		shuffled := make([]*models.User, len(pool))
		copy(shuffled, pool)
		g.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		selected := make([]*models.User, 0, playersPerGame)
		usedInTable := make(map[int]bool, playersPerGame)

		if g.searchSeats(shuffled, state, usedInTable, &selected, playersPerGame, 0, &deepestSeat) {
			return selected, nil
		}
	}

	return nil, &InfeasibilityError{
		Round:    round,
		Table:    table,
		Seat:     deepestSeat,
		Attempts: g.cfg.MaxTableAttempts,
	}
}

// searchSeats — перебор с возвратом по позиции position. Возвращает true,
// когда все места заполнены. deepestSeat запоминает самую дальнюю позицию,
// на которой кончились кандидаты, — она попадает в сообщение об ошибке.
func (g *SeatRotationGenerator) searchSeats(
	pool []*models.User,
	state map[int]*playerState,
	usedInTable map[int]bool,
	selected *[]*models.User,
	playersPerGame int,
	position int,
	deepestSeat *int,
) bool {
	if position == playersPerGame {
		return true
	}

	candidates := make([]*models.User, 0, len(pool))
	for _, p := range pool {
		if usedInTable[p.ID] {
			continue
		}
		if state[p.ID].usedSeats[position] {
			continue
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		if position > *deepestSeat {
			*deepestSeat = position
		}
		return false
	}

	// Предпочитаем игроков с минимальным числом игр; сортировка стабильная,
	// поэтому случайный порядок из shuffle сохраняется внутри равных групп.
	sort.SliceStable(candidates, func(i, j int) bool {
		return state[candidates[i].ID].games < state[candidates[j].ID].games
	})

	for _, p := range candidates {
		usedInTable[p.ID] = true
		*selected = append(*selected, p)

		if g.searchSeats(pool, state, usedInTable, selected, playersPerGame, position+1, deepestSeat) {
			return true
		}

		*selected = (*selected)[:len(*selected)-1]
		delete(usedInTable, p.ID)
	}

	if position > *deepestSeat {
		*deepestSeat = position
	}
	return false
}

func validateParams(params GenerateScheduleParams) error {
	if params.TablesCount < MinTablesCount || params.TablesCount > MaxTablesCount {
		return &ParamError{Field: "tables_count", Value: params.TablesCount, Min: MinTablesCount, Max: MaxTablesCount}
	}
	if params.RoundsCount < MinRoundsCount || params.RoundsCount > MaxRoundsCount {
		return &ParamError{Field: "rounds_count", Value: params.RoundsCount, Min: MinRoundsCount, Max: MaxRoundsCount}
	}
	if params.PlayersPerGame < MinPlayersPerGame || params.PlayersPerGame > MaxPlayersPerGame {
		return &ParamError{Field: "players_per_game", Value: params.PlayersPerGame, Min: MinPlayersPerGame, Max: MaxPlayersPerGame}
	}

	needed := params.TablesCount * params.PlayersPerGame
	if len(params.Players) < needed {
		return &RosterSizeError{Needed: needed, Provided: len(params.Players)}
	}
	return nil
}

func removePlayer(pool []*models.User, id int) []*models.User {
	for i, p := range pool {
		if p.ID == id {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
