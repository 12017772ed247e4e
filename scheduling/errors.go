package scheduling

import "fmt"

// RosterSizeError возвращается до начала поиска, если игроков меньше,
// чем tablesCount × playersPerGame. Полностью устраняется изменением параметров.
type RosterSizeError struct {
	Needed   int
	Provided int
}

func (e *RosterSizeError) Error() string {
	return fmt.Sprintf("not enough players: need at least %d, got %d", e.Needed, e.Provided)
}

// ParamError возвращается при выходе параметров генерации за допустимые пределы.
type ParamError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %d (allowed range %d..%d)", e.Field, e.Value, e.Min, e.Max)
}

// InfeasibilityError возвращается, когда для какого-то стола не существует
// рассадки без повторов мест в пределах бюджета поиска. Генерация целиком
// отбрасывается, частичное расписание наружу не отдаётся.
type InfeasibilityError struct {
	Round int
	Table int
	// Место, на котором поиск окончательно упёрся (0-based).
	Seat     int
	Attempts int
}

func (e *InfeasibilityError) Error() string {
	return fmt.Sprintf(
		"no conflict-free seating for round %d, table %d (stuck at seat %d after %d attempts): reduce rounds/tables or add players",
		e.Round, e.Table, e.Seat, e.Attempts,
	)
}
