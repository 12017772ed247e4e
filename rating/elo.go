package rating

import "math"

const (
	MinStars = 1
	MaxStars = 6
)

// starBaseDelta — базовая цена турнира по звёздности: столько очков ELO
// получает первое место и столько же теряет последнее.
var starBaseDelta = map[int]int{
	1: 10,
	2: 20,
	3: 30,
	4: 40,
	5: 50,
	6: 60,
}

// PlacementDelta возвращает изменение ELO за итоговое место place (с 1)
// среди participants участников турнира звёздности stars. Дельта линейно
// спадает от +база за первое место до −база за последнее; середина таблицы
// остаётся около нуля.
func PlacementDelta(stars, participants, place int) int {
	base, ok := starBaseDelta[stars]
	if !ok || participants < 2 || place < 1 || place > participants {
		return 0
	}

	// place=1 → +base, place=participants → −base.
	spread := float64(participants - 2*place + 1)
	return int(math.Round(float64(base) * spread / float64(participants-1)))
}

// ApplyDelta применяет дельту к рейтингу. Рейтинг не опускается ниже нуля.
func ApplyDelta(elo, delta int) int {
	next := elo + delta
	if next < 0 {
		return 0
	}
	return next
}
