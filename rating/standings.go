package rating

import (
	"math"
	"sort"

	"github.com/mafspace/mafia-backend/models"
)

// playerTotals — промежуточный аккумулятор одного игрока при свёртке игр.
type playerTotals struct {
	player      *models.User
	totalPoints int
	gamesPlayed int
	gamesWon    int
}

// BuildStandings сворачивает игры в лидерборд. Суммарные очки игрока за игру:
// points + lh + ci + bonus − penalty. Победа засчитывается по таблице
// победных ролей. Сортировка по очкам по убыванию, стабильная: при равенстве
// очков сохраняется порядок первого появления игрока. Rank — позиция, с 1.
//
// Функция чистая: повторная свёртка того же набора игр даёт идентичный результат.
func BuildStandings(games []*models.Game) []models.PlayerRating {
	totals := make(map[int]*playerTotals)
	order := make([]int, 0)

	for _, game := range games {
		for i := range game.Players {
			gp := &game.Players[i]

			t, ok := totals[gp.PlayerID]
			if !ok {
				t = &playerTotals{player: gp.Player}
				totals[gp.PlayerID] = t
				order = append(order, gp.PlayerID)
			}

			t.totalPoints += gp.CombinedPoints()
			t.gamesPlayed++

			if game.Result != nil && IsWinner(gp.Role, *game.Result) {
				t.gamesWon++
			}
		}
	}

	standings := make([]models.PlayerRating, 0, len(order))
	for _, playerID := range order {
		t := totals[playerID]

		entry := models.PlayerRating{
			PlayerID:    playerID,
			TotalPoints: t.totalPoints,
			GamesPlayed: t.gamesPlayed,
			GamesWon:    t.gamesWon,
		}
		if t.player != nil {
			entry.Email = t.player.Email
			entry.Name = t.player.Nickname
			if entry.Name == "" {
				entry.Name = t.player.Email
			}
		}
		if t.gamesPlayed > 0 {
			entry.AveragePoints = math.Round(float64(t.totalPoints)/float64(t.gamesPlayed)*100) / 100
			entry.WinRate = int(math.Round(float64(t.gamesWon) / float64(t.gamesPlayed) * 100))
		}
		standings = append(standings, entry)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalPoints > standings[j].TotalPoints
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings
}

// RoleOutcomes собирает по каждому игроку статистику сыгранных ролей и побед —
// для накопительной статистики профиля при завершении турнира.
func RoleOutcomes(games []*models.Game) map[int]map[models.PlayerRole]models.RoleStats {
	outcomes := make(map[int]map[models.PlayerRole]models.RoleStats)

	for _, game := range games {
		for i := range game.Players {
			gp := &game.Players[i]

			byRole, ok := outcomes[gp.PlayerID]
			if !ok {
				byRole = make(map[models.PlayerRole]models.RoleStats)
				outcomes[gp.PlayerID] = byRole
			}

			st := byRole[gp.Role]
			st.UserID = gp.PlayerID
			st.Role = gp.Role
			st.GamesPlayed++
			if game.Result != nil && IsWinner(gp.Role, *game.Result) {
				st.GamesWon++
			}
			byRole[gp.Role] = st
		}
	}

	return outcomes
}
