package models

// PlayerRating — строка лидерборда сезона или турнира.
type PlayerRating struct {
	PlayerID      int     `json:"player_id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	TotalPoints   int     `json:"total_points"`
	GamesPlayed   int     `json:"games_played"`
	AveragePoints float64 `json:"average_points"`
	GamesWon      int     `json:"games_won"`
	WinRate       int     `json:"win_rate"`
	Rank          int     `json:"rank"`
}

type SeasonRating struct {
	SeasonID   int            `json:"season_id"`
	SeasonName string         `json:"season_name"`
	Players    []PlayerRating `json:"players"`
}

type TournamentRating struct {
	TournamentID   int            `json:"tournament_id"`
	TournamentName string         `json:"tournament_name"`
	Players        []PlayerRating `json:"players"`
}
