package models

import "testing"

func TestCombinedPoints(t *testing.T) {
	tests := []struct {
		name string
		gp   GamePlayer
		want int
	}{
		{"all zero", GamePlayer{}, 0},
		{"points only", GamePlayer{Points: 3}, 3},
		{"full formula", GamePlayer{Points: 3, LH: 1, CI: 2, BonusPoints: 1, PenaltyPoints: 2}, 5},
		{"penalty can go negative", GamePlayer{Points: 1, PenaltyPoints: 3}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gp.CombinedPoints(); got != tt.want {
				t.Errorf("CombinedPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}
