package rating

import "testing"

func TestPlacementDelta_Endpoints(t *testing.T) {
	for stars := MinStars; stars <= MaxStars; stars++ {
		base := starBaseDelta[stars]
		participants := 10

		if got := PlacementDelta(stars, participants, 1); got != base {
			t.Errorf("stars %d: first place delta %d, want +%d", stars, got, base)
		}
		if got := PlacementDelta(stars, participants, participants); got != -base {
			t.Errorf("stars %d: last place delta %d, want -%d", stars, got, base)
		}
	}
}

func TestPlacementDelta_MonotonicInPlace(t *testing.T) {
	participants := 12
	prev := PlacementDelta(4, participants, 1)
	for place := 2; place <= participants; place++ {
		delta := PlacementDelta(4, participants, place)
		if delta > prev {
			t.Fatalf("delta increased from place %d to %d: %d > %d", place-1, place, delta, prev)
		}
		prev = delta
	}
}

func TestPlacementDelta_MiddleNearZero(t *testing.T) {
	// Нечётное число участников: середина таблицы получает ровно ноль.
	if got := PlacementDelta(6, 11, 6); got != 0 {
		t.Errorf("middle place delta %d, want 0", got)
	}
}

func TestPlacementDelta_InvalidInput(t *testing.T) {
	tests := []struct {
		name                       string
		stars, participants, place int
	}{
		{"zero stars", 0, 10, 1},
		{"stars above max", 7, 10, 1},
		{"single participant", 3, 1, 1},
		{"place below one", 3, 10, 0},
		{"place beyond participants", 3, 10, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlacementDelta(tt.stars, tt.participants, tt.place); got != 0 {
				t.Errorf("expected 0, got %d", got)
			}
		})
	}
}

func TestApplyDelta_ClampsAtZero(t *testing.T) {
	tests := []struct {
		elo, delta, want int
	}{
		{1000, 60, 1060},
		{1000, -60, 940},
		{30, -60, 0},
		{0, -10, 0},
		{0, 10, 10},
	}
	for _, tt := range tests {
		if got := ApplyDelta(tt.elo, tt.delta); got != tt.want {
			t.Errorf("ApplyDelta(%d, %d) = %d, want %d", tt.elo, tt.delta, got, tt.want)
		}
	}
}
