package models

import "testing"

func TestTournamentCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    TournamentStatus
		to      TournamentStatus
		allowed bool
	}{
		{TournamentUpcoming, TournamentActive, true},
		{TournamentUpcoming, TournamentCancelled, true},
		{TournamentUpcoming, TournamentCompleted, false},

		{TournamentActive, TournamentCompleted, true},
		{TournamentActive, TournamentCancelled, true},
		{TournamentActive, TournamentUpcoming, false},

		// Терминальные статусы.
		{TournamentCompleted, TournamentActive, false},
		{TournamentCompleted, TournamentCompleted, false},
		{TournamentCompleted, TournamentCancelled, false},
		{TournamentCancelled, TournamentActive, false},
		{TournamentCancelled, TournamentUpcoming, false},
	}

	for _, tt := range tests {
		tournament := &Tournament{Status: tt.from}
		if got := tournament.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}
