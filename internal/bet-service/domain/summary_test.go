package domain

import "testing"

func TestWinRate(t *testing.T) {
	cases := []struct {
		wins, losses int64
		want         float64
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{2, 1, 66.67},
		{1, 2, 33.33},
		{3, 1, 75},
		{1, 31, 3.12}, // 3.125 exato: empate vai para o par
		{3, 29, 9.38}, // 9.375 exato
		{1, 7, 12.5},
	}
	for _, tc := range cases {
		if got := WinRate(tc.wins, tc.losses); got != tc.want {
			t.Fatalf("WinRate(%d,%d)=%v want %v", tc.wins, tc.losses, got, tc.want)
		}
	}
}

func TestNewSummary(t *testing.T) {
	var player, other Tally
	for _, r := range []BetResult{ResultWin, ResultWin, ResultLoss, ResultPending} {
		player.Add(r)
	}
	for _, r := range []BetResult{ResultLoss, ResultPush, ResultCancelled} {
		other.Add(r)
	}

	s := NewSummary(player, other)
	if s.TotalBets != 7 || s.TotalWins != 2 || s.TotalLosses != 2 {
		t.Fatalf("totals=%+v", s)
	}
	if s.WinRate != 50 {
		t.Fatalf("win_rate=%v want 50", s.WinRate)
	}
	if s.PlayerBets.Total != 4 || s.PlayerBets.WinRate != 66.67 {
		t.Fatalf("player_bets=%+v", s.PlayerBets)
	}
	if s.TeamBets.Total != 3 || s.TeamBets.Losses != 1 || s.TeamBets.WinRate != 0 {
		t.Fatalf("team_bets=%+v", s.TeamBets)
	}
}
