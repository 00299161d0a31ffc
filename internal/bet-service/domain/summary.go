package domain

import "strconv"

// Tally são as contagens de um grupo de apostas
type Tally struct {
	Total  int64
	Wins   int64
	Losses int64
}

// Add soma a aposta no grupo
func (t *Tally) Add(r BetResult) {
	t.Total++
	switch r {
	case ResultWin:
		t.Wins++
	case ResultLoss:
		t.Losses++
	}
}

// GroupSummary é o agregado exposto por grupo (player props / demais)
type GroupSummary struct {
	Total   int64   `json:"total"`
	Wins    int64   `json:"wins"`
	Losses  int64   `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// Summary é a resposta de /bets/analytics/summary; sempre derivada por contagem
type Summary struct {
	TotalBets   int64        `json:"total_bets"`
	TotalWins   int64        `json:"total_wins"`
	TotalLosses int64        `json:"total_losses"`
	WinRate     float64      `json:"win_rate"`
	PlayerBets  GroupSummary `json:"player_bets"`
	TeamBets    GroupSummary `json:"team_bets"`
}

// WinRate = wins / (wins + losses) * 100 com 2 casas; 0 sem apostas decididas.
// push, pending e cancelled ficam fora do denominador.
// O arredondamento é sobre o float64: empate vai para o par (1/32 = 3.125 -> 3.12).
func WinRate(wins, losses int64) float64 {
	decided := wins + losses
	if decided <= 0 {
		return 0
	}
	rate := float64(wins) / float64(decided) * 100
	f, _ := strconv.ParseFloat(strconv.FormatFloat(rate, 'f', 2, 64), 64)
	return f
}

// NewSummary monta o resumo a partir das contagens de player props e do resto
func NewSummary(player, other Tally) Summary {
	total := Tally{
		Total:  player.Total + other.Total,
		Wins:   player.Wins + other.Wins,
		Losses: player.Losses + other.Losses,
	}
	return Summary{
		TotalBets:   total.Total,
		TotalWins:   total.Wins,
		TotalLosses: total.Losses,
		WinRate:     WinRate(total.Wins, total.Losses),
		PlayerBets:  group(player),
		TeamBets:    group(other),
	}
}

func group(t Tally) GroupSummary {
	return GroupSummary{Total: t.Total, Wins: t.Wins, Losses: t.Losses, WinRate: WinRate(t.Wins, t.Losses)}
}
